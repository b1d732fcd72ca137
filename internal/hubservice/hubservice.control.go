package hubservice

import (
	"github.com/itsatony/homehub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ControlState returns the commanded actuator state
func (s *HubService) ControlState() models.ControlState {
	return s.State.ControlSnapshot()
}

// FullState returns sensor and control state taken at one instant
func (s *HubService) FullState() models.FullState {
	return s.State.FullState()
}

// SetDoor sets the main door flag; a nil value only reads it
func (s *HubService) SetDoor(open *int) (int, error) {
	c, err := s.State.SetDoor(open)
	s.afterFlagWrite("door", open, c, c.DoorOpen, err)
	return c.DoorOpen, err
}

// SetGarage sets the garage door flag; a nil value only reads it
func (s *HubService) SetGarage(open *int) (int, error) {
	c, err := s.State.SetGarage(open)
	s.afterFlagWrite("garage", open, c, c.GarageOpen, err)
	return c.GarageOpen, err
}

// SetUltrasonic sets the alarm flag; a nil value toggles it
func (s *HubService) SetUltrasonic(value *int) (int, error) {
	c, err := s.State.SetUltrasonic(value)
	if err != nil {
		nuts.L.Warnf("[ControlService] Rejected ultrasonic value: %v", err)
		return c.UltrasonicActive, err
	}
	nuts.L.Infof("[ControlService] Ultrasonic alarm now %d", c.UltrasonicActive)
	s.emit(EventControlChanged, c)
	return c.UltrasonicActive, nil
}

// SetLed sets one LED channel intensity
func (s *HubService) SetLed(index, intensity int) (int, error) {
	c, err := s.State.SetLed(index, intensity)
	if err != nil {
		nuts.L.Warnf("[ControlService] Rejected LED command %d/%d: %v", index, intensity, err)
		return 0, err
	}
	nuts.L.Infof("[ControlService] LED %d set to %d%%", index, intensity)
	s.emit(EventControlChanged, c)
	return c.LedIntensities[index], nil
}

func (s *HubService) afterFlagWrite(name string, requested *int, c models.ControlState, v int, err error) {
	if requested == nil {
		return
	}
	if err != nil {
		nuts.L.Warnf("[ControlService] Rejected %s value: %v", name, err)
		return
	}
	nuts.L.Infof("[ControlService] %s now %d", name, v)
	s.emit(EventControlChanged, c)
}
