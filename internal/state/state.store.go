// FilePath: internal/state/state.store.go
package state

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/models"
)

// Store is the single source of truth for sensor and control state.
//
// One mutex guards both halves so that FullState observes door, garage,
// ultrasonic, LED and sensor values as they were at one instant. Every method
// holds the lock for its whole body.
type Store struct {
	mu      sync.Mutex
	sensor  models.SensorSnapshot
	control models.ControlState
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the wall clock used to stamp LastSeen.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store with every flag closed, every LED off and no
// sensor data seen yet.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sensor: models.SensorSnapshot{LastSeen: models.LastSeenPending},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MergeSensorData applies the present fields of u and stamps LastSeen.
func (s *Store) MergeSensorData(u models.SensorUpdate) models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Temperature != nil {
		s.sensor.Temperature = *u.Temperature
	}
	if u.Humidity != nil {
		s.sensor.Humidity = *u.Humidity
	}
	if u.Distance != nil {
		s.sensor.Distance = *u.Distance
	}
	s.sensor.LastSeen = s.now().Format(models.LastSeenFormat)
	return s.sensor
}

// SensorSnapshot returns a copy of the sensor state.
func (s *Store) SensorSnapshot() models.SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sensor
}

// ControlSnapshot returns a copy of the control state.
func (s *Store) ControlSnapshot() models.ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control
}

// FullState returns sensor and control state read under one lock acquisition.
func (s *Store) FullState() models.FullState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.FullState{
		SensorSnapshot: s.sensor,
		ControlState:   s.control,
	}
}

// SetDoor stores open when given and returns the control state after the
// call. A nil open only reads it.
func (s *Store) SetDoor(open *int) (models.ControlState, error) {
	return s.setFlag("door", &s.control.DoorOpen, open)
}

// SetGarage stores open when given and returns the control state after the
// call. A nil open only reads it.
func (s *Store) SetGarage(open *int) (models.ControlState, error) {
	return s.setFlag("garage", &s.control.GarageOpen, open)
}

// SetUltrasonic stores value when given; a nil value flips the alarm flag.
func (s *Store) SetUltrasonic(value *int) (models.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		if s.control.UltrasonicActive == models.FlagOff {
			s.control.UltrasonicActive = models.FlagOn
		} else {
			s.control.UltrasonicActive = models.FlagOff
		}
		s.control.Revision++
		return s.control, nil
	}
	if err := validateFlag("ultrasonic", *value); err != nil {
		return s.control, err
	}
	s.control.UltrasonicActive = *value
	s.control.Revision++
	return s.control, nil
}

// SetLed sets one LED channel. Out of range index or intensity leaves every
// channel untouched.
func (s *Store) SetLed(index, intensity int) (models.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= models.LedCount {
		return s.control, errors.NewOutOfRangeError(
			fmt.Sprintf("led index %d outside [0,%d)", index, models.LedCount), nil)
	}
	if intensity < 0 || intensity > models.LedMaxIntensity {
		return s.control, errors.NewOutOfRangeError(
			fmt.Sprintf("led intensity %d outside [0,%d]", intensity, models.LedMaxIntensity), nil)
	}
	s.control.LedIntensities[index] = intensity
	s.control.Revision++
	return s.control, nil
}

func (s *Store) setFlag(name string, field *int, value *int) (models.ControlState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		return s.control, nil
	}
	if err := validateFlag(name, *value); err != nil {
		return s.control, err
	}
	*field = *value
	s.control.Revision++
	return s.control, nil
}

func validateFlag(name string, v int) error {
	if v != models.FlagOff && v != models.FlagOn {
		return errors.NewOutOfRangeError(fmt.Sprintf("%s flag must be 0 or 1, got %d", name, v), nil)
	}
	return nil
}

// ParseFlag parses a raw query value into an integer flag argument.
func ParseFlag(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidValueError(fmt.Sprintf("%q is not an integer", raw), err)
	}
	return v, nil
}
