package hubservice

import (
	"io"

	"github.com/itsatony/homehub/internal/models"
	"github.com/itsatony/homehub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// RecordSensorData decodes a device push and merges it into the sensor state
func (s *HubService) RecordSensorData(body io.Reader) (models.SensorSnapshot, error) {
	update, err := state.DecodeSensorUpdate(body)
	if err != nil {
		return models.SensorSnapshot{}, err
	}

	snap := s.State.MergeSensorData(update)
	nuts.L.Infof("[SensorService] Reading received: T:%v H:%v D:%v", snap.Temperature, snap.Humidity, snap.Distance)
	s.emit(EventSensorUpdated, snap)
	return snap, nil
}

// SensorSnapshot returns the latest sensor readings
func (s *HubService) SensorSnapshot() models.SensorSnapshot {
	return s.State.SensorSnapshot()
}
