package hubservice

import (
	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/models"
	"github.com/itsatony/homehub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// Event names emitted after successful state changes
const (
	EventControlChanged = "control.changed"
	EventSensorUpdated  = "sensor.updated"
	EventFrameReceived  = "frame.received"
)

// HubService owns the hub state and announces every change to its listeners
type HubService struct {
	State  *state.Store
	Frames *state.FrameBuffer
	events *nuts.EventEmitter
}

// New creates a new HubService instance
func New(store *state.Store, frames *state.FrameBuffer) *HubService {
	return &HubService{
		State:  store,
		Frames: frames,
		events: nuts.NewEventEmitter(),
	}
}

// Validate checks if all required components are initialized
func (s *HubService) Validate() error {
	if s.State == nil {
		return ErrMissingComponent("state")
	}
	if s.Frames == nil {
		return ErrMissingComponent("frames")
	}
	return nil
}

// ErrMissingComponent reports a HubService built without one of its parts
func ErrMissingComponent(name string) error {
	return errors.NewInternalError("missing component: "+name, nil)
}

// OnControlChanged registers a callback receiving the control state after each change
func (s *HubService) OnControlChanged(handler func(models.ControlState)) {
	s.on(EventControlChanged, handler)
}

// OnSensorUpdated registers a callback receiving the sensor snapshot after each push
func (s *HubService) OnSensorUpdated(handler func(models.SensorSnapshot)) {
	s.on(EventSensorUpdated, handler)
}

// OnFrameReceived registers a callback receiving each stored frame
func (s *HubService) OnFrameReceived(handler func(*models.Frame)) {
	s.on(EventFrameReceived, handler)
}

// on registers handler as is. The emitter matches emitted arguments against
// the handler's parameter types, so handler must take exactly the emitted type.
func (s *HubService) on(event string, handler interface{}) {
	if _, err := s.events.On(event, nuts.NID("lsn", 8), handler); err != nil {
		nuts.L.Errorf("[HubService] Failed to register %s listener: %v", event, err)
	}
}

// emit delivers arg synchronously to every listener of event.
func (s *HubService) emit(event string, arg interface{}) {
	if err := s.events.Emit(event, arg); err != nil {
		nuts.L.Errorf("[HubService] Failed to deliver %s: %v", event, err)
	}
}
