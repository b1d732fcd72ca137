package hubservice

import (
	"github.com/itsatony/homehub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// StoreFrame replaces the camera frame
func (s *HubService) StoreFrame(data []byte, contentType string) (*models.Frame, error) {
	frame, err := s.Frames.SetFrame(data, contentType)
	if err != nil {
		return nil, err
	}
	nuts.L.Infof("[CameraService] Frame #%d stored (%d bytes)", frame.Sequence, frame.Size)
	s.emit(EventFrameReceived, frame)
	return frame, nil
}

// LatestFrame returns the last stored frame
func (s *HubService) LatestFrame() (*models.Frame, error) {
	return s.Frames.Frame()
}
