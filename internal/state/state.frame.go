package state

import (
	"sync/atomic"
	"time"

	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/models"
)

// FrameBuffer holds the last camera frame.
//
// Writers build a complete Frame and swap the pointer; readers load it. A
// reader therefore sees either no frame or a fully written one, and never
// waits on the state store lock.
type FrameBuffer struct {
	latest atomic.Pointer[models.Frame]
	seq    atomic.Uint64
	now    func() time.Time
}

// NewFrameBuffer creates an empty frame buffer
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{now: time.Now}
}

// SetFrame replaces the stored frame with a copy of data.
func (b *FrameBuffer) SetFrame(data []byte, contentType string) (*models.Frame, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyPayloadError("No data", nil)
	}
	if contentType == "" {
		contentType = models.DefaultFrameContentType
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	frame := &models.Frame{
		Data:        buf,
		ContentType: contentType,
		Size:        len(buf),
		Sequence:    b.seq.Add(1),
		ReceivedAt:  b.now(),
	}
	b.latest.Store(frame)
	return frame, nil
}

// Frame returns the most recent frame. Callers must not modify Frame.Data.
func (b *FrameBuffer) Frame() (*models.Frame, error) {
	frame := b.latest.Load()
	if frame == nil {
		return nil, errors.NewNotFoundError("No image available", nil)
	}
	return frame, nil
}
