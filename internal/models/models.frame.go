package models

import "time"

// DefaultFrameContentType is served when the uploader did not say otherwise
const DefaultFrameContentType = "image/jpeg"

// Frame is one camera snapshot. A stored Frame is never modified; uploads
// replace it with a new value.
type Frame struct {
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Sequence    uint64    `json:"sequence"`
	ReceivedAt  time.Time `json:"received_at"`
}
