package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/models"
)

// DecodeSensorUpdate reads one JSON object from r into a SensorUpdate.
//
// The body must be a non-empty JSON object. Unknown keys are ignored so newer
// firmware can send extra readings, but known keys must carry the right type.
func DecodeSensorUpdate(r io.Reader) (models.SensorUpdate, error) {
	var u models.SensorUpdate

	body, err := io.ReadAll(r)
	if err != nil {
		return u, errors.NewInvalidPayloadError("failed to read sensor payload", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return u, errors.NewInvalidPayloadError("No JSON", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return u, errors.NewInvalidPayloadError("sensor payload must be a JSON object", err)
	}
	if len(fields) == 0 {
		return u, errors.NewInvalidPayloadError("No JSON", nil)
	}

	for key, dst := range map[string]any{
		"temp":      &u.Temperature,
		"humedad":   &u.Humidity,
		"distancia": &u.Distance,
	} {
		raw, ok := fields[key]
		if !ok || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return models.SensorUpdate{}, errors.NewInvalidPayloadError(fmt.Sprintf("invalid value for %q", key), err)
		}
	}
	return u, nil
}
