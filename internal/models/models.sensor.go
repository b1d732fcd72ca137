// FilePath: internal/models/models.sensor.go
package models

// LastSeenFormat is the wall-clock layout of SensorSnapshot.LastSeen.
const LastSeenFormat = "15:04:05"

// LastSeenPending is reported until the first sensor push arrives.
const LastSeenPending = "Esperando..."

// SensorSnapshot holds the latest readings pushed by the sensor board
type SensorSnapshot struct {
	Temperature float64 `json:"temp"`
	Humidity    float64 `json:"humedad"`
	Distance    int     `json:"distancia"`
	LastSeen    string  `json:"last_seen"`
}

// SensorUpdate is a partial sensor push. Nil fields keep their stored value.
type SensorUpdate struct {
	Temperature *float64 `json:"temp,omitempty"`
	Humidity    *float64 `json:"humedad,omitempty"`
	Distance    *int     `json:"distancia,omitempty"`
}
