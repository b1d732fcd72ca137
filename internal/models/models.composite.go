// FilePath: internal/models/models.composite.go
package models

// FullState merges sensor and control state taken at a single instant.
// Both halves are embedded so the JSON form is the flat union of their fields.
type FullState struct {
	SensorSnapshot
	ControlState
}
