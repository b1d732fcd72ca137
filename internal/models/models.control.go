// FilePath: internal/models/models.control.go
package models

const (
	// LedCount is the number of dimmable LED channels on the board
	LedCount = 8
	// LedMaxIntensity is the highest accepted intensity, in percent
	LedMaxIntensity = 100
)

// Control flag values
const (
	FlagOff = 0
	FlagOn  = 1
)

// ControlState is the commanded actuator state polled by the devices.
// LedIntensities is an array, so copies never share backing storage.
type ControlState struct {
	UltrasonicActive int           `json:"ultrasonic_active"`
	DoorOpen         int           `json:"door_open"`
	GarageOpen       int           `json:"garage_open"`
	LedIntensities   [LedCount]int `json:"led_intensities"`
	Revision         uint64        `json:"revision"`
}

// DoorStatus is the response body of the door and garage endpoints
type DoorStatus struct {
	Status     string `json:"status"`
	DoorOpen   *int   `json:"door_open,omitempty"`
	GarageOpen *int   `json:"garage_open,omitempty"`
}

// UltrasonicStatus is the response body of the ultrasonic endpoint
type UltrasonicStatus struct {
	Status int `json:"status"`
}

// LedStatus is the response body of the LED endpoint
type LedStatus struct {
	Msg string `json:"msg"`
	Val int    `json:"val"`
}
