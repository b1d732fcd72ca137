package resources

import (
	"net/http"

	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

const maxSensorPayload = 64 * 1024

// SensorHandlers encapsulates the sensor push and state read endpoints
type SensorHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Record sensor readings
// @Description Partial updates are allowed; absent fields keep their value
// @Tags sensors
// @Accept json
// @Produce json
// @Param readings body models.SensorUpdate true "Sensor readings"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /api/sensor_data [post]
func (h *SensorHandlers) RecordSensorData(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	_, err := h.hubservice.RecordSensorData(http.MaxBytesReader(w, r.Body, maxSensorPayload))
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

// @Summary Get sensor and control state
// @Description Sensor readings and commanded actuator state taken at one instant
// @Tags sensors
// @Produce json
// @Success 200 {object} models.FullState
// @Router /api/full_state [get]
func (h *SensorHandlers) FullState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.hubservice.FullState())
}
