package resources

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/hubservice"
	"github.com/itsatony/homehub/internal/models"
	"github.com/itsatony/homehub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// ControlHandlers encapsulates the actuator command endpoints
type ControlHandlers struct {
	hubservice *hubservice.HubService
	query      *schema.Decoder
}

type setQuery struct {
	Set *int `schema:"set"`
}

// @Summary Get control commands
// @Description Polled by the devices to learn the commanded actuator state
// @Tags control
// @Produce json
// @Success 200 {object} models.ControlState
// @Router /api/control_commands [get]
func (h *ControlHandlers) ControlCommands(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.hubservice.ControlState())
}

// @Summary Set or read the main door flag
// @Description Without set, or with a malformed set, the current value is returned unchanged
// @Tags control
// @Produce json
// @Param set query int false "0 closed, 1 open"
// @Success 200 {object} models.DoorStatus
// @Router /control/door [get]
func (h *ControlHandlers) Door(w http.ResponseWriter, r *http.Request) {
	v := h.lenientFlag(r, "door", h.hubservice.SetDoor)
	respondWithJSON(w, http.StatusOK, models.DoorStatus{Status: "ok", DoorOpen: &v})
}

// @Summary Set or read the garage door flag
// @Description Without set, or with a malformed set, the current value is returned unchanged
// @Tags control
// @Produce json
// @Param set query int false "0 closed, 1 open"
// @Success 200 {object} models.DoorStatus
// @Router /control/garage [get]
func (h *ControlHandlers) Garage(w http.ResponseWriter, r *http.Request) {
	v := h.lenientFlag(r, "garage", h.hubservice.SetGarage)
	respondWithJSON(w, http.StatusOK, models.DoorStatus{Status: "ok", GarageOpen: &v})
}

// @Summary Toggle or set the ultrasonic alarm
// @Description Without set the flag is flipped
// @Tags control
// @Produce json
// @Param set query int false "0 off, 1 on"
// @Success 200 {object} models.UltrasonicStatus
// @Failure 400 {object} errors.APIError
// @Router /control/ultrasonic [get]
func (h *ControlHandlers) Ultrasonic(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	value, err := h.decodeSet(r)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	v, err := h.hubservice.SetUltrasonic(value)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, models.UltrasonicStatus{Status: v})
}

// @Summary Set one LED channel
// @Tags control
// @Produce json
// @Param index path int true "LED channel, 0 to 7"
// @Param intensity path int true "Intensity in percent, 0 to 100"
// @Success 200 {object} models.LedStatus
// @Failure 400 {object} errors.APIError
// @Router /control/leds/{index}/{intensity} [get]
func (h *ControlHandlers) Led(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := nuts.NID("req", 12)
	details := map[string]string{"index": vars["index"], "intensity": vars["intensity"]}

	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondWithError(w, errors.NewInvalidValueError("led index must be an integer", err).WithRequestID(requestID).WithDetails(details))
		return
	}
	intensity, err := strconv.Atoi(vars["intensity"])
	if err != nil {
		respondWithError(w, errors.NewInvalidValueError("led intensity must be an integer", err).WithRequestID(requestID).WithDetails(details))
		return
	}

	v, err := h.hubservice.SetLed(index, intensity)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID).WithDetails(details))
		return
	}

	respondWithJSON(w, http.StatusOK, models.LedStatus{Msg: "OK", Val: v})
}

// decodeSet reads the optional set query parameter. A present but empty or
// non-integer value is an InvalidValue error. The emptiness check runs first
// because the schema decoder turns an empty set into a zero.
func (h *ControlHandlers) decodeSet(r *http.Request) (*int, error) {
	values := r.URL.Query()
	if !values.Has("set") {
		return nil, nil
	}
	if strings.TrimSpace(values.Get("set")) == "" {
		return nil, errors.NewInvalidValueError("set must not be empty", nil)
	}

	var q setQuery
	if err := h.query.Decode(&q, values); err != nil {
		return nil, errors.NewInvalidValueError("set must be an integer", err)
	}
	if q.Set == nil {
		v, err := state.ParseFlag(values.Get("set"))
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	return q.Set, nil
}

// lenientFlag applies set to a door-like flag. Door and garage commands never
// fail: a malformed or out of range value degrades to a read of the flag.
func (h *ControlHandlers) lenientFlag(r *http.Request, name string, set func(*int) (int, error)) int {
	value, err := h.decodeSet(r)
	if err != nil {
		nuts.L.Warnf("[ControlHandler] Ignoring %s command: %v", name, err)
		value = nil
	}

	v, err := set(value)
	if err != nil {
		nuts.L.Warnf("[ControlHandler] Ignoring %s command: %v", name, err)
	}
	return v
}
