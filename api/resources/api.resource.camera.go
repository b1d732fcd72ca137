package resources

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// CameraHandlers encapsulates the camera upload and image endpoints
type CameraHandlers struct {
	hubservice *hubservice.HubService
	config     config.CameraConfig
}

// @Summary Upload a camera frame
// @Description The camera posts raw JPEG bytes as the request body
// @Tags camera
// @Accept image/jpeg
// @Produce plain
// @Success 200 {string} string "Received"
// @Failure 400 {string} string "No data"
// @Failure 413 {string} string
// @Router /upload [post]
func (h *CameraHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxFrameSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			apiErr := errors.NewPayloadTooLargeError(fmt.Sprintf("frame exceeds %d bytes", h.config.MaxFrameSize), err).WithRequestID(requestID)
			nuts.L.Warnf("[CameraHandler] %s", apiErr.Error())
			respondWithText(w, apiErr.Code, apiErr.Message)
			return
		}
		nuts.L.Errorf("[CameraHandler] Error receiving image (%s): %v", requestID, err)
		respondWithText(w, http.StatusInternalServerError, err.Error())
		return
	}

	if _, err := h.hubservice.StoreFrame(data, h.config.ContentType); err != nil {
		apiErr := errors.AsAPIError(err).WithRequestID(requestID)
		nuts.L.Warnf("[CameraHandler] %s", apiErr.Error())
		respondWithText(w, apiErr.Code, apiErr.Message)
		return
	}

	respondWithText(w, http.StatusOK, "Received")
}

// @Summary Get the latest camera frame
// @Tags camera
// @Produce image/jpeg
// @Success 200 {file} binary
// @Failure 404 {string} string "No image available"
// @Router /get-image [get]
func (h *CameraHandlers) GetImage(w http.ResponseWriter, r *http.Request) {
	frame, err := h.hubservice.LatestFrame()
	if err != nil {
		apiErr := errors.AsAPIError(err)
		respondWithText(w, apiErr.Code, apiErr.Message)
		return
	}

	w.Header().Set("Content-Type", frame.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(frame.Size))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Sequence", strconv.FormatUint(frame.Sequence, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(frame.Data)
}
