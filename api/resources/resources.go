// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/gorilla/schema"
	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/hubservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Camera  *CameraHandlers
	Sensors *SensorHandlers
	Control *ControlHandlers
	Status  *StatusHandlers
	Metrics func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, camera config.CameraConfig) *Resources {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Resources{
		Camera:  &CameraHandlers{hubservice: svc, config: camera},
		Sensors: &SensorHandlers{hubservice: svc},
		Control: &ControlHandlers{hubservice: svc, query: decoder},
		Status:  &StatusHandlers{},
	}
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}
