package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/itsatony/homehub/api/middleware"
	"github.com/itsatony/homehub/api/resources"
	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/hubservice"
	"github.com/itsatony/homehub/internal/monitoring"
)

type Router struct {
	router     *mux.Router
	handler    http.Handler
	resources  *resources.Resources
	monitoring *monitoring.Service
	config     *config.Config
}

// NewRouter wires every endpoint of the hub. mon may be nil, in which case no
// metrics are recorded or served.
func NewRouter(svc *hubservice.HubService, mon *monitoring.Service, cfg *config.Config) *Router {
	r := &Router{
		router:     mux.NewRouter(),
		resources:  resources.NewResources(svc, cfg.Camera),
		monitoring: mon,
		config:     cfg,
	}
	if mon != nil && cfg.Monitoring.MetricsEnabled {
		r.resources.SetMetrics(mon.Handler().ServeHTTP)
	}

	r.setupRoutes()
	r.handler = r.wrap(r.router)
	return r
}

func (r *Router) setupRoutes() {
	res := r.resources

	// Camera
	r.handle("/upload", res.Camera.Upload, http.MethodPost)
	r.handle("/get-image", res.Camera.GetImage, http.MethodGet)

	// Sensors and state
	api := r.router.PathPrefix("/api").Subrouter()
	r.handleOn(api, "/api", "/sensor_data", res.Sensors.RecordSensorData, http.MethodPost)
	r.handleOn(api, "/api", "/full_state", res.Sensors.FullState, http.MethodGet)
	r.handleOn(api, "/api", "/control_commands", res.Control.ControlCommands, http.MethodGet)

	// Actuator commands
	control := r.router.PathPrefix("/control").Subrouter()
	r.handleOn(control, "/control", "/door", res.Control.Door, http.MethodGet)
	r.handleOn(control, "/control", "/garage", res.Control.Garage, http.MethodGet)
	r.handleOn(control, "/control", "/ultrasonic", res.Control.Ultrasonic, http.MethodGet)
	r.handleOn(control, "/control", "/leds/{index:-?[0-9]+}/{intensity:-?[0-9]+}", res.Control.Led, http.MethodGet)

	// Status
	r.handle("/", res.Status.StatusPage, http.MethodGet)
	r.handle("/health", res.Status.Health, http.MethodGet)
	if res.Metrics != nil {
		r.router.HandleFunc(r.config.Monitoring.MetricsPath, res.Metrics).Methods(http.MethodGet)
	}
}

func (r *Router) handle(path string, h http.HandlerFunc, method string) {
	r.handleOn(r.router, "", path, h, method)
}

func (r *Router) handleOn(sub *mux.Router, prefix, path string, h http.HandlerFunc, method string) {
	var handler http.Handler = h
	if r.monitoring != nil {
		handler = r.monitoring.WrapHandler(prefix+path, handler)
	}
	sub.Handle(path, handler).Methods(method)
}

// wrap applies the outer middleware chain: panic recovery, CORS, access log.
func (r *Router) wrap(h http.Handler) http.Handler {
	h = middleware.CORS(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	if r.config.Monitoring.AccessLog {
		h = handlers.CombinedLoggingHandler(os.Stdout, h)
	}
	return h
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
