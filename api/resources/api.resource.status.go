package resources

import (
	"html/template"
	"net/http"

	nuts "github.com/vaudience/go-nuts"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><title>Home Hub</title></head>
<body>
<h1>Home Hub active</h1>
<p>Version {{.Version}}</p>
<p>Available endpoints:</p>
<ul>
{{- range .Endpoints}}
  <li>{{.}}</li>
{{- end}}
</ul>
</body>
</html>
`))

var endpoints = []string{
	"POST /upload (camera)",
	"GET /get-image (app video)",
	"POST /api/sensor_data (sensors)",
	"GET /api/control_commands (device polling)",
	"GET /api/full_state (app polling)",
	"GET /control/door?set=1 (main door)",
	"GET /control/garage?set=1 (garage)",
	"GET /control/ultrasonic?set=1 (alarm)",
	"GET /control/leds/{index}/{intensity} (lights)",
}

// StatusHandlers serves the human readable status page and the health check
type StatusHandlers struct{}

// StatusPage lists the endpoints of the hub
func (h *StatusHandlers) StatusPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err := statusPage.Execute(w, struct {
		Version   string
		Endpoints []string
	}{nuts.GetVersion(), endpoints})
	if err != nil {
		nuts.L.Errorf("[StatusHandler] Failed to render status page: %v", err)
	}
}

// Health returns a simple health check
func (h *StatusHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": nuts.GetVersion()})
}
