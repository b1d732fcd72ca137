package middleware

import "net/http"

const (
	allowedOrigins = "*"
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "*"
)

// CORS grants unrestricted cross-origin access on every response and answers
// preflight requests directly. It wraps the whole router so that OPTIONS
// requests never reach method-restricted routes.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowedOrigins)
		h.Set("Access-Control-Allow-Methods", allowedMethods)
		h.Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
