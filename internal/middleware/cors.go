package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"odonto-console/internal/config"
)

// readOnly are the only methods the cross-origin endpoints answer.
var readOnly = map[string]bool{http.MethodGet: true, http.MethodHead: true, http.MethodOptions: true}

// NewCORS covers the JSON health endpoints polled by dashboards on other
// origins. Configured methods that write are dropped; session cookies never
// travel cross-origin.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	var methods []string
	for _, m := range cfg.Server.CorsAllowedMethods {
		if readOnly[m] {
			methods = append(methods, m)
		}
	}
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodOptions}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   methods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler
}
