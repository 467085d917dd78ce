package middleware

import (
	"net/http"

	"jobcard-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS exposes Content-Disposition so the browser can read export
// file names.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   append(cfg.Server.CorsAllowedHeaders, OperatorHeader),
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
