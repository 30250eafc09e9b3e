package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/mkamranaziz70-del/Boxxpliot-App/internal/config"
	"go.uber.org/zap"
)

// CORS configures cross-origin access for the office frontend and the
// public signing page. With no origins configured, development allows
// every origin and any other environment denies all of them.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	dev := environment == "development" || environment == "local" || environment == ""

	switch {
	case hasWildcardOrigin(cfg.AllowedOrigins):
		if !dev {
			logger.Warn("CORS allows every origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAnyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured", zap.Strings("origins", cfg.AllowedOrigins))
	case dev:
		options.AllowOriginFunc = allowAnyOrigin
	default:
		// An empty AllowedOrigins list would default to "*", so deny explicitly
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func hasWildcardOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func allowAnyOrigin(r *http.Request, origin string) bool {
	return origin != ""
}
