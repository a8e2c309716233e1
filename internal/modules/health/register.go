package health

import (
	"database/sql"
	"log/slog"
	"net/http"

	"respirate-server/internal/modules/health/controller"
	"respirate-server/internal/modules/health/repository"
	"respirate-server/internal/modules/health/service"
	"respirate-server/internal/mqtt"
)

// RegisterFeature mounts the health routes on mux. A nil subscriber disables
// telemetry ingest.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, subscriber mqtt.MQTTSubscriber, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	healthRepository := repository.NewRepository(db)
	healthService := service.NewService(healthRepository, logger)
	healthController := controller.NewHealthController(healthService, logger)
	healthController.RegisterRoutes(mux)

	if subscriber != nil {
		registerMQTTHandler(subscriber, healthService, logger)
	}
}
