package controller

import (
	"log/slog"
	"net/http"

	"respirate-server/internal/modules/health/service"
)

type HealthController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type healthControllerImpl struct {
	service *service.Service
	logger  *slog.Logger
}

func NewHealthController(service *service.Service, logger *slog.Logger) HealthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthControllerImpl{service: service, logger: logger}
}

func (c *healthControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET /partials/{tab}", c.handleTabPartial)

	mux.HandleFunc("GET /api/v1/scales", c.handleScales)
	mux.HandleFunc("GET /api/v1/scales/{scale}/classify", c.handleClassifyScale)
	mux.HandleFunc("GET /api/v1/vital-ranges", c.handleVitalRanges)
	mux.HandleFunc("GET /api/v1/vitals/{vital}/classify", c.handleClassifyVital)

	mux.HandleFunc("GET /api/v1/vitals", c.handleVitals)
	mux.HandleFunc("GET /api/v1/environment", c.handleEnvironment)
	mux.HandleFunc("GET /api/v1/devices", c.handleDevices)
	mux.HandleFunc("GET /api/v1/medications", c.handleMedications)
	mux.HandleFunc("POST /api/v1/medications/{id}/taken", c.handleMedicationTaken)
	mux.HandleFunc("GET /api/v1/predictions", c.handlePredictions)
	mux.HandleFunc("GET /api/v1/alerts", c.handleAlerts)
	mux.HandleFunc("GET /api/v1/patient", c.handlePatient)
}
