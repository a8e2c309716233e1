package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"respirate-server/internal/classify"
	"respirate-server/internal/modules/health/repository"
	"respirate-server/internal/modules/health/service"
	"respirate-server/internal/modules/health/views"
)

// resolveTab returns the tab named by ?tab=, falling back to the default for
// empty or unknown values.
func resolveTab(r *http.Request) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tab")))
	if key == "" {
		return views.DefaultTab, true
	}
	if _, ok := views.LookupTab(key); ok {
		return key, true
	}
	return views.DefaultTab, false
}

// tabContent loads the view model for one tab.
func (c *healthControllerImpl) tabContent(ctx context.Context, tab string) (any, error) {
	switch tab {
	case "dashboard":
		return c.service.Dashboard(ctx)
	case "predictions":
		return c.service.Predictions(ctx)
	case "devices":
		return c.service.Devices(ctx)
	case "medication":
		return c.service.Medications(ctx)
	case "environment":
		return c.service.Environment(ctx)
	case "doctor":
		return c.service.Doctor(ctx)
	default:
		return nil, fmt.Errorf("unknown tab %q", tab)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, classify.ErrInvalidReading):
		return http.StatusBadRequest
	case errors.Is(err, classify.ErrUnknownScale),
		errors.Is(err, classify.ErrUnknownVital),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrMedicationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
