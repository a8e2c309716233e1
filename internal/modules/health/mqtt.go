package health

import (
	"context"
	"log/slog"
	"time"

	"respirate-server/internal/modules/health/service"
	"respirate-server/internal/mqtt"
	"respirate-server/pkg/telemetry"
)

// ingestTimeout bounds a single telemetry write so a stuck database cannot
// stall the paho delivery goroutine.
const ingestTimeout = 5 * time.Second

// registerMQTTHandler stores telemetry received on the subscriber.
func registerMQTTHandler(subscriber mqtt.MQTTSubscriber, svc *service.Service, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(t telemetry.Telemetry) error {
		logger.Debug("processing telemetry message",
			"source_id", t.SourceID,
			"metric", t.Metric,
			"timestamp", t.Timestamp,
		)

		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := svc.RecordTelemetry(ctx, t); err != nil {
			logger.Error("failed to store telemetry",
				"source_id", t.SourceID,
				"metric", t.Metric,
				"error", err,
			)
			return err
		}

		logger.Debug("successfully stored telemetry", "source_id", t.SourceID, "metric", t.Metric)
		return nil
	})
}
