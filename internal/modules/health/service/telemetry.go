package service

import (
	"context"
	"fmt"

	"respirate-server/internal/modules/health/types"
	"respirate-server/pkg/telemetry"
)

// RecordTelemetry stores a validated telemetry reading. Battery readings whose
// source is a known device id also update that device.
func (s *Service) RecordTelemetry(ctx context.Context, t telemetry.Telemetry) error {
	if t.Value == nil {
		return fmt.Errorf("telemetry from %s has no value", t.SourceID)
	}
	rec := types.Reading{
		SourceID: t.SourceID,
		Metric:   t.Metric,
		Time:     t.Timestamp,
		Value:    *t.Value,
		Unit:     t.Unit,
	}
	if err := s.repository.InsertReading(ctx, rec); err != nil {
		return err
	}

	if t.Metric != telemetry.MetricBattery {
		return nil
	}
	updated, err := s.repository.UpdateDeviceBattery(ctx, t.SourceID, rec.Value, rec.Time)
	if err != nil {
		return err
	}
	if !updated {
		s.logger.Debug("battery reading from unknown device", "source_id", t.SourceID)
	}
	return nil
}
