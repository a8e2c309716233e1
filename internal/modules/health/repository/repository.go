package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"respirate-server/internal/modules/health/types"
)

//go:embed sql/get-patient.sql
var getPatientSQL string

//go:embed sql/get-devices.sql
var getDevicesSQL string

//go:embed sql/update-device-battery.sql
var updateDeviceBatterySQL string

//go:embed sql/get-medications.sql
var getMedicationsSQL string

//go:embed sql/medication-exists.sql
var medicationExistsSQL string

//go:embed sql/get-adherence.sql
var getAdherenceSQL string

//go:embed sql/get-monthly-adherence.sql
var getMonthlyAdherenceSQL string

//go:embed sql/get-predictions.sql
var getPredictionsSQL string

//go:embed sql/get-alerts.sql
var getAlertsSQL string

//go:embed sql/get-risk-assessment.sql
var getRiskAssessmentSQL string

//go:embed sql/get-health-trends.sql
var getHealthTrendsSQL string

//go:embed sql/get-health-score.sql
var getHealthScoreSQL string

//go:embed sql/get-latest-readings.sql
var getLatestReadingsSQL string

//go:embed sql/get-vital-history.sql
var getVitalHistorySQL string

//go:embed sql/get-environment-history.sql
var getEnvironmentHistorySQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-prediction-accuracy.sql
var getPredictionAccuracySQL string

//go:embed sql/get-prediction-accuracy-days.sql
var getPredictionAccuracyDaysSQL string

//go:embed sql/get-patterns.sql
var getPatternsSQL string

//go:embed sql/get-device-activity.sql
var getDeviceActivitySQL string

//go:embed sql/get-reminders.sql
var getRemindersSQL string

//go:embed sql/get-treatment-medications.sql
var getTreatmentMedicationsSQL string

//go:embed sql/get-care-instructions.sql
var getCareInstructionsSQL string

// ErrNotFound is returned by single-row lookups with no row.
var ErrNotFound = errors.New("not found")

// timestamps are stored as second-precision RFC3339 UTC so they sort as text.
const tsLayout = time.RFC3339

var (
	vitalMetrics       = []string{"heart_rate", "spo2", "respiratory_rate", "peak_flow"}
	environmentMetrics = []string{"aqi", "pm25", "pm10", "temperature_f", "humidity_pct", "pollen", "uv", "wind_mph"}
)

type HealthRepository interface {
	GetPatient(ctx context.Context) (types.Patient, error)
	GetDevices(ctx context.Context) ([]types.Device, error)
	UpdateDeviceBattery(ctx context.Context, deviceID string, battery float64, ts time.Time) (bool, error)
	GetMedications(ctx context.Context) ([]types.Medication, error)
	MedicationExists(ctx context.Context, id int64) (bool, error)
	GetAdherence(ctx context.Context) ([]types.AdherenceDay, error)
	GetMonthlyAdherence(ctx context.Context) (float64, error)
	GetPredictions(ctx context.Context) ([]types.Prediction, error)
	GetAlerts(ctx context.Context, limit int) ([]types.Alert, error)
	GetRiskAssessment(ctx context.Context) (types.RiskAssessment, error)
	GetHealthTrends(ctx context.Context) ([]types.HealthTrend, error)
	GetHealthScore(ctx context.Context) (types.HealthScore, error)
	GetLatestVitals(ctx context.Context) (map[string]types.Reading, error)
	GetVitalHistory(ctx context.Context, limit int) ([]types.VitalSample, error)
	GetLatestEnvironment(ctx context.Context) (map[string]types.Reading, error)
	GetEnvironmentHistory(ctx context.Context, limit int) ([]types.AirQualitySample, error)
	InsertReading(ctx context.Context, reading types.Reading) error
	GetPredictionAccuracy(ctx context.Context) (types.PredictionAccuracy, error)
	GetPatterns(ctx context.Context) ([]types.Pattern, error)
	GetDeviceActivity(ctx context.Context) ([]types.DeviceActivity, error)
	GetReminders(ctx context.Context) ([]types.Reminder, error)
	GetTreatmentMedications(ctx context.Context) ([]types.TreatmentMedication, error)
	GetCareInstructions(ctx context.Context) ([]types.CareInstruction, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) HealthRepository {
	return &repositoryImpl{db: db}
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}

func (r *repositoryImpl) GetPatient(ctx context.Context) (types.Patient, error) {
	var p types.Patient
	err := r.db.QueryRowContext(ctx, getPatientSQL).Scan(
		&p.ID, &p.Name, &p.Age, &p.Condition, &p.LastVisit, &p.NextAppointment, &p.RiskLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Patient{}, fmt.Errorf("patient: %w", ErrNotFound)
	}
	return p, err
}

func (r *repositoryImpl) GetDevices(ctx context.Context) ([]types.Device, error) {
	rows, err := r.db.QueryContext(ctx, getDevicesSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "devices")

	var out []types.Device
	for rows.Next() {
		var d types.Device
		var lastSync string
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Status, &d.Battery, &lastSync, &d.Color); err != nil {
			return nil, err
		}
		if d.LastSync, err = parseTime(lastSync); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDeviceBattery records a battery reading for a device. The bool reports
// whether deviceID matched a device.
func (r *repositoryImpl) UpdateDeviceBattery(ctx context.Context, deviceID string, battery float64, ts time.Time) (bool, error) {
	id, err := strconv.ParseInt(deviceID, 10, 64)
	if err != nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, updateDeviceBatterySQL, battery, formatTime(ts), id)
	if err != nil {
		return false, fmt.Errorf("update device battery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repositoryImpl) GetMedications(ctx context.Context) ([]types.Medication, error) {
	rows, err := r.db.QueryContext(ctx, getMedicationsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "medications")

	var out []types.Medication
	for rows.Next() {
		var m types.Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.Dosage, &m.Frequency, &m.NextDose, &m.Taken, &m.Type, &m.Color); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) MedicationExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, medicationExistsSQL, id).Scan(&ok)
	return ok, err
}

func (r *repositoryImpl) GetAdherence(ctx context.Context) ([]types.AdherenceDay, error) {
	rows, err := r.db.QueryContext(ctx, getAdherenceSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "adherence")

	var out []types.AdherenceDay
	for rows.Next() {
		var d types.AdherenceDay
		if err := rows.Scan(&d.Day, &d.Adherence); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetMonthlyAdherence(ctx context.Context) (float64, error) {
	var pct float64
	err := r.db.QueryRowContext(ctx, getMonthlyAdherenceSQL).Scan(&pct)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("monthly adherence: %w", ErrNotFound)
	}
	return pct, err
}

func (r *repositoryImpl) GetPredictions(ctx context.Context) ([]types.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, getPredictionsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "predictions")

	var out []types.Prediction
	for rows.Next() {
		var p types.Prediction
		var trigger string
		if err := rows.Scan(&p.ID, &p.Type, &p.Probability, &p.Timeframe, &p.Confidence, &p.Severity, &p.Action, &trigger); err != nil {
			return nil, err
		}
		// One row per trigger; fold them into the previous prediction.
		if n := len(out); n > 0 && out[n-1].ID == p.ID {
			out[n-1].Triggers = append(out[n-1].Triggers, trigger)
			continue
		}
		p.Triggers = []string{}
		if trigger != "" {
			p.Triggers = append(p.Triggers, trigger)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetAlerts(ctx context.Context, limit int) ([]types.Alert, error) {
	rows, err := r.db.QueryContext(ctx, getAlertsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "alerts")

	var out []types.Alert
	for rows.Next() {
		var a types.Alert
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.Severity, &createdAt); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetRiskAssessment(ctx context.Context) (types.RiskAssessment, error) {
	var ra types.RiskAssessment
	var assessedAt string
	err := r.db.QueryRowContext(ctx, getRiskAssessmentSQL).Scan(
		&ra.Overall, &ra.Environmental, &ra.Medication, &ra.Symptoms, &assessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RiskAssessment{}, fmt.Errorf("risk assessment: %w", ErrNotFound)
	}
	if err != nil {
		return types.RiskAssessment{}, err
	}
	ra.AssessedAt, err = parseTime(assessedAt)
	return ra, err
}

func (r *repositoryImpl) GetHealthTrends(ctx context.Context) ([]types.HealthTrend, error) {
	rows, err := r.db.QueryContext(ctx, getHealthTrendsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "health trends")

	var out []types.HealthTrend
	for rows.Next() {
		var t types.HealthTrend
		if err := rows.Scan(&t.Date, &t.PeakFlow, &t.Adherence, &t.Symptoms); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetHealthScore(ctx context.Context) (types.HealthScore, error) {
	var hs types.HealthScore
	var assessedAt string
	err := r.db.QueryRowContext(ctx, getHealthScoreSQL).Scan(&hs.LungFunction, &hs.Environmental, &assessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.HealthScore{}, fmt.Errorf("health score: %w", ErrNotFound)
	}
	if err != nil {
		return types.HealthScore{}, err
	}
	hs.AssessedAt, err = parseTime(assessedAt)
	return hs, err
}

// GetPredictionAccuracy returns the model's headline rates with the weekly
// predicted-versus-actual series.
func (r *repositoryImpl) GetPredictionAccuracy(ctx context.Context) (types.PredictionAccuracy, error) {
	var pa types.PredictionAccuracy
	err := r.db.QueryRowContext(ctx, getPredictionAccuracySQL).Scan(
		&pa.AccuracyRate, &pa.FalsePositiveRate, &pa.MissedEventRate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PredictionAccuracy{}, fmt.Errorf("prediction accuracy: %w", ErrNotFound)
	}
	if err != nil {
		return types.PredictionAccuracy{}, err
	}

	rows, err := r.db.QueryContext(ctx, getPredictionAccuracyDaysSQL)
	if err != nil {
		return types.PredictionAccuracy{}, err
	}
	defer closeRows(rows, "prediction accuracy days")

	pa.Days = []types.AccuracyDay{}
	for rows.Next() {
		var d types.AccuracyDay
		if err := rows.Scan(&d.Day, &d.PredictedRisk, &d.ActualEvents); err != nil {
			return types.PredictionAccuracy{}, err
		}
		pa.Days = append(pa.Days, d)
	}
	return pa, rows.Err()
}

// GetPatterns lists environmental patterns before behavioral ones.
func (r *repositoryImpl) GetPatterns(ctx context.Context) ([]types.Pattern, error) {
	rows, err := r.db.QueryContext(ctx, getPatternsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "patterns")

	var out []types.Pattern
	for rows.Next() {
		var p types.Pattern
		if err := rows.Scan(&p.Category, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetDeviceActivity(ctx context.Context) ([]types.DeviceActivity, error) {
	rows, err := r.db.QueryContext(ctx, getDeviceActivitySQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "device activity")

	var out []types.DeviceActivity
	for rows.Next() {
		var a types.DeviceActivity
		if err := rows.Scan(&a.Label, &a.Count, &a.Color); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetReminders(ctx context.Context) ([]types.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, getRemindersSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "reminders")

	var out []types.Reminder
	for rows.Next() {
		var rm types.Reminder
		if err := rows.Scan(&rm.Kind, &rm.Title, &rm.Message); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetTreatmentMedications(ctx context.Context) ([]types.TreatmentMedication, error) {
	rows, err := r.db.QueryContext(ctx, getTreatmentMedicationsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "treatment medications")

	var out []types.TreatmentMedication
	for rows.Next() {
		var m types.TreatmentMedication
		if err := rows.Scan(&m.Name, &m.Instructions, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetCareInstructions(ctx context.Context) ([]types.CareInstruction, error) {
	rows, err := r.db.QueryContext(ctx, getCareInstructionsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "care instructions")

	var out []types.CareInstruction
	for rows.Next() {
		var c types.CareInstruction
		if err := rows.Scan(&c.Instruction, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetLatestVitals(ctx context.Context) (map[string]types.Reading, error) {
	return r.latestReadings(ctx, vitalMetrics)
}

func (r *repositoryImpl) GetLatestEnvironment(ctx context.Context) (map[string]types.Reading, error) {
	return r.latestReadings(ctx, environmentMetrics)
}

// latestReadings returns the newest reading per metric, keyed by metric.
// Metrics with no readings are absent from the map.
func (r *repositoryImpl) latestReadings(ctx context.Context, metrics []string) (map[string]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getLatestReadingsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "latest readings")

	out := make(map[string]types.Reading, len(metrics))
	for rows.Next() {
		var rec types.Reading
		var ts string
		if err := rows.Scan(&rec.SourceID, &rec.Metric, &ts, &rec.Value, &rec.Unit); err != nil {
			return nil, err
		}
		if !slices.Contains(metrics, rec.Metric) {
			continue
		}
		if _, seen := out[rec.Metric]; seen {
			continue
		}
		if rec.Time, err = parseTime(ts); err != nil {
			return nil, err
		}
		out[rec.Metric] = rec
	}
	return out, rows.Err()
}

// GetVitalHistory returns up to limit of the most recent vital samples, oldest first.
func (r *repositoryImpl) GetVitalHistory(ctx context.Context, limit int) ([]types.VitalSample, error) {
	rows, err := r.db.QueryContext(ctx, getVitalHistorySQL, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "vital history")

	var out []types.VitalSample
	for rows.Next() {
		var ts string
		var hr, spo2, rr sql.NullFloat64
		if err := rows.Scan(&ts, &hr, &spo2, &rr); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, types.VitalSample{
			Time:            t,
			HeartRate:       nullable(hr),
			SpO2:            nullable(spo2),
			RespiratoryRate: nullable(rr),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// GetEnvironmentHistory returns up to limit of the most recent air quality samples, oldest first.
func (r *repositoryImpl) GetEnvironmentHistory(ctx context.Context, limit int) ([]types.AirQualitySample, error) {
	rows, err := r.db.QueryContext(ctx, getEnvironmentHistorySQL, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "environment history")

	var out []types.AirQualitySample
	for rows.Next() {
		var ts string
		var aqi, pm25, pm10 sql.NullFloat64
		if err := rows.Scan(&ts, &aqi, &pm25, &pm10); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		out = append(out, types.AirQualitySample{
			Time: t,
			AQI:  nullable(aqi),
			PM25: nullable(pm25),
			PM10: nullable(pm10),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (r *repositoryImpl) InsertReading(ctx context.Context, reading types.Reading) error {
	if reading.SourceID == "" || reading.Metric == "" {
		return errors.New("reading requires source id and metric")
	}
	if reading.Time.IsZero() {
		return errors.New("reading requires a timestamp")
	}
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.SourceID, reading.Metric, formatTime(reading.Time), reading.Value, reading.Unit,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func formatTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, s)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", s, err, err2)
		}
	}
	return t, nil
}
