package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"respirate-server/internal/classify"
	"respirate-server/internal/modules/health/repository"
	"respirate-server/internal/modules/health/types"
)

const (
	vitalHistoryLimit       = 12
	environmentHistoryLimit = 12
	recentAlertsLimit       = 10
	// aqiWarningThreshold: the environment tab shows a warning above this AQI.
	aqiWarningThreshold = 100
)

var ErrMedicationNotFound = errors.New("medication not found")

type style struct {
	color string
	icon  string
}

var (
	patternColors = map[string]string{
		types.PatternEnvironmental: "blue",
		types.PatternBehavioral:    "green",
	}
	reminderStyles = map[string]style{
		"dose":       {color: "blue", icon: "bell"},
		"suggestion": {color: "yellow", icon: "alert-circle"},
		"progress":   {color: "green", icon: "check-circle"},
	}
	treatmentRoles = map[string]style{
		"rescue":     {color: "red"},
		"controller": {color: "blue"},
	}
)

type Service struct {
	repository repository.HealthRepository
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

func NewService(repository repository.HealthRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repository: repository,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Vitals returns the latest value of every vital with its range status.
func (s *Service) Vitals(ctx context.Context) ([]Reading, error) {
	latest, err := s.repository.GetLatestVitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest vitals: %w", err)
	}

	ranges := classify.Vitals()
	out := make([]Reading, 0, len(ranges))
	for _, vr := range ranges {
		out = append(out, s.classifyVital(vr, latest))
	}
	return out, nil
}

func (s *Service) classifyVital(vr classify.VitalRange, latest map[string]types.Reading) Reading {
	out := Reading{Metric: vr.Vital, Name: vr.Name, Unit: vr.Unit, Range: &vr}
	rec, ok := latest[vr.Vital]
	if !ok {
		return out
	}
	out.Value, out.Time = &rec.Value, rec.Time

	res, err := classify.ClassifyVital(vr, rec.Value)
	if err != nil {
		s.logger.Warn("stored vital failed classification",
			"metric", vr.Vital, "value", rec.Value, "source_id", rec.SourceID, "error", err)
		out.Error = err.Error()
		return out
	}
	out.Category = &res.Category
	return out
}

func (s *Service) classifyScale(id classify.ScaleID, name string, rec types.Reading, ok bool) Reading {
	out := Reading{Metric: string(id), Name: name}
	if sc, err := classify.Lookup(id); err == nil {
		out.Unit = sc.Unit
	}
	if !ok {
		return out
	}
	out.Value, out.Time = &rec.Value, rec.Time
	if rec.Unit != "" {
		out.Unit = rec.Unit
	}

	res, err := classify.Classify(id, rec.Value)
	if err != nil {
		s.logger.Warn("stored reading failed classification",
			"scale", id, "value", rec.Value, "source_id", rec.SourceID, "error", err)
		out.Error = err.Error()
		return out
	}
	out.Category = &res.Category
	return out
}

func plainReading(metric, name string, latest map[string]types.Reading) Reading {
	out := Reading{Metric: metric, Name: name}
	if rec, ok := latest[metric]; ok {
		out.Value, out.Unit, out.Time = &rec.Value, rec.Unit, rec.Time
	}
	return out
}

func (s *Service) HealthScore(ctx context.Context) (HealthScore, error) {
	hs, err := s.repository.GetHealthScore(ctx)
	if err != nil {
		return HealthScore{}, fmt.Errorf("health score: %w", err)
	}
	days, err := s.repository.GetAdherence(ctx)
	if err != nil {
		return HealthScore{}, fmt.Errorf("adherence: %w", err)
	}

	adherence := math.Round(mean(len(days), func(i int) float64 { return days[i].Adherence }))
	overall := (hs.LungFunction + adherence + hs.Environmental) / 3 / 10
	return HealthScore{
		Overall:       math.Round(overall*10) / 10,
		LungFunction:  hs.LungFunction,
		Adherence:     adherence,
		Environmental: hs.Environmental,
	}, nil
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	vitals, err := s.Vitals(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	history, err := s.repository.GetVitalHistory(ctx, vitalHistoryLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("vital history: %w", err)
	}
	score, err := s.HealthScore(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Vitals: vitals, History: history, Score: score}, nil
}

func (s *Service) Predictions(ctx context.Context) (PredictionsView, error) {
	ra, err := s.repository.GetRiskAssessment(ctx)
	if err != nil {
		return PredictionsView{}, fmt.Errorf("risk assessment: %w", err)
	}
	preds, err := s.repository.GetPredictions(ctx)
	if err != nil {
		return PredictionsView{}, fmt.Errorf("predictions: %w", err)
	}
	accuracy, err := s.repository.GetPredictionAccuracy(ctx)
	if err != nil {
		return PredictionsView{}, fmt.Errorf("prediction accuracy: %w", err)
	}
	patterns, err := s.repository.GetPatterns(ctx)
	if err != nil {
		return PredictionsView{}, fmt.Errorf("patterns: %w", err)
	}

	risk := func(name string, v float64) Reading {
		return s.classifyScale(classify.ScaleRisk, name, types.Reading{Value: v, Time: ra.AssessedAt}, true)
	}
	view := PredictionsView{
		Risk: RiskView{
			Overall:       risk("Overall Risk", ra.Overall),
			Environmental: risk("Environmental", ra.Environmental),
			Medication:    risk("Medication", ra.Medication),
			Symptoms:      risk("Symptoms", ra.Symptoms),
			AssessedAt:    ra.AssessedAt,
		},
		Predictions: make([]PredictionCard, 0, len(preds)),
		Accuracy: AccuracyView{
			AccuracyRate:      accuracy.AccuracyRate,
			FalsePositiveRate: accuracy.FalsePositiveRate,
			MissedEventRate:   accuracy.MissedEventRate,
			Days:              make([]AccuracyDay, 0, len(accuracy.Days)),
		},
		Patterns: groupPatterns(patterns),
	}
	for _, d := range accuracy.Days {
		view.Accuracy.Days = append(view.Accuracy.Days, AccuracyDay{
			Day:          d.Day,
			Predicted:    risk(d.Day, d.PredictedRisk),
			ActualEvents: d.ActualEvents,
		})
	}
	if c := view.Risk.Overall.Category; c != nil && c.Tier >= classify.TierWarning {
		view.Risk.Elevated = true
	}

	for _, p := range preds {
		card := PredictionCard{Prediction: p, Title: humanize(p.Type)}
		if level, err := classify.ClassifySeverity(p.Severity); err != nil {
			s.logger.Warn("prediction has unknown severity", "prediction_id", p.ID, "severity", p.Severity)
			card.Error = err.Error()
		} else {
			card.Level = &level
		}
		if res, err := classify.Classify(classify.ScaleRisk, p.Probability); err != nil {
			s.logger.Warn("prediction probability failed classification", "prediction_id", p.ID, "error", err)
			card.Error = err.Error()
		} else {
			card.Likelihood = &res.Category
		}
		view.Predictions = append(view.Predictions, card)
	}
	return view, nil
}

// groupPatterns keeps the repository's category order and drops categories
// the dashboard has no panel for.
func groupPatterns(patterns []types.Pattern) []PatternGroup {
	groups := []PatternGroup{}
	for _, p := range patterns {
		color, ok := patternColors[p.Category]
		if !ok {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].Category == p.Category {
			groups[n-1].Items = append(groups[n-1].Items, p.Description)
			continue
		}
		groups = append(groups, PatternGroup{
			Category: p.Category,
			Title:    humanize(p.Category) + " Patterns",
			Color:    color,
			Items:    []string{p.Description},
		})
	}
	return groups
}

func (s *Service) Devices(ctx context.Context) (DevicesView, error) {
	devices, err := s.repository.GetDevices(ctx)
	if err != nil {
		return DevicesView{}, fmt.Errorf("devices: %w", err)
	}
	activity, err := s.repository.GetDeviceActivity(ctx)
	if err != nil {
		return DevicesView{}, fmt.Errorf("device activity: %w", err)
	}

	view := DevicesView{
		Devices:  make([]DeviceCard, 0, len(devices)),
		Total:    len(devices),
		Activity: activity,
	}
	for _, d := range devices {
		card := DeviceCard{
			Device:    d,
			Connected: d.Status == types.DeviceConnected,
			Battery: s.classifyScale(classify.ScaleBattery, "Battery",
				types.Reading{SourceID: fmt.Sprint(d.ID), Value: d.Battery, Time: d.LastSync}, true),
		}
		if card.Connected {
			view.Connected++
		}
		view.Devices = append(view.Devices, card)
	}
	return view, nil
}

func (s *Service) Medications(ctx context.Context) (MedicationView, error) {
	meds, err := s.repository.GetMedications(ctx)
	if err != nil {
		return MedicationView{}, fmt.Errorf("medications: %w", err)
	}
	weekly, err := s.repository.GetAdherence(ctx)
	if err != nil {
		return MedicationView{}, fmt.Errorf("adherence: %w", err)
	}
	monthly, err := s.repository.GetMonthlyAdherence(ctx)
	if err != nil {
		return MedicationView{}, fmt.Errorf("monthly adherence: %w", err)
	}
	reminders, err := s.repository.GetReminders(ctx)
	if err != nil {
		return MedicationView{}, fmt.Errorf("reminders: %w", err)
	}

	view := MedicationView{
		Items:            make([]MedicationItem, 0, len(meds)),
		Total:            len(meds),
		MonthlyAdherence: monthly,
		MissedDoses:      100 - monthly,
		Weekly:           weekly,
		Reminders:        make([]ReminderItem, 0, len(reminders)),
	}
	for _, rm := range reminders {
		st, ok := reminderStyles[rm.Kind]
		if !ok {
			s.logger.Warn("reminder has unknown kind", "kind", rm.Kind, "title", rm.Title)
			st = style{color: "gray", icon: "bell"}
		}
		view.Reminders = append(view.Reminders, ReminderItem{Reminder: rm, Color: st.color, Icon: st.icon})
	}
	for _, m := range meds {
		item := MedicationItem{Medication: m, Status: "Pending"}
		if m.Taken {
			item.Status = "Taken"
			view.Taken++
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

func (s *Service) Environment(ctx context.Context) (EnvironmentView, error) {
	latest, err := s.repository.GetLatestEnvironment(ctx)
	if err != nil {
		return EnvironmentView{}, fmt.Errorf("latest environment: %w", err)
	}
	history, err := s.repository.GetEnvironmentHistory(ctx, environmentHistoryLimit)
	if err != nil {
		return EnvironmentView{}, fmt.Errorf("environment history: %w", err)
	}

	scaled := func(id classify.ScaleID, name string) Reading {
		rec, ok := latest[string(id)]
		return s.classifyScale(id, name, rec, ok)
	}
	view := EnvironmentView{
		AirQuality:  scaled(classify.ScaleAQI, "Air Quality"),
		Pollen:      scaled(classify.ScalePollen, "Pollen"),
		UV:          scaled(classify.ScaleUV, "UV Index"),
		Temperature: plainReading("temperature_f", "Temperature", latest),
		Humidity:    plainReading("humidity_pct", "Humidity", latest),
		Wind:        plainReading("wind_mph", "Wind Speed", latest),
		PM25:        plainReading("pm25", "PM2.5", latest),
		PM10:        plainReading("pm10", "PM10", latest),
		History:     history,
	}

	aq := view.AirQuality
	if aq.Available() && aq.Category != nil && *aq.Value > aqiWarningThreshold {
		view.Warning = &EnvironmentWarning{
			Title:   "Air Quality Warning",
			Message: aq.Category.Description + ". Consider staying indoors and using your air purifier.",
		}
	}
	return view, nil
}

func (s *Service) Alerts(ctx context.Context) ([]AlertItem, error) {
	alerts, err := s.repository.GetAlerts(ctx, recentAlertsLimit)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	out := make([]AlertItem, 0, len(alerts))
	for _, a := range alerts {
		item := AlertItem{Alert: a}
		if level, err := classify.ClassifySeverity(a.Severity); err != nil {
			s.logger.Warn("alert has unknown severity", "alert_id", a.ID, "severity", a.Severity)
			item.Error = err.Error()
		} else {
			item.Level = &level
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) Patient(ctx context.Context) (types.Patient, error) {
	p, err := s.repository.GetPatient(ctx)
	if err != nil {
		return types.Patient{}, fmt.Errorf("patient: %w", err)
	}
	return p, nil
}

func (s *Service) Doctor(ctx context.Context) (DoctorView, error) {
	patient, err := s.Patient(ctx)
	if err != nil {
		return DoctorView{}, err
	}
	trends, err := s.repository.GetHealthTrends(ctx)
	if err != nil {
		return DoctorView{}, fmt.Errorf("health trends: %w", err)
	}
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return DoctorView{}, err
	}
	plan, err := s.treatmentPlan(ctx)
	if err != nil {
		return DoctorView{}, err
	}

	view := DoctorView{
		Patient:       patient,
		Trends:        trends,
		AvgPeakFlow:   math.Round(mean(len(trends), func(i int) float64 { return trends[i].PeakFlow })),
		AdherenceRate: math.Round(mean(len(trends), func(i int) float64 { return trends[i].Adherence })),
		Alerts:        alerts,
		Plan:          plan,
	}
	for _, t := range trends {
		view.SymptomDays += t.Symptoms
	}
	if level, err := classify.ClassifySeverity(patient.RiskLevel); err != nil {
		s.logger.Warn("patient has unknown risk level", "patient_id", patient.ID, "risk_level", patient.RiskLevel)
	} else {
		view.RiskLevel = &level
	}
	return view, nil
}

func (s *Service) treatmentPlan(ctx context.Context) (TreatmentPlan, error) {
	meds, err := s.repository.GetTreatmentMedications(ctx)
	if err != nil {
		return TreatmentPlan{}, fmt.Errorf("treatment medications: %w", err)
	}
	care, err := s.repository.GetCareInstructions(ctx)
	if err != nil {
		return TreatmentPlan{}, fmt.Errorf("care instructions: %w", err)
	}

	plan := TreatmentPlan{Medications: make([]TreatmentItem, 0, len(meds)), Instructions: care}
	for _, m := range meds {
		item := TreatmentItem{TreatmentMedication: m, Label: humanize(m.Role), Color: "gray"}
		if st, ok := treatmentRoles[m.Role]; ok {
			item.Color = st.color
		}
		plan.Medications = append(plan.Medications, item)
	}
	return plan, nil
}

// MarkMedicationTaken acknowledges a dose. The event is logged only.
func (s *Service) MarkMedicationTaken(ctx context.Context, medicationID int64) (MedicationEvent, error) {
	ok, err := s.repository.MedicationExists(ctx, medicationID)
	if err != nil {
		return MedicationEvent{}, fmt.Errorf("medication lookup: %w", err)
	}
	if !ok {
		return MedicationEvent{}, fmt.Errorf("%w: %d", ErrMedicationNotFound, medicationID)
	}

	ev := MedicationEvent{
		EventID:      s.newID(),
		MedicationID: medicationID,
		RecordedAt:   s.now().UTC(),
	}
	s.logger.Info("medication marked taken",
		"event_id", ev.EventID,
		"medication_id", ev.MedicationID,
		"recorded_at", ev.RecordedAt,
	)
	return ev, nil
}

func mean(n int, at func(i int) float64) float64 {
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		sum += at(i)
	}
	return sum / float64(n)
}

var acronyms = map[string]string{"copd": "COPD", "aqi": "AQI", "uv": "UV"}

// humanize turns "asthma_attack" into "Asthma Attack".
func humanize(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
