package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"respirate-server/internal/classify"
	"respirate-server/internal/modules/health/service"
	"respirate-server/internal/modules/health/types"
)

func ptr(v float64) *float64 { return &v }

func category(t *testing.T, id classify.ScaleID, v float64) *classify.Category {
	t.Helper()
	res, err := classify.Classify(id, v)
	if err != nil {
		t.Fatalf("Classify(%s, %v): %v", id, v, err)
	}
	return &res.Category
}

func loaded(t *testing.T) {
	t.Helper()
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
}

func TestLoadTemplates_success(t *testing.T) {
	loaded(t)
	if pageTmpl == nil {
		t.Fatal("LoadTemplates() left pageTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	err := loadTemplatesFromFS(fstest.MapFS{}, "templates")
	if err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/index.html":          {Data: []byte("{{ .")},
		"templates/partials/badge.html": {Data: []byte("")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_missingTab(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/index.html":              {Data: []byte("ok")},
		"templates/partials/dashboard.html": {Data: []byte(`{{define "tab-dashboard"}}x{{end}}`)},
	}
	err := loadTemplatesFromFS(fsys, "templates")
	if err == nil || !strings.Contains(err.Error(), "tab-predictions") {
		t.Fatalf("err = %v; want missing tab-predictions", err)
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := pageTmpl
	pageTmpl = nil
	t.Cleanup(func() { pageTmpl = prev })

	var buf bytes.Buffer
	if err := RenderPage(&buf, &PageData{}); err == nil || !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("RenderPage err = %v; want not loaded", err)
	}
	if err := RenderTab(&buf, "dashboard", nil); err == nil || !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("RenderTab err = %v; want not loaded", err)
	}
}

func TestRenderTab_unknown(t *testing.T) {
	loaded(t)
	var buf bytes.Buffer
	if err := RenderTab(&buf, "settings", nil); err == nil {
		t.Fatal("RenderTab(settings) = nil; want error")
	}
}

func TestLookupTab(t *testing.T) {
	if _, ok := LookupTab("environment"); !ok {
		t.Error("LookupTab(environment) = false")
	}
	if _, ok := LookupTab("Environment"); ok {
		t.Error("LookupTab is case sensitive")
	}
	if got := len(Tabs()); got != 6 {
		t.Errorf("len(Tabs()) = %d; want 6", got)
	}
}

func dashboardData(t *testing.T) service.Dashboard {
	hr, _ := classify.LookupVital(classify.VitalHeartRate)
	res, err := classify.ClassifyVital(hr, 72)
	if err != nil {
		t.Fatal(err)
	}
	return service.Dashboard{
		Vitals: []service.Reading{
			{Metric: "heart_rate", Name: "Heart Rate", Unit: "bpm", Value: ptr(72), Category: &res.Category, Range: &hr},
			{Metric: "peak_flow", Name: "Peak Flow", Unit: "L/min"},
			{Metric: "spo2", Name: "Oxygen Saturation", Unit: "%", Value: ptr(-1), Error: "invalid reading for spo2"},
		},
		History: []types.VitalSample{{Time: time.Date(2024, 3, 29, 6, 0, 0, 0, time.UTC), HeartRate: ptr(68)}},
		Score:   service.HealthScore{Overall: 8.5, LungFunction: 92, Adherence: 88, Environmental: 76},
	}
}

func TestRenderPage_dashboard(t *testing.T) {
	loaded(t)

	var buf bytes.Buffer
	err := RenderPage(&buf, &PageData{Tabs: Tabs(), Active: "dashboard", Content: dashboardData(t)})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"RespirateAI", "Respiratory Health Assistant",
		`hx-get="/partials/predictions"`, "AI Alerts",
		"Heart Rate", "normal", "No data", "Invalid reading",
		"8.5/10", "88%", "06:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, `data-tab="dashboard"`) || !strings.Contains(out, `aria-selected="true"`) {
		t.Error("active tab not marked")
	}
}

func TestRenderTab_outOfBandNav(t *testing.T) {
	loaded(t)

	var buf bytes.Buffer
	if err := RenderTab(&buf, "devices", service.DevicesView{}); err != nil {
		t.Fatalf("RenderTab: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `id="tab-nav"`) || !strings.Contains(out, `hx-swap-oob="true"`) {
		t.Fatalf("partial has no out-of-band nav: %q", out)
	}
	if got := strings.Count(out, `aria-selected="true"`); got != 1 {
		t.Errorf("aria-selected=true count = %d; want 1", got)
	}
	active := `data-tab="devices"
     class="text-center text-sm rounded-md px-3 py-2 bg-white shadow font-medium"
     aria-selected="true"`
	if !strings.Contains(out, active) {
		t.Errorf("devices tab not marked active:\n%s", out)
	}
	if strings.Contains(out, `data-tab="dashboard"
     class="text-center text-sm rounded-md px-3 py-2 bg-white`) {
		t.Error("dashboard tab still marked active")
	}
}

func TestRenderPage_navIsNotOutOfBand(t *testing.T) {
	loaded(t)

	var buf bytes.Buffer
	data := &PageData{Tabs: Tabs(), Active: "doctor", Content: service.DoctorView{}}
	if err := RenderPage(&buf, data); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if strings.Contains(buf.String(), "hx-swap-oob") {
		t.Error("full page nav must not be out-of-band")
	}
}

func TestLoadTemplates_failure_missingNav(t *testing.T) {
	fsys := fstest.MapFS{"templates/index.html": {Data: []byte("ok")}}
	for _, tab := range tabs {
		fsys["templates/partials/"+tab.ID+".html"] = &fstest.MapFile{
			Data: []byte(`{{define "tab-` + tab.ID + `"}}x{{end}}`),
		}
	}
	err := loadTemplatesFromFS(fsys, "templates")
	if err == nil || !strings.Contains(err.Error(), "tab-nav") {
		t.Fatalf("err = %v; want missing tab-nav", err)
	}
}

func TestRenderTab_environmentWarning(t *testing.T) {
	loaded(t)

	base := service.EnvironmentView{
		AirQuality: service.Reading{Metric: "aqi", Name: "Air Quality", Unit: "AQI", Value: ptr(68), Category: category(t, classify.ScaleAQI, 68)},
		Pollen:     service.Reading{Metric: "pollen", Name: "Pollen", Value: ptr(3), Category: category(t, classify.ScalePollen, 3)},
		UV:         service.Reading{Metric: "uv", Name: "UV Index", Value: ptr(6), Category: category(t, classify.ScaleUV, 6)},
	}

	var buf bytes.Buffer
	if err := RenderTab(&buf, "environment", base); err != nil {
		t.Fatalf("RenderTab: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `id="aqi-warning"`) {
		t.Error("warning rendered without Warning set")
	}
	for _, want := range []string{"Moderate", "Medium pollen levels", "High"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	base.Warning = &service.EnvironmentWarning{Title: "Air Quality Warning", Message: "Everyone should limit outdoor activities."}
	buf.Reset()
	if err := RenderTab(&buf, "environment", base); err != nil {
		t.Fatalf("RenderTab: %v", err)
	}
	if !strings.Contains(buf.String(), `id="aqi-warning"`) {
		t.Error("warning not rendered")
	}
}

func TestRenderTab_predictions(t *testing.T) {
	loaded(t)
	high, _ := classify.ClassifySeverity("high")

	view := service.PredictionsView{
		Risk: service.RiskView{
			Overall:  service.Reading{Name: "Overall Risk", Value: ptr(72), Category: category(t, classify.ScaleRisk, 72)},
			Elevated: true,
		},
		Predictions: []service.PredictionCard{{
			Prediction: types.Prediction{Type: "asthma_attack", Probability: 78, Confidence: 85, Triggers: []string{"High pollen count"}, Action: "Take preventive medication"},
			Title:      "Asthma Attack",
			Level:      &high,
			Likelihood: category(t, classify.ScaleRisk, 78),
		}},
		Accuracy: service.AccuracyView{
			AccuracyRate:      94.2,
			FalsePositiveRate: 3.8,
			MissedEventRate:   2,
			Days: []service.AccuracyDay{{
				Day:          "Thu",
				Predicted:    service.Reading{Name: "Thu", Value: ptr(75), Category: category(t, classify.ScaleRisk, 75)},
				ActualEvents: 72,
			}},
		},
		Patterns: []service.PatternGroup{{
			Category: "behavioral",
			Title:    "Behavioral Patterns",
			Color:    "green",
			Items:    []string{"Medication adherence drops on weekends"},
		}},
	}
	var buf bytes.Buffer
	if err := RenderTab(&buf, "predictions", view); err != nil {
		t.Fatalf("RenderTab: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"AI Alert", "Asthma Attack", "78%", "High pollen count", `data-icon="alert-triangle"`, "text-red-600",
		"AI Prediction Accuracy", `data-accuracy-day="Thu"`, "75% / 72%", "94.2%", "3.8%", "2%",
		"AI Pattern Recognition", "Behavioral Patterns", "bg-green-50", "Medication adherence drops on weekends",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderTab_devicesMedicationDoctor(t *testing.T) {
	loaded(t)
	medium, _ := classify.ClassifySeverity("medium")

	tests := []struct {
		tab     string
		content any
		want    []string
	}{
		{
			tab: "devices",
			content: service.DevicesView{
				Devices: []service.DeviceCard{{
					Device:  types.Device{ID: 4, Name: "Fitness Tracker", Battery: 23},
					Battery: service.Reading{Value: ptr(23), Category: category(t, classify.ScaleBattery, 23)},
				}},
				Total:    1,
				Activity: []types.DeviceActivity{{Label: "Steps Taken", Count: 8420, Color: "orange"}},
			},
			want: []string{"Fitness Tracker", "Disconnected", "0/1 Connected", "Low", "23%",
				"Today's Device Activity", "Steps Taken", "8,420", "text-orange-600"},
		},
		{
			tab: "medication",
			content: service.MedicationView{
				Items: []service.MedicationItem{
					{Medication: types.Medication{ID: 2, Name: "Budesonide", Color: "#3b82f6"}, Status: "Pending"},
				},
				Total: 1, MonthlyAdherence: 85, MissedDoses: 15,
				Weekly: []types.AdherenceDay{{Day: "Mon", Adherence: 90}},
				Reminders: []service.ReminderItem{{
					Reminder: types.Reminder{Kind: "dose", Title: "Upcoming Dose Reminder", Message: "Budesonide 200 mcg due in 30 minutes"},
					Color:    "blue",
					Icon:     "bell",
				}},
			},
			want: []string{"Budesonide", "Pending", `hx-post="/api/v1/medications/2/taken"`, "85%", "15%", "Mon",
				"Smart Reminders", `data-reminder="dose"`, "Upcoming Dose Reminder", "due in 30 minutes", "bg-blue-50"},
		},
		{
			tab: "doctor",
			content: service.DoctorView{
				Patient:     types.Patient{Name: "Sarah Johnson", Age: 34, RiskLevel: "medium"},
				RiskLevel:   &medium,
				AvgPeakFlow: 434, AdherenceRate: 87, SymptomDays: 9,
				Alerts: []service.AlertItem{{Alert: types.Alert{ID: 3, Message: "Patient reported increased shortness of breath"}, Level: &medium}},
				Plan: service.TreatmentPlan{
					Medications: []service.TreatmentItem{{
						TreatmentMedication: types.TreatmentMedication{Name: "Albuterol HFA Inhaler", Instructions: "2 puffs every 6 hours as needed", Role: "rescue"},
						Label:               "Rescue",
						Color:               "red",
					}},
					Instructions: []types.CareInstruction{{Instruction: "Use spacer with MDI inhalers", Color: "purple"}},
				},
			},
			want: []string{"Sarah Johnson", "434 L/min", "87%", "9 days", "shortness of breath", "bg-yellow-50",
				"Current Treatment Plan", "Albuterol HFA Inhaler", `data-treatment="rescue"`, "Rescue", "Use spacer with MDI inhalers", "bg-purple-50"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.tab, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderTab(&buf, tt.tab, tt.content); err != nil {
				t.Fatalf("RenderTab: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	if got := num(nil); got != "—" {
		t.Errorf("num(nil) = %q", got)
	}
	if got := num(ptr(72)); got != "72" {
		t.Errorf("num(72) = %q", got)
	}
	if got := pct(87.5); got != "87.5%" {
		t.Errorf("pct(87.5) = %q", got)
	}
	if got := width(140); got != 100 {
		t.Errorf("width(140) = %v", got)
	}
	if got := width(-3); got != 0 {
		t.Errorf("width(-3) = %v", got)
	}
	if got := badgeClass("magenta"); !strings.Contains(got, "gray") {
		t.Errorf("badgeClass(magenta) = %q", got)
	}
	if got := textClass("red"); got != "text-red-600" {
		t.Errorf("textClass(red) = %q", got)
	}
	for n, want := range map[int]string{0: "0", 12: "12", 999: "999", 1440: "1,440", 8420: "8,420", 1234567: "1,234,567", -4200: "-4,200"} {
		if got := thousands(n); got != want {
			t.Errorf("thousands(%d) = %q, want %q", n, got, want)
		}
	}
}
