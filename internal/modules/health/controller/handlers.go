package controller

import (
	"bytes"
	"net/http"

	"respirate-server/internal/classify"
	"respirate-server/internal/modules/health/views"
	"respirate-server/internal/utils"
)

func (c *healthControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tab, ok := resolveTab(r)
	if !ok {
		c.logger.Warn("index: unknown tab, using default", "tab", r.URL.Query().Get("tab"))
	}

	content, err := c.tabContent(r.Context(), tab)
	if err != nil {
		c.logger.Error("index: load tab failed", "tab", tab, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load "+tab)
		return
	}

	var buf bytes.Buffer
	data := &views.PageData{Tabs: views.Tabs(), Active: tab, Content: content}
	if err := views.RenderPage(&buf, data); err != nil {
		c.logger.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("index: write response failed", "error", err)
	}
}

func (c *healthControllerImpl) handleTabPartial(w http.ResponseWriter, r *http.Request) {
	tab := r.PathValue("tab")
	if _, ok := views.LookupTab(tab); !ok {
		utils.WriteError(w, http.StatusNotFound, "unknown tab "+tab)
		return
	}

	content, err := c.tabContent(r.Context(), tab)
	if err != nil {
		c.logger.Error("partial: load tab failed", "tab", tab, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load "+tab)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderTab(&buf, tab, content); err != nil {
		c.logger.Error("partial render failed", "tab", tab, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("partial: write response failed", "error", err)
	}
}

func (c *healthControllerImpl) handleScales(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, classify.Scales())
}

func (c *healthControllerImpl) handleClassifyScale(w http.ResponseWriter, r *http.Request) {
	id := classify.ScaleID(r.PathValue("scale"))
	if _, err := classify.Lookup(id); err != nil {
		utils.WriteError(w, statusFor(err), err.Error())
		return
	}
	value, err := utils.QueryFloat(r, "value")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := classify.Classify(id, value)
	if err != nil {
		utils.WriteError(w, statusFor(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (c *healthControllerImpl) handleVitalRanges(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, classify.Vitals())
}

func (c *healthControllerImpl) handleClassifyVital(w http.ResponseWriter, r *http.Request) {
	vr, err := classify.LookupVital(r.PathValue("vital"))
	if err != nil {
		utils.WriteError(w, statusFor(err), err.Error())
		return
	}
	value, err := utils.QueryFloat(r, "value")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := classify.ClassifyVital(vr, value)
	if err != nil {
		utils.WriteError(w, statusFor(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (c *healthControllerImpl) handleVitals(w http.ResponseWriter, r *http.Request) {
	vitals, err := c.service.Vitals(r.Context())
	c.writeResult(w, "vitals", vitals, err)
}

func (c *healthControllerImpl) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	env, err := c.service.Environment(r.Context())
	c.writeResult(w, "environment", env, err)
}

func (c *healthControllerImpl) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := c.service.Devices(r.Context())
	c.writeResult(w, "devices", devices, err)
}

func (c *healthControllerImpl) handleMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := c.service.Medications(r.Context())
	c.writeResult(w, "medications", meds, err)
}

func (c *healthControllerImpl) handlePredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := c.service.Predictions(r.Context())
	c.writeResult(w, "predictions", preds, err)
}

func (c *healthControllerImpl) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := c.service.Alerts(r.Context())
	c.writeResult(w, "alerts", alerts, err)
}

func (c *healthControllerImpl) handlePatient(w http.ResponseWriter, r *http.Request) {
	patient, err := c.service.Patient(r.Context())
	c.writeResult(w, "patient", patient, err)
}

func (c *healthControllerImpl) handleMedicationTaken(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := c.service.MarkMedicationTaken(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			c.logger.Error("mark medication taken failed", "medication_id", id, "error", err)
			utils.WriteError(w, status, "failed to record medication")
			return
		}
		utils.WriteError(w, status, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, ev)
}

func (c *healthControllerImpl) writeResult(w http.ResponseWriter, what string, v any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			c.logger.Error("load failed", "resource", what, "error", err)
			utils.WriteError(w, status, "failed to load "+what)
			return
		}
		utils.WriteError(w, status, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}
