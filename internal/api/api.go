/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/export"
	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
	"github.com/friendsincode/crewrota/internal/version"
)

// DefaultMaxReportDays is used when no report limit is configured.
const DefaultMaxReportDays = 90

// API exposes the planner over HTTP.
type API struct {
	planner       *planner.Service
	renderer      *export.Renderer
	maxReportDays int
	logger        zerolog.Logger
}

// New creates the API router wrapper.
func New(svc *planner.Service, maxReportDays int, logger zerolog.Logger) *API {
	if maxReportDays <= 0 {
		maxReportDays = DefaultMaxReportDays
	}
	return &API{
		planner:       svc,
		maxReportDays: maxReportDays,
		logger:        logger.With().Str("component", "api").Logger(),
	}
}

// SetRenderer enables the png and pdf export formats.
func (a *API) SetRenderer(r *export.Renderer) {
	a.renderer = r
}

type scheduleRequest struct {
	rota.Params
	Fallback bool `json:"fallback"`
}

type validateRequest struct {
	Schedule    rota.Schedule `json:"schedule"`
	HorizonDays int           `json:"horizon_days"`
	GraceDays   int           `json:"grace_days"`
}

type validateResponse struct {
	Days     int            `json:"days"`
	Findings []rota.Finding `json:"findings"`
}

// Routes mounts API routes on provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)
		r.Get("/coverage-start", a.handleCoverageStart)

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", a.handleGenerate)
			r.Post("/required-duty", a.handleGenerateRequired)
			r.Post("/validate", a.handleValidate)
			r.Post("/export/{format}", a.handleExport)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func (a *API) handleCoverageStart(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("induction_length")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "induction_length_required")
		return
	}
	induction, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_induction_length")
		return
	}
	if induction < 1 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_configuration")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"coverage_start_day": rota.CoverageStartDay(rota.Params{InductionLength: induction}),
	})
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	plan, err := a.planner.Plan(r.Context(), req.Params, req.Fallback)
	if err != nil {
		a.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *API) handleGenerateRequired(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	plan, err := a.planner.PlanRequiredDutyDays(r.Context(), req.Params, req.Fallback)
	if err != nil {
		a.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Schedule.Days() == 0 {
		writeError(w, http.StatusBadRequest, "schedule_required")
		return
	}

	findings := a.planner.Validate(r.Context(), req.Schedule, req.HorizonDays, req.GraceDays)
	if findings == nil {
		findings = []rota.Finding{}
	}
	writeJSON(w, http.StatusOK, validateResponse{Days: req.Schedule.Days(), Findings: findings})
}

// handleExport plans the request body and returns it as an attachment. The
// start_date query parameter (YYYY-MM-DD) anchors dated formats.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))

	opts := export.Options{}
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date")
			return
		}
		opts.StartDate = start
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	rendered := format == string(export.FormatPNG) || format == string(export.FormatPDF)
	if (format == "html" || rendered) && req.HorizonDays > a.maxReportDays {
		writeError(w, http.StatusUnprocessableEntity, "horizon_too_long_for_report")
		return
	}
	if rendered && a.renderer == nil {
		writeError(w, http.StatusNotImplemented, "rendering_disabled")
		return
	}

	plan, err := a.planner.Plan(r.Context(), req.Params, req.Fallback)
	if err != nil {
		a.writePlanError(w, err)
		return
	}

	var result *export.Result
	if rendered {
		result, err = a.renderer.RenderPlan(r.Context(), plan, export.Format(format))
	} else {
		result, err = export.Export(plan, format, opts)
	}
	if errors.Is(err, export.ErrUnknownFormat) {
		writeError(w, http.StatusNotFound, "unknown_format")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Str("format", format).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (a *API) writePlanError(w http.ResponseWriter, err error) {
	status, code := planErrorStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Warn().Err(err).Int("status", status).Msg("planning request failed")
	}
	writeError(w, status, code)
}

// planErrorStatus maps planner errors onto HTTP status codes.
func planErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, rota.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity, "invalid_configuration"
	case errors.Is(err, rota.ErrInfeasibleSchedule):
		return http.StatusConflict, "infeasible_schedule"
	case errors.Is(err, rota.ErrSearchBudgetExceeded):
		return http.StatusServiceUnavailable, "search_budget_exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "solver_timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request_cancelled"
	default:
		return http.StatusInternalServerError, "planning_failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
