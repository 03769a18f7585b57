package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Ad-hoc aggregation
	GenerateReport(w http.ResponseWriter, r *http.Request)

	// Saved and scheduled definitions
	SaveReport(w http.ResponseWriter, r *http.Request)
	ScheduleReport(w http.ResponseWriter, r *http.Request)
	ListReports(w http.ResponseWriter, r *http.Request)
	DeleteReport(w http.ResponseWriter, r *http.Request)

	// Public page data for a shared report
	GetSavedReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GenerateReport handles POST /reports/generate
func (h *reportHandlerImpl) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req report.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.GenerateReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SaveReport handles POST /reports
func (h *reportHandlerImpl) SaveReport(w http.ResponseWriter, r *http.Request) {
	var req report.SaveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.SaveReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Report saved", result)
}

// ScheduleReport handles POST /reports/schedule
func (h *reportHandlerImpl) ScheduleReport(w http.ResponseWriter, r *http.Request) {
	var req report.ScheduleReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.ScheduleReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Report scheduled", result)
}

// ListReports handles GET /reports
func (h *reportHandlerImpl) ListReports(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.ListReports(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DeleteReport handles DELETE /reports/{id}
func (h *reportHandlerImpl) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.reportService.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Report deleted", nil)
}

// GetSavedReport handles GET /reports/saved/{url}
func (h *reportHandlerImpl) GetSavedReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetSavedReport(r.Context(), chi.URLParam(r, "url"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
