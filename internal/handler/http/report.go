package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type ReportHandler interface {
	LateArrivals(w http.ResponseWriter, r *http.Request)
	Departments(w http.ResponseWriter, r *http.Request)
	Employee(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func (h *reportHandlerImpl) LateArrivals(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.LateArrivals(r.Context(), report.LateArrivalsRequest{
		Date:           r.URL.Query().Get("date"),
		DepartmentCode: queryPtr(r, "department"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) Departments(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DepartmentSummary(r.Context(), report.RangeRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) Employee(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.EmployeeSummary(r.Context(), report.RangeRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
