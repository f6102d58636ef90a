package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type OvertimeHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
	EmployeeDays(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &overtimeHandlerImpl{
		overtimeService: overtimeService,
	}
}

// Summary aggregates overtime per employee, scoped by employee_id or department.
func (h *overtimeHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	req := overtime.Request{
		EmployeeID:     queryPtr(r, "employee_id"),
		DepartmentCode: queryPtr(r, "department"),
		From:           r.URL.Query().Get("from"),
		To:             r.URL.Query().Get("to"),
	}

	result, err := h.overtimeService.ComputeOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *overtimeHandlerImpl) EmployeeDays(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	req := overtime.Request{
		EmployeeID: &employeeID,
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}

	result, err := h.overtimeService.OvertimeDays(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
