package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type StatusHandler interface {
	// Status type handlers
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	DeleteType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)

	// Assignment handlers
	Add(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListForEmployee(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
	ListForDepartment(w http.ResponseWriter, r *http.Request)
}

type statusHandlerImpl struct {
	statusService status.StatusService
}

func NewStatusHandler(statusService status.StatusService) StatusHandler {
	return &statusHandlerImpl{
		statusService: statusService,
	}
}

type rejectRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (h *statusHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req status.StatusTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.statusService.CreateStatusType(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Status type created successfully", result)
}

func (h *statusHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req status.StatusTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.statusService.UpdateStatusType(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Status type updated successfully", result)
}

func (h *statusHandlerImpl) DeleteType(w http.ResponseWriter, r *http.Request) {
	err := h.statusService.DeleteStatusType(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Status type deleted successfully", nil)
}

func (h *statusHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.statusService.ListStatusTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statusHandlerImpl) Add(w http.ResponseWriter, r *http.Request) {
	var req status.AddStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.statusService.AddStatusAssignment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Status assignment added", result)
}

func (h *statusHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.statusService.GetStatusAssignment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// filter reads from, to and state from the query string.
func (h *statusHandlerImpl) filter(r *http.Request) (status.AssignmentFilter, error) {
	var filter status.AssignmentFilter

	from, err := optionalDateQuery(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := optionalDateQuery(r, "to")
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to

	if v := r.URL.Query().Get("state"); v != "" {
		state := status.ApprovalState(v)
		if !state.Valid() {
			return filter, validator.Field("state", "state must be pending, approved or rejected")
		}
		filter.State = &state
	}
	return filter, nil
}

func (h *statusHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.EmployeeID = queryPtr(r, "employee_id")
	filter.DepartmentCode = queryPtr(r, "department")

	result, err := h.statusService.ListStatusAssignments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statusHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	filter.EmployeeID = &employeeID

	result, err := h.statusService.ListStatusAssignments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statusHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.statusService.ApproveStatusAssignment(r.Context(), chi.URLParam(r, "id"), middleware.ActorFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Status assignment approved", result)
}

// Reject accepts an empty body; the reason is optional.
func (h *statusHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.statusService.RejectStatusAssignment(r.Context(), chi.URLParam(r, "id"), middleware.ActorFromContext(r.Context()), req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Status assignment rejected", result)
}

// Resolve returns the status in force for the employee on ?date, or null.
func (h *statusHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.statusService.ResolveStatus(r.Context(), chi.URLParam(r, "employeeID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statusHandlerImpl) ListForDepartment(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.statusService.ListDepartmentStatus(r.Context(), chi.URLParam(r, "code"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
