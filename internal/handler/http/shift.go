package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type ShiftHandler interface {
	// Shift type handlers
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	DeleteType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)

	// Assignment handlers
	Assign(w http.ResponseWriter, r *http.Request)
	ListForEmployee(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
	ListForDepartment(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
	}
}

func (h *shiftHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req shift.ShiftTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.shiftService.CreateShiftType(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift type created successfully", result)
}

func (h *shiftHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req shift.ShiftTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.shiftService.UpdateShiftType(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift type updated successfully", result)
}

func (h *shiftHandlerImpl) DeleteType(w http.ResponseWriter, r *http.Request) {
	err := h.shiftService.DeleteShiftType(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift type deleted successfully", nil)
}

func (h *shiftHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.ListShiftTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *shiftHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req shift.AssignShiftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.shiftService.AssignShift(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift assigned successfully", result)
}

func (h *shiftHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	from, err := optionalDateQuery(r, "from")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	to, err := optionalDateQuery(r, "to")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.ListEmployeeShifts(r.Context(), chi.URLParam(r, "employeeID"), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Resolve returns the shift in force for the employee on ?date, or null.
func (h *shiftHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.ResolveShift(r.Context(), chi.URLParam(r, "employeeID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *shiftHandlerImpl) ListForDepartment(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.shiftService.ListDepartmentShifts(r.Context(), chi.URLParam(r, "code"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
