package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type EmployeeHandler interface {
	// Department handlers
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	UpdateDepartment(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartments(w http.ResponseWriter, r *http.Request)

	// Employee handlers
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Transfer(w http.ResponseWriter, r *http.Request)
	ListTransfers(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeService: employeeService,
	}
}

// ==================== DEPARTMENT HANDLERS ====================

func (h *employeeHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateDepartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.employeeService.CreateDepartment(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Department created successfully", result)
}

func (h *employeeHandlerImpl) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateDepartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Code = chi.URLParam(r, "code")

	result, err := h.employeeService.UpdateDepartment(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Department updated successfully", result)
}

func (h *employeeHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetDepartment(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *employeeHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.ListDepartments(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ==================== EMPLOYEE HANDLERS ====================

func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.employeeService.CreateEmployee(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee created successfully", result)
}

func (h *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.ListEmployees(r.Context(), employee.EmployeeFilter{
		DepartmentCode: queryPtr(r, "department"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *employeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req employee.UpdateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "employeeID")

	result, err := h.employeeService.UpdateEmployee(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee updated successfully", result)
}

func (h *employeeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.employeeService.DeleteEmployee(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee deleted successfully", nil)
}

func (h *employeeHandlerImpl) Transfer(w http.ResponseWriter, r *http.Request) {
	var req employee.TransferEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.employeeService.TransferEmployee(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee transferred successfully", result)
}

func (h *employeeHandlerImpl) ListTransfers(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.ListTransfers(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
