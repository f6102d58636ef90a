package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type RBACHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	ListOverrides(w http.ResponseWriter, r *http.Request)
	SetOverride(w http.ResponseWriter, r *http.Request)
	ClearOverride(w http.ResponseWriter, r *http.Request)

	// Role handlers
	ListRoles(w http.ResponseWriter, r *http.Request)
	GetRole(w http.ResponseWriter, r *http.Request)
	CreateRole(w http.ResponseWriter, r *http.Request)
	UpdateRole(w http.ResponseWriter, r *http.Request)
	DeleteRole(w http.ResponseWriter, r *http.Request)
	SetRoleCapabilities(w http.ResponseWriter, r *http.Request)
}

type rbacHandlerImpl struct {
	rbacService rbac.Service
}

func NewRBACHandler(rbacService rbac.Service) RBACHandler {
	return &rbacHandlerImpl{
		rbacService: rbacService,
	}
}

type setOverrideRequest struct {
	Granted *bool `json:"granted"`
}

// Me returns the caller's resolved actor.
func (h *rbacHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	response.Success(w, middleware.ActorFromContext(r.Context()))
}

func (h *rbacHandlerImpl) ListOverrides(w http.ResponseWriter, r *http.Request) {
	result, err := h.rbacService.ListOverrides(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SetOverride grants or revokes {capability} depending on the granted flag.
func (h *rbacHandlerImpl) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req setOverrideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Granted == nil {
		response.HandleError(w, validator.Field("granted", "granted is required"))
		return
	}

	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)
	employeeID := chi.URLParam(r, "employeeID")
	capability := rbac.Capability(chi.URLParam(r, "capability"))

	var err error
	if *req.Granted {
		err = h.rbacService.GrantCapability(ctx, actor, employeeID, capability)
	} else {
		err = h.rbacService.RevokeCapability(ctx, actor, employeeID, capability)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Capability override saved", nil)
}

func (h *rbacHandlerImpl) ClearOverride(w http.ResponseWriter, r *http.Request) {
	err := h.rbacService.ClearOverride(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "employeeID"),
		rbac.Capability(chi.URLParam(r, "capability")),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Capability override cleared", nil)
}

// ==================== ROLE HANDLERS ====================

func (h *rbacHandlerImpl) ListRoles(w http.ResponseWriter, r *http.Request) {
	result, err := h.rbacService.ListRoles(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *rbacHandlerImpl) GetRole(w http.ResponseWriter, r *http.Request) {
	result, err := h.rbacService.GetRole(r.Context(), middleware.ActorFromContext(r.Context()), rbac.Role(chi.URLParam(r, "code")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *rbacHandlerImpl) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req rbac.CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.rbacService.CreateRole(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Role created successfully", result)
}

func (h *rbacHandlerImpl) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req rbac.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Code = rbac.Role(chi.URLParam(r, "code"))

	result, err := h.rbacService.UpdateRole(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role updated successfully", result)
}

func (h *rbacHandlerImpl) DeleteRole(w http.ResponseWriter, r *http.Request) {
	err := h.rbacService.DeleteRole(r.Context(), middleware.ActorFromContext(r.Context()), rbac.Role(chi.URLParam(r, "code")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role deleted successfully", nil)
}

// SetRoleCapabilities replaces every grant of {code} with the request body's list.
func (h *rbacHandlerImpl) SetRoleCapabilities(w http.ResponseWriter, r *http.Request) {
	var req rbac.SetRoleCapabilitiesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Code = rbac.Role(chi.URLParam(r, "code"))

	result, err := h.rbacService.SetRoleCapabilities(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Role capabilities saved", result)
}
