package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type DeviceHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.DeviceService
}

func NewDeviceHandler(deviceService device.DeviceService) DeviceHandler {
	return &deviceHandlerImpl{
		deviceService: deviceService,
	}
}

func (h *deviceHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req device.RegisterDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.deviceService.RegisterDevice(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Device registered successfully", result)
}

func (h *deviceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.ListDevices(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Sync polls one device now instead of waiting for the next scheduled tick.
func (h *deviceHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.SyncDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
