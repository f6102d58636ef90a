package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	loc               *time.Location
}

// NewAttendanceHandler reads request timestamps without a zone in loc.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		loc:               loc,
	}
}

func (h *attendanceHandlerImpl) punch(w http.ResponseWriter, r *http.Request) (attendance.Punch, bool) {
	var req attendance.PunchRequest
	if !decodeJSON(w, r, &req) {
		return attendance.Punch{}, false
	}
	if err := req.Validate(h.loc, time.Now()); err != nil {
		response.HandleError(w, err)
		return attendance.Punch{}, false
	}
	return req.Punch(), true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	punch, ok := h.punch(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.RecordCheckIn(r.Context(), punch)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in recorded", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	punch, ok := h.punch(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.RecordCheckOut(r.Context(), punch)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out recorded", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRecordsForDate(r.Context(), date, queryPtr(r, "department"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam("date", chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRecord(r.Context(), chi.URLParam(r, "employeeID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

