package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	QRToken(w http.ResponseWriter, r *http.Request)
	QRTokenStream(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	DailyStats(w http.ResponseWriter, r *http.Request)
	MonthStats(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ClearAll(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
	}
}

// QRToken implements AttendanceHandler.
func (h *attendanceHandlerImpl) QRToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.QRToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	response.Success(w, result)
}

// QRTokenStream pushes every token rotation to a display screen. The current
// token is sent on connect.
func (h *attendanceHandlerImpl) QRTokenStream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if !user.HasPermission(claims.Role, user.PermissionAttendanceDisplay) {
		response.HandleError(w, fmt.Errorf("%w: required '%s'", user.ErrInsufficientPermissions, user.PermissionAttendanceDisplay))
		return
	}

	events, cleanup := h.hub.Subscribe(sse.TopicQRDisplay)
	defer cleanup()

	current, err := h.attendanceService.QRToken(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	stream, ok := openEventStream(w)
	if !ok {
		return
	}
	if err := stream.send("qr_token", current); err != nil {
		return
	}

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := stream.send(event.Event, event.Data); err != nil {
				return
			}
		case <-keepalive.C:
			if err := stream.ping(); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func decodeScanRequest(r *http.Request) (attendance.ScanRequest, error) {
	var req attendance.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	req.EmployeeID = claims.EmployeeID
	return req, nil
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format")
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request format")
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	result, err := h.attendanceService.Today(r.Context(), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func parseMonthQuery(r *http.Request) (attendance.MonthQuery, error) {
	var errs validator.ValidationErrors
	query := attendance.MonthQuery{
		Month: strictIntQueryParam(r, "month", &errs),
		Year:  strictIntQueryParam(r, "year", &errs),
	}
	if len(errs) > 0 {
		return query, errs
	}
	return query, nil
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	query, err := parseMonthQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.History(r.Context(), claims.EmployeeID, query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListAll implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := r.URL.Query()
	query := attendance.ListQuery{
		Date:       q.Get("date"),
		EmployeeID: q.Get("employee_id"),
		Status:     q.Get("status"),
		MonthQuery: month,
	}

	result, err := h.attendanceService.ListAll(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.DailyStats(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MonthStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthStats(w http.ResponseWriter, r *http.Request) {
	query, err := parseMonthQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.MonthStats(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export streams the month's workbook as an attachment. It is rendered into
// memory first so that a failure still yields a JSON error.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	query, err := parseMonthQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.attendanceService.Export(r.Context(), query, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	name := "attendance.xlsx"
	if query.Month != 0 && query.Year != 0 {
		name = fmt.Sprintf("attendance-%04d-%02d.xlsx", query.Year, query.Month)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.WarnContext(r.Context(), "Failed to write export", "error", err)
	}
}

// ClearAll implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClearAll(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	result, err := h.attendanceService.ClearAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.WarnContext(r.Context(), "Attendance cleared by user", "user_id", claims.UserID, "deleted_count", result.DeletedCount)
	response.SuccessWithMessage(w, "Attendance records cleared", result)
}
