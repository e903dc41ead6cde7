package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/qrimage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/qrtoken"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config carries the attendance rules and their collaborators.
type Config struct {
	Generator *qrtoken.Generator
	Renderer  *qrimage.Renderer
	Office    geo.Office
	Policy    attendance.Policy
	// WorkDays are the weekdays counted as absences when no record exists.
	WorkDays []time.Weekday
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository

	notifier notification.Service
	storage  storage.FileStorage

	generator *qrtoken.Generator
	renderer  *qrimage.Renderer
	office    geo.Office
	policy    attendance.Policy
	workDays  map[time.Weekday]bool

	locks  *keylock.KeyLock
	logger *slog.Logger
	now    func() time.Time
}

// NewAttendanceService wires the attendance state machine. notifier and
// fileStorage may be nil, which disables notifications and archiving.
func NewAttendanceService(
	cfg Config,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	notifier notification.Service,
	fileStorage storage.FileStorage,
	logger *slog.Logger,
) *AttendanceServiceImpl {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Renderer == nil {
		cfg.Renderer = qrimage.NewRenderer(0)
	}
	if logger == nil {
		logger = slog.Default()
	}

	workDays := make(map[time.Weekday]bool, len(cfg.WorkDays))
	for _, d := range cfg.WorkDays {
		workDays[d] = true
	}

	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		notifier:             notifier,
		storage:              fileStorage,
		generator:            cfg.Generator,
		renderer:             cfg.Renderer,
		office:               cfg.Office,
		policy:               cfg.Policy,
		workDays:             workDays,
		locks:                keylock.New(),
		logger:               logger.With("component", "attendance"),
		now:                  cfg.Now,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// QRToken implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) QRToken(ctx context.Context) (attendance.QRTokenResponse, error) {
	tok := s.generator.GenerateAt(s.now())

	img, err := s.renderer.DataURL(tok.Value)
	if err != nil {
		s.logger.ErrorContext(ctx, "QR image rendering failed", "window", tok.WindowIndex, "error", err)
		return attendance.QRTokenResponse{}, fmt.Errorf("%w: %v", attendance.ErrQRImageGeneration, err)
	}

	return attendance.QRTokenResponse{
		Token:           tok.Value,
		QRImage:         img,
		ExpiresAt:       tok.ExpiresAt,
		TimeLeft:        tok.TimeLeft,
		RefreshInterval: tok.RefreshInterval,
	}, nil
}

// admit runs the three admission stages in order: coordinates present,
// geofence, then token.
func (s *AttendanceServiceImpl) admit(req attendance.ScanRequest, now time.Time) (geo.Result, error) {
	result, err := s.office.Evaluate(req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, geo.ErrMissingCoordinates) {
			return geo.Result{}, attendance.ErrLocationRequired
		}
		return geo.Result{}, err
	}

	if !result.Admitted {
		return result, &attendance.GeofenceError{
			DistanceMeters: result.DistanceMeters,
			AllowedMeters:  result.AllowedMeters,
		}
	}

	if !s.generator.ValidateAt(req.Token, now) {
		return result, attendance.ErrInvalidQRToken
	}

	return result, nil
}

func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	if employeeID == "" {
		return employee.Employee{}, attendance.ErrEmployeeRequired
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}

	return emp, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.ScanRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	now := s.now()
	result, err := s.admit(req, now)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	record, err := s.recordCheckIn(ctx, emp.ID, req, now)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	s.logger.InfoContext(ctx, "Employee checked in",
		"employee_id", emp.ID, "date", record.DateKey(), "status", record.Status, "distance_meters", result.DistanceMeters)

	if record.Status == attendance.StatusLate {
		minutes := s.policy.MinutesLate(record.Date, now)
		s.notifyReviewers(ctx, emp, notification.TypeAttendanceLate,
			"Late check-in",
			fmt.Sprintf("%s checked in %d minutes late at %s", emp.FullName, minutes, s.clock(now)),
			map[string]interface{}{
				"attendance_id": record.ID,
				"employee_id":   emp.ID,
				"date":          record.DateKey(),
				"minutes_late":  minutes,
			})
	}

	return attendance.CheckInResponse{
		CheckInTime:    s.formatTime(now),
		Status:         record.Status,
		DistanceMeters: result.DistanceMeters,
		Record:         s.toResponse(*record, &emp),
	}, nil
}

// recordCheckIn runs the read-decide-write of a check-in under the
// (employee, date) lock.
func (s *AttendanceServiceImpl) recordCheckIn(ctx context.Context, employeeID string, req attendance.ScanRequest, now time.Time) (*attendance.Attendance, error) {
	date := s.policy.CalendarDate(now)
	unlock := s.locks.Lock(lockKey(employeeID, date))
	defer unlock()

	existing, err := s.AttendanceRepository.Get(ctx, employeeID, date)
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if existing.HasCheckedIn() {
		return nil, attendance.NewAlreadyCheckedInError(*existing.CheckInTime)
	}

	record := &attendance.Attendance{
		ID:               uuid.Must(uuid.NewV7()).String(),
		EmployeeID:       employeeID,
		Date:             date,
		CheckInTime:      &now,
		CheckInLocation:  locationLabel(req),
		CheckInLatitude:  req.Latitude,
		CheckInLongitude: req.Longitude,
		Status:           s.policy.CheckInStatus(date, now),
	}

	if err := s.AttendanceRepository.Create(ctx, record); err != nil {
		if errors.Is(err, attendance.ErrDuplicateAttendance) {
			// Another instance won the insert.
			return nil, s.alreadyCheckedIn(ctx, employeeID, date)
		}
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.ScanRequest) (attendance.CheckOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	now := s.now()
	result, err := s.admit(req, now)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	record, err := s.recordCheckOut(ctx, emp.ID, req, now)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}
	hours := *record.WorkingHours

	s.logger.InfoContext(ctx, "Employee checked out",
		"employee_id", emp.ID, "date", record.DateKey(), "status", record.Status, "working_hours", hours)

	if record.Status == attendance.StatusHalfDay {
		s.notifyReviewers(ctx, emp, notification.TypeAttendanceHalfDay,
			"Half-day attendance",
			fmt.Sprintf("%s checked out at %s after %.2f hours", emp.FullName, s.clock(now), hours),
			map[string]interface{}{
				"attendance_id": record.ID,
				"employee_id":   emp.ID,
				"date":          record.DateKey(),
				"working_hours": hours,
			})
	}

	return attendance.CheckOutResponse{
		CheckOutTime:   s.formatTime(now),
		WorkingHours:   hours,
		Status:         record.Status,
		DistanceMeters: result.DistanceMeters,
		Record:         s.toResponse(*record, &emp),
	}, nil
}

// recordCheckOut runs the read-decide-write of a check-out under the
// (employee, date) lock.
func (s *AttendanceServiceImpl) recordCheckOut(ctx context.Context, employeeID string, req attendance.ScanRequest, now time.Time) (*attendance.Attendance, error) {
	date := s.policy.CalendarDate(now)
	unlock := s.locks.Lock(lockKey(employeeID, date))
	defer unlock()

	record, err := s.AttendanceRepository.Get(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, attendance.ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if !record.HasCheckedIn() {
		return nil, attendance.ErrNotCheckedIn
	}
	if record.HasCheckedOut() {
		return nil, attendance.NewAlreadyCheckedOutError(*record.CheckOutTime)
	}

	hours := WorkingHours(*record.CheckInTime, now)
	record.CheckOutTime = &now
	record.CheckOutLocation = locationLabel(req)
	record.CheckOutLatitude = req.Latitude
	record.CheckOutLongitude = req.Longitude
	record.WorkingHours = &hours
	record.Status = s.policy.CheckOutStatus(record.Status, hours)

	if err := s.AttendanceRepository.UpdateCheckOut(ctx, record); err != nil {
		switch {
		case errors.Is(err, attendance.ErrAlreadyCheckedOut):
			return nil, s.alreadyCheckedOut(ctx, employeeID, date)
		case errors.Is(err, attendance.ErrAttendanceNotFound):
			// The record was cleared after it was read.
			return nil, attendance.ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	return record, nil
}

func (s *AttendanceServiceImpl) alreadyCheckedIn(ctx context.Context, employeeID string, date time.Time) error {
	rec, err := s.AttendanceRepository.Get(ctx, employeeID, date)
	if err != nil || !rec.HasCheckedIn() {
		return attendance.ErrAlreadyCheckedIn
	}
	return attendance.NewAlreadyCheckedInError(*rec.CheckInTime)
}

func (s *AttendanceServiceImpl) alreadyCheckedOut(ctx context.Context, employeeID string, date time.Time) error {
	rec, err := s.AttendanceRepository.Get(ctx, employeeID, date)
	if err != nil || !rec.HasCheckedOut() {
		return attendance.ErrAlreadyCheckedOut
	}
	return attendance.NewAlreadyCheckedOutError(*rec.CheckOutTime)
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context, employeeID string) (attendance.TodayResponse, error) {
	if employeeID == "" {
		return attendance.TodayResponse{}, attendance.ErrEmployeeRequired
	}

	date := s.policy.CalendarDate(s.now())
	resp := attendance.TodayResponse{Date: date.Format(attendance.DateLayout)}

	record, err := s.AttendanceRepository.Get(ctx, employeeID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return resp, nil
		}
		return attendance.TodayResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	r := s.toResponse(*record, nil)
	resp.Record = &r
	resp.HasCheckedIn = record.HasCheckedIn()
	resp.HasCheckedOut = record.HasCheckedOut()
	return resp, nil
}

// History implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) History(ctx context.Context, employeeID string, query attendance.MonthQuery) (attendance.RecordListResponse, error) {
	if employeeID == "" {
		return attendance.RecordListResponse{}, attendance.ErrEmployeeRequired
	}
	if err := query.Validate(); err != nil {
		return attendance.RecordListResponse{}, err
	}

	from, to := s.resolveMonth(query).Range()
	records, err := s.AttendanceRepository.List(ctx, attendance.Filter{
		EmployeeID: employeeID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return attendance.RecordListResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	out := make([]attendance.AttendanceResponse, len(records))
	for i, rec := range records {
		out[i] = s.toResponse(rec, nil)
	}

	return attendance.RecordListResponse{Records: out, Total: len(out)}, nil
}

// ClearAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClearAll(ctx context.Context) (attendance.ClearResponse, error) {
	var (
		resp    attendance.ClearResponse
		deleted int64
		err     error
	)

	if s.storage != nil {
		path, ids, archiveErr := s.archive(ctx)
		if archiveErr != nil {
			s.logger.ErrorContext(ctx, "Attendance archive failed, records kept", "error", archiveErr)
			return attendance.ClearResponse{}, fmt.Errorf("%w: %v", attendance.ErrArchiveFailed, archiveErr)
		}
		resp.ArchivePath = &path

		// Records written after the archive was taken survive until the next clear.
		deleted, err = s.AttendanceRepository.DeleteByIDs(ctx, ids)
	} else {
		deleted, err = s.AttendanceRepository.ClearAll(ctx)
	}
	if err != nil {
		return attendance.ClearResponse{}, fmt.Errorf("failed to clear attendance: %w", err)
	}
	resp.DeletedCount = deleted

	s.logger.WarnContext(ctx, "Attendance records cleared", "deleted_count", deleted)

	if deleted > 0 {
		data := map[string]interface{}{"deleted_count": deleted}
		if resp.ArchivePath != nil {
			data["archive_path"] = *resp.ArchivePath
		}
		s.notifyReviewers(ctx, employee.Employee{}, notification.TypeAttendanceCleared,
			"Attendance records cleared",
			fmt.Sprintf("%d attendance records were removed", deleted),
			data)
	}

	return resp, nil
}

// notifyReviewers queues a notification for the department's managers and
// every HR user. Failures are logged and never fail the caller.
func (s *AttendanceServiceImpl) notifyReviewers(ctx context.Context, emp employee.Employee, kind notification.NotificationType, title, message string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}

	recipients, err := s.EmployeeRepository.ListReviewerUserIDs(ctx, emp.DepartmentID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to resolve notification recipients", "type", kind, "error", err)
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(recipients))
	for _, id := range recipients {
		if emp.UserID != nil && *emp.UserID == id {
			continue
		}
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: id,
			SenderID:    emp.UserID,
			Type:        kind,
			Title:       title,
			Message:     message,
			Data:        data,
		})
	}
	if len(reqs) == 0 {
		return
	}

	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		s.logger.WarnContext(ctx, "Failed to queue notifications", "type", kind, "error", err)
	}
}

func (s *AttendanceServiceImpl) today() time.Time {
	return s.policy.CalendarDate(s.now())
}

// resolveMonth fills a zero month or year from the current date.
func (s *AttendanceServiceImpl) resolveMonth(q attendance.MonthQuery) attendance.MonthQuery {
	today := s.today()
	if q.Year == 0 {
		q.Year = today.Year()
	}
	if q.Month == 0 {
		q.Month = int(today.Month())
	}
	return q
}

func (s *AttendanceServiceImpl) location() *time.Location {
	if s.policy.Location == nil {
		return time.UTC
	}
	return s.policy.Location
}

func (s *AttendanceServiceImpl) formatTime(t time.Time) string {
	return t.In(s.location()).Format(time.RFC3339)
}

func (s *AttendanceServiceImpl) clock(t time.Time) string {
	return t.In(s.location()).Format("15:04")
}

func (s *AttendanceServiceImpl) toResponse(rec attendance.Attendance, emp *employee.Employee) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                rec.ID,
		EmployeeID:        rec.EmployeeID,
		Date:              rec.DateKey(),
		CheckInTime:       s.timePtrToString(rec.CheckInTime),
		CheckInLocation:   rec.CheckInLocation,
		CheckInLatitude:   rec.CheckInLatitude,
		CheckInLongitude:  rec.CheckInLongitude,
		CheckOutTime:      s.timePtrToString(rec.CheckOutTime),
		CheckOutLocation:  rec.CheckOutLocation,
		CheckOutLatitude:  rec.CheckOutLatitude,
		CheckOutLongitude: rec.CheckOutLongitude,
		WorkingHours:      rec.WorkingHours,
		Status:            rec.Status,
	}
	if emp != nil {
		code, name, email := emp.EmployeeCode, emp.FullName, emp.Email
		resp.EmployeeCode = &code
		resp.EmployeeName = &name
		resp.EmployeeEmail = &email
		resp.DepartmentName = emp.DepartmentName
	}
	return resp
}

// timePtrToString safely converts a *time.Time to a string.
func (s *AttendanceServiceImpl) timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := s.formatTime(*t)
	return &formatted
}

// WorkingHours is the elapsed time between in and out in hours, rounded to
// two decimals.
func WorkingHours(in, out time.Time) float64 {
	return decimal.NewFromFloat(out.Sub(in).Hours()).Round(2).InexactFloat64()
}

// locationLabel returns the submitted label, or "lat,lng" when none was sent.
func locationLabel(req attendance.ScanRequest) *string {
	if req.Location != nil && *req.Location != "" {
		return req.Location
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil
	}
	label := strconv.FormatFloat(*req.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(*req.Longitude, 'f', -1, 64)
	return &label
}

func lockKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(attendance.DateLayout)
}
