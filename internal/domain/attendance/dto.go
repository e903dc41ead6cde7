package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

// ScanRequest is the body of check-in and check-out. Latitude and Longitude
// are pointers so that a missing coordinate can be told apart from zero.
type ScanRequest struct {
	EmployeeID string   `json:"-"`
	Token      string   `json:"token"`
	Location   *string  `json:"location,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.Location != nil && len(*r.Location) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// MonthQuery selects a calendar month. Zero values mean the current month.
type MonthQuery struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (q *MonthQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Month < 0 || q.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if q.Year != 0 && (q.Year < 2000 || q.Year > 2100) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Range returns the first and last day of the month.
func (q MonthQuery) Range() (time.Time, time.Time) {
	first := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// ListQuery is the filter of the HR/Admin all-records view.
type ListQuery struct {
	Date       string `json:"date,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Status     string `json:"status,omitempty"`
	MonthQuery

	ParsedDate *time.Time `json:"-"`
}

func (q *ListQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Date != "" {
		d, ok := validator.IsValidDate(q.Date)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		} else {
			q.ParsedDate = &d
		}
	}

	if q.Status != "" {
		q.Status = strings.ToUpper(q.Status)
		if !Status(q.Status).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: PRESENT, LATE, HALF_DAY, ABSENT",
			})
		}
	}

	if q.EmployeeID != "" && !validator.IsValidUUID(q.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if err := q.MonthQuery.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type AttendanceResponse struct {
	ID                string   `json:"id"`
	EmployeeID        string   `json:"employee_id"`
	EmployeeCode      *string  `json:"employee_code,omitempty"`
	EmployeeName      *string  `json:"employee_name,omitempty"`
	EmployeeEmail     *string  `json:"employee_email,omitempty"`
	DepartmentName    *string  `json:"department_name,omitempty"`
	Date              string   `json:"date"`
	CheckInTime       *string  `json:"check_in_time"`
	CheckInLocation   *string  `json:"check_in_location,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutTime      *string  `json:"check_out_time"`
	CheckOutLocation  *string  `json:"check_out_location,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	WorkingHours      *float64 `json:"working_hours"`
	Status            Status   `json:"status"`
}

type QRTokenResponse struct {
	Token           string `json:"token"`
	QRImage         string `json:"qr_image"`
	ExpiresAt       int64  `json:"expires_at"`
	TimeLeft        int64  `json:"time_left"`
	RefreshInterval int64  `json:"refresh_interval"`
}

type CheckInResponse struct {
	CheckInTime    string             `json:"check_in_time"`
	Status         Status             `json:"status"`
	DistanceMeters int64              `json:"distance_meters"`
	Record         AttendanceResponse `json:"record"`
}

type CheckOutResponse struct {
	CheckOutTime   string             `json:"check_out_time"`
	WorkingHours   float64            `json:"working_hours"`
	Status         Status             `json:"status"`
	DistanceMeters int64              `json:"distance_meters"`
	Record         AttendanceResponse `json:"record"`
}

type TodayResponse struct {
	Date          string              `json:"date"`
	Record        *AttendanceResponse `json:"record"`
	HasCheckedIn  bool                `json:"has_checked_in"`
	HasCheckedOut bool                `json:"has_checked_out"`
}

type DailyStatsResponse struct {
	Date             string `json:"date"`
	TotalEmployees   int    `json:"total_employees"`
	CheckedInOnTime  int    `json:"checked_in_on_time"`
	CheckedInLate    int    `json:"checked_in_late"`
	NotCheckedIn     int    `json:"not_checked_in"`
	CheckedOutOnTime int    `json:"checked_out_on_time"`
	CheckedOutLate   int    `json:"checked_out_late"`
	NotCheckedOut    int    `json:"not_checked_out"`
}

type MonthStatsResponse struct {
	Month               int     `json:"month"`
	Year                int     `json:"year"`
	TotalRecords        int     `json:"total_records"`
	PresentCount        int     `json:"present_count"`
	LateCount           int     `json:"late_count"`
	HalfDayCount        int     `json:"half_day_count"`
	AbsentCount         int     `json:"absent_count"`
	AverageWorkingHours float64 `json:"average_working_hours"`
}

type RecordListResponse struct {
	Records []AttendanceResponse `json:"records"`
	Total   int                  `json:"total"`
}

type ClearResponse struct {
	DeletedCount int64   `json:"deleted_count"`
	ArchivePath  *string `json:"archive_path,omitempty"`
}
