package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, date,
	check_in_time, check_in_location, check_in_latitude, check_in_longitude,
	check_out_time, check_out_location, check_out_latitude, check_out_longitude,
	working_hours, status, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var status string
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date,
		&att.CheckInTime, &att.CheckInLocation, &att.CheckInLatitude, &att.CheckInLongitude,
		&att.CheckOutTime, &att.CheckOutLocation, &att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.WorkingHours, &status, &att.CreatedAt, &att.UpdatedAt,
	)
	att.Status = attendance.Status(status)
	return att, err
}

// Get implements attendance.AttendanceRepository.
func (r *attendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &att, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, record *attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, date,
			check_in_time, check_in_location, check_in_latitude, check_in_longitude,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.Date,
		record.CheckInTime,
		record.CheckInLocation,
		record.CheckInLatitude,
		record.CheckInLongitude,
		string(record.Status),
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrDuplicateAttendance
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}

	return nil
}

// UpdateCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpdateCheckOut(ctx context.Context, record *attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET
			check_out_time = $3,
			check_out_location = $4,
			check_out_latitude = $5,
			check_out_longitude = $6,
			working_hours = $7,
			status = $8,
			updated_at = NOW()
		WHERE employee_id = $1 AND date = $2 AND check_out_time IS NULL
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		record.Date,
		record.CheckOutTime,
		record.CheckOutLocation,
		record.CheckOutLatitude,
		record.CheckOutLongitude,
		record.WorkingHours,
		string(record.Status),
	).Scan(&record.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	// Nothing matched: either there is no row or it is already checked out.
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendances WHERE employee_id = $1 AND date = $2)`,
		record.EmployeeID, record.Date,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check attendance: %w", err)
	}
	if exists {
		return attendance.ErrAlreadyCheckedOut
	}
	return attendance.ErrAttendanceNotFound
}

// ListForDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListForDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	return r.List(ctx, attendance.Filter{Date: &date})
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.EmployeeID != "" {
		add("employee_id = $%d", filter.EmployeeID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Date != nil {
		add("date = $%d", *filter.Date)
	}
	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + attendanceColumns + ` FROM attendances`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY date DESC, check_in_time ASC NULLS LAST, employee_id ASC")

	rows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}

// ClearAll implements attendance.AttendanceRepository.
func (r *attendanceRepository) ClearAll(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear attendance: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByIDs implements attendance.AttendanceRepository.
func (r *attendanceRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance: %w", err)
	}

	return tag.RowsAffected(), nil
}
