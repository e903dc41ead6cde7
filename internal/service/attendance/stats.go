package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// loadWithRoster fetches the matching records and the active roster concurrently.
func (s *AttendanceServiceImpl) loadWithRoster(ctx context.Context, filter attendance.Filter) ([]attendance.Attendance, []employee.Employee, error) {
	var (
		records []attendance.Attendance
		roster  []employee.Employee
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.AttendanceRepository.List(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.EmployeeRepository.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return records, roster, nil
}

// joinEmployees maps records to responses carrying employee and department
// details. Employees missing from the roster are looked up individually.
func (s *AttendanceServiceImpl) joinEmployees(ctx context.Context, records []attendance.Attendance, roster []employee.Employee) ([]attendance.AttendanceResponse, error) {
	byID := make(map[string]*employee.Employee, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}

	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		emp, ok := byID[rec.EmployeeID]
		if !ok {
			e, err := s.EmployeeRepository.GetByID(ctx, rec.EmployeeID)
			switch {
			case err == nil:
				emp = &e
			case errors.Is(err, employee.ErrEmployeeNotFound):
				emp = nil
			default:
				return nil, fmt.Errorf("failed to get employee: %w", err)
			}
			byID[rec.EmployeeID] = emp
		}
		out = append(out, s.toResponse(rec, emp))
	}
	return out, nil
}

// ListAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAll(ctx context.Context, query attendance.ListQuery) (attendance.RecordListResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.RecordListResponse{}, err
	}

	filter := attendance.Filter{EmployeeID: query.EmployeeID}
	status := attendance.Status(query.Status)
	if status != attendance.StatusAbsent {
		filter.Status = status
	}

	switch {
	case query.ParsedDate != nil:
		filter.Date = query.ParsedDate
	case query.Month != 0 || query.Year != 0:
		from, to := s.resolveMonth(query.MonthQuery).Range()
		filter.From, filter.To = &from, &to
	}

	records, roster, err := s.loadWithRoster(ctx, filter)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	// Stored records are never ABSENT.
	if status == attendance.StatusAbsent {
		records = nil
	}

	out, err := s.joinEmployees(ctx, records, roster)
	if err != nil {
		return attendance.RecordListResponse{}, err
	}

	if query.ParsedDate != nil && (status == "" || status == attendance.StatusAbsent) && s.countsAsAbsence(*query.ParsedDate) {
		out = append(out, s.absentRows(*query.ParsedDate, query.EmployeeID, records, roster)...)
	}

	return attendance.RecordListResponse{Records: out, Total: len(out)}, nil
}

// countsAsAbsence reports whether a missing record on date means ABSENT:
// the day is over and is a work day.
func (s *AttendanceServiceImpl) countsAsAbsence(date time.Time) bool {
	return date.Before(s.today()) && s.workDays[date.Weekday()]
}

// absentRows synthesizes ABSENT rows for roster employees without a record on
// date. They are never persisted.
func (s *AttendanceServiceImpl) absentRows(date time.Time, employeeID string, records []attendance.Attendance, roster []employee.Employee) []attendance.AttendanceResponse {
	present := make(map[string]bool, len(records))
	for _, rec := range records {
		present[rec.EmployeeID] = true
	}

	var rows []attendance.AttendanceResponse
	for i := range roster {
		emp := &roster[i]
		if present[emp.ID] || (employeeID != "" && emp.ID != employeeID) {
			continue
		}
		rows = append(rows, s.toResponse(attendance.Attendance{
			EmployeeID: emp.ID,
			Date:       date,
			Status:     attendance.StatusAbsent,
		}, emp))
	}
	return rows
}

// DailyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DailyStats(ctx context.Context, date string) (attendance.DailyStatsResponse, error) {
	day := s.today()
	if date != "" {
		parsed, ok := validator.IsValidDate(date)
		if !ok {
			return attendance.DailyStatsResponse{}, validator.ValidationErrors{{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			}}
		}
		day = parsed
	}

	records, roster, err := s.loadWithRoster(ctx, attendance.Filter{Date: &day})
	if err != nil {
		return attendance.DailyStatsResponse{}, err
	}

	stats := attendance.DailyStatsResponse{
		Date:           day.Format(attendance.DateLayout),
		TotalEmployees: len(roster),
	}

	checkedIn, checkedOut := 0, 0
	for _, rec := range records {
		if rec.HasCheckedIn() {
			checkedIn++
			if s.policy.IsLateCheckIn(rec.Date, *rec.CheckInTime) {
				stats.CheckedInLate++
			} else {
				stats.CheckedInOnTime++
			}
		}
		if rec.HasCheckedOut() {
			checkedOut++
			if s.policy.IsLateCheckOut(rec.Date, *rec.CheckOutTime) {
				stats.CheckedOutLate++
			} else {
				stats.CheckedOutOnTime++
			}
		}
	}

	stats.NotCheckedIn = max(stats.TotalEmployees-checkedIn, 0)
	stats.NotCheckedOut = checkedIn - checkedOut
	return stats, nil
}

// MonthStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthStats(ctx context.Context, query attendance.MonthQuery) (attendance.MonthStatsResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.MonthStatsResponse{}, err
	}

	query = s.resolveMonth(query)
	from, to := query.Range()

	records, roster, err := s.loadWithRoster(ctx, attendance.Filter{From: &from, To: &to})
	if err != nil {
		return attendance.MonthStatsResponse{}, err
	}

	stats := attendance.MonthStatsResponse{
		Month:        query.Month,
		Year:         query.Year,
		TotalRecords: len(records),
	}

	totalHours := decimal.Zero
	withHours := 0
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			stats.PresentCount++
		case attendance.StatusLate:
			stats.LateCount++
		case attendance.StatusHalfDay:
			stats.HalfDayCount++
		}
		if rec.WorkingHours != nil {
			totalHours = totalHours.Add(decimal.NewFromFloat(*rec.WorkingHours))
			withHours++
		}
	}
	if withHours > 0 {
		stats.AverageWorkingHours = totalHours.Div(decimal.NewFromInt(int64(withHours))).Round(2).InexactFloat64()
	}

	stats.AbsentCount = s.countAbsences(from, to, records, roster)
	return stats, nil
}

// countAbsences counts roster-days without a record on past work days in
// [from, to].
func (s *AttendanceServiceImpl) countAbsences(from, to time.Time, records []attendance.Attendance, roster []employee.Employee) int {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[lockKey(rec.EmployeeID, rec.Date)] = true
	}

	absent := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !s.countsAsAbsence(d) {
			continue
		}
		for _, emp := range roster {
			if !seen[lockKey(emp.ID, d)] {
				absent++
			}
		}
	}
	return absent
}
