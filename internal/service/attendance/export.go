package attendance

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet     = "Attendance"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	archiveDir      = "archives"
)

var exportHeaders = []string{
	"Employee Code",
	"Employee Name",
	"Department",
	"Date",
	"Check In",
	"Check Out",
	"Working Hours",
	"Status",
}

// Export implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Export(ctx context.Context, query attendance.MonthQuery, w io.Writer) error {
	if err := query.Validate(); err != nil {
		return err
	}

	from, to := s.resolveMonth(query).Range()
	rows, err := s.joinedRecords(ctx, attendance.Filter{From: &from, To: &to})
	if err != nil {
		return err
	}

	return writeWorkbook(rows, w)
}

func (s *AttendanceServiceImpl) joinedRecords(ctx context.Context, filter attendance.Filter) ([]attendance.AttendanceResponse, error) {
	records, roster, err := s.loadWithRoster(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.joinEmployees(ctx, records, roster)
}

// archive writes every record to storage. It returns the stored path and the
// IDs of the archived records.
func (s *AttendanceServiceImpl) archive(ctx context.Context) (string, []string, error) {
	rows, err := s.joinedRecords(ctx, attendance.Filter{})
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := writeWorkbook(rows, &buf); err != nil {
		return "", nil, err
	}

	name := fmt.Sprintf("%s/attendance-%s.xlsx", archiveDir, s.now().UTC().Format("20060102T150405Z"))
	path, err := s.storage.Upload(ctx, &buf, name, xlsxContentType)
	if err != nil {
		return "", nil, fmt.Errorf("failed to upload archive: %w", err)
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	s.logger.InfoContext(ctx, "Attendance archived", "path", path, "records", len(rows))
	return path, ids, nil
}

func writeWorkbook(rows []attendance.AttendanceResponse, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to prepare sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)

	for i, r := range rows {
		row := []interface{}{
			deref(r.EmployeeCode),
			deref(r.EmployeeName),
			deref(r.DepartmentName),
			r.Date,
			deref(r.CheckInTime),
			deref(r.CheckOutTime),
			"",
			string(r.Status),
		}
		if r.WorkingHours != nil {
			row[6] = *r.WorkingHours
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(exportSheet, "A", "C", 22)
	f.SetColWidth(exportSheet, "D", "H", 26)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
