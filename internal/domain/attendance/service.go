package attendance

import (
	"context"
	"io"
)

type AttendanceService interface {
	// QRToken returns the current token and its QR image.
	QRToken(ctx context.Context) (QRTokenResponse, error)

	CheckIn(ctx context.Context, req ScanRequest) (CheckInResponse, error)
	CheckOut(ctx context.Context, req ScanRequest) (CheckOutResponse, error)

	Today(ctx context.Context, employeeID string) (TodayResponse, error)
	History(ctx context.Context, employeeID string, query MonthQuery) (RecordListResponse, error)
	ListAll(ctx context.Context, query ListQuery) (RecordListResponse, error)

	DailyStats(ctx context.Context, date string) (DailyStatsResponse, error)
	MonthStats(ctx context.Context, query MonthQuery) (MonthStatsResponse, error)

	// Export writes the month's records as an XLSX workbook.
	Export(ctx context.Context, query MonthQuery, w io.Writer) error

	// ClearAll archives, then removes, every attendance record.
	ClearAll(ctx context.Context) (ClearResponse, error)
}
