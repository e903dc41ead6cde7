package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

// QRTokenSource produces the token shown on QR displays.
type QRTokenSource interface {
	QRToken(ctx context.Context) (attendance.QRTokenResponse, error)
}

type AttendanceJobs struct {
	source   QRTokenSource
	hub      *sse.Hub
	interval time.Duration
}

func NewAttendanceJobs(source QRTokenSource, hub *sse.Hub, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		source:   source,
		hub:      hub,
		interval: interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddAlignedJob("broadcast_qr_token", j.interval, j.BroadcastQRToken)
}

// BroadcastQRToken pushes the current window's token to connected displays.
func (j *AttendanceJobs) BroadcastQRToken(ctx context.Context) error {
	if j.hub.SubscriberCount(sse.TopicQRDisplay) == 0 {
		return nil
	}

	token, err := j.source.QRToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to build qr token: %w", err)
	}

	j.hub.Publish(sse.TopicQRDisplay, sse.Event{
		Topic: sse.TopicQRDisplay,
		Event: "qr_token",
		Data:  token,
	})
	return nil
}
