package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lateNotice(recipient string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        notification.TypeAttendanceLate,
		Title:       "Late check-in",
		Message:     "Employee checked in 20 minutes late",
		Data:        map[string]interface{}{"minutes_late": 20},
	}
}

func TestQueueNotification_FlushesOnStop(t *testing.T) {
	// Setup
	repo := memory.NewNotificationRepository(memory.NewStore())
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour, WorkerCount: 1}, nil)
	ctx := context.Background()

	// Act
	require.NoError(t, svc.QueueNotification(ctx, lateNotice("u-hr")))
	require.NoError(t, svc.QueueBulkNotification(ctx, []notification.CreateNotificationRequest{lateNotice("u-hr"), lateNotice("u-mgr")}))
	svc.Stop()

	// Assert
	count, err := repo.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.GetUnreadCount(ctx, "u-mgr")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = svc.QueueNotification(ctx, lateNotice("u-hr"))
	assert.ErrorIs(t, err, notification.ErrServiceStopped)

	svc.Stop()
}

func TestQueueNotification_PushesToSubscriber(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: 10 * time.Millisecond, WorkerCount: 1}, nil)
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "u-hr")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(ctx, lateNotice("u-hr")))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, notification.TypeAttendanceLate, ev.Data.Type)
		assert.NotEmpty(t, ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not pushed")
	}
}

func TestQueueNotification_FullQueueInsertsDirectly(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	s := &service{
		repo:   repo,
		hub:    sse.NewHub(),
		config: Config{QueueSize: 1},
		queue:  make(chan notification.CreateNotificationRequest, 1),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	s.logger = newTestLogger()
	ctx := context.Background()

	// No workers run, so the second request finds the queue full.
	require.NoError(t, s.QueueNotification(ctx, lateNotice("u-hr")))
	require.NoError(t, s.QueueNotification(ctx, lateNotice("u-hr")))

	count, err := repo.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, s.queue, 1)
}

func TestGetNotifications(t *testing.T) {
	repo := memory.NewNotificationRepository(memory.NewStore())
	svc := NewNotificationService(repo, sse.NewHub(), Config{WorkerCount: 1}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.QueueNotification(ctx, lateNotice("u-hr")))
	}
	svc.Stop()

	list, err := svc.GetNotifications(ctx, "u-hr", 0, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 3, list.UnreadCount)
	require.Len(t, list.Notifications, 3)

	first := list.Notifications[0].ID
	require.NoError(t, svc.MarkAsRead(ctx, "u-hr", notification.MarkAsReadRequest{NotificationIDs: []string{first}}))
	unread, err := svc.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, svc.MarkAsRead(ctx, "u-hr", notification.MarkAsReadRequest{}))

	require.NoError(t, svc.MarkAllAsRead(ctx, "u-hr"))
	unread, err = svc.GetUnreadCount(ctx, "u-hr")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
