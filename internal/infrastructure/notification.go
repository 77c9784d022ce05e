package infrastructure

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/musicbridge/musicbridge/internal/domain"
	"go.uber.org/zap"
)

// NotificationService sends desktop notifications about finished batches
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(message), strconv.Quote(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// BatchNotification builds the title and message announcing a finished batch
func BatchNotification(batch *domain.Batch) (string, string) {
	switch batch.Status {
	case domain.BatchCompleted:
		return "Download complete", fmt.Sprintf("%d track(s) ready", batch.FetchedCount)
	case domain.BatchPartial:
		return "Download partially complete", fmt.Sprintf("%d track(s) ready, %d failed", batch.FetchedCount, batch.FailedCount)
	default:
		return "Download failed", batch.ErrorMessage
	}
}
