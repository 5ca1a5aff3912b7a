// services/scheduler.go
package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"movie-review-system/models"

	"github.com/go-co-op/gocron/v2"
)

const defaultNotificationRetentionDays = 90

// StartRetentionSweeper prunes read notifications past the retention window
// once a day. Unread notifications are never touched.
func (s *NotificationService) StartRetentionSweeper() {
	retentionDays := defaultNotificationRetentionDays
	if v := os.Getenv("NOTIFICATION_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			result := s.DB.Where("is_read = ? AND created_at < ?", true, cutoff).
				Delete(&models.Notification{})
			if result.Error != nil {
				log.Printf("[Sweeper] DB error pruning notifications: %v", result.Error)
				return
			}
			if result.RowsAffected > 0 {
				log.Printf("✅ Pruned %d read notification(s) older than %d days", result.RowsAffected, retentionDays)
			}
		}),
	)
}
