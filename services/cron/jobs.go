package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pkruczek/course-system/model"
)

// CleanupExpiredTokens removes blacklist entries whose tokens have expired.
// An expired token fails validation on its own, so the row is only bookkeeping.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	deleted, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup expired tokens: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", deleted))
}

// CleanupCronJobLogs trims job execution logs older than 30 days.
func (m *CronManager) CleanupCronJobLogs() {
	jobName := "cleanup_cron_logs"

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to delete old logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old job logs", result.RowsAffected))
}
