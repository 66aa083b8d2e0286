package service

import (
	"fmt"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/logger"

	json "github.com/goccy/go-json"
)

// AuditLogService records admin mutations for the audit page.
type AuditLogService struct{}

// LogAction writes one audit row. Failures are logged, never surfaced: an
// audit problem must not fail the admin's action.
func (s *AuditLogService) LogAction(userId int, username, action, resource string, resourceId int, ip string, details map[string]any) {
	db := database.GetDB()

	detailsJSON := ""
	if details != nil {
		jsonData, err := json.Marshal(details)
		if err != nil {
			logger.Warning("Failed to marshal audit log details:", err)
		} else {
			detailsJSON = string(jsonData)
		}
	}

	auditLog := model.AuditLog{
		UserId:     userId,
		Username:   username,
		Action:     action,
		Resource:   resource,
		ResourceId: resourceId,
		IP:         ip,
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}

	if err := db.Create(&auditLog).Error; err != nil {
		logger.Warningf("Failed to create audit log: user=%d, action=%s, resource=%s, error=%v", userId, action, resource, err)
	}
}

// GetAuditLogs retrieves audit rows with filters and pagination.
func (s *AuditLogService) GetAuditLogs(userId, limit, offset int, action, resource string) ([]model.AuditLog, int64, error) {
	db := database.GetDB()

	query := db.Model(&model.AuditLog{})
	if userId > 0 {
		query = query.Where("user_id = ?", userId)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	if err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// CleanOldLogs removes audit rows older than the given number of days.
func (s *AuditLogService) CleanOldLogs(days int) error {
	if days <= 0 {
		return fmt.Errorf("days must be greater than 0")
	}

	db := database.GetDB()
	cutoff := time.Now().AddDate(0, 0, -days)

	result := db.Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		logger.Infof("Cleaned %d old audit logs (older than %d days)", result.RowsAffected, days)
	}
	return nil
}
