package service

import (
	"testing"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"github.com/stretchr/testify/assert"
)

func TestAuditLog(t *testing.T) {
	setup()
	defer teardown()

	auditService := AuditLogService{}

	auditService.LogAction(1, "admin", "DELETE", "poll", 7, "127.0.0.1", map[string]any{"question": "Lunch?"})
	auditService.LogAction(1, "admin", "PROMOTE", "user", 3, "127.0.0.1", nil)
	auditService.LogAction(2, "mod", "DELETE", "user", 4, "10.0.0.1", nil)

	logs, total, err := auditService.GetAuditLogs(0, 50, 0, "", "")
	assert.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 3)

	logs, total, err = auditService.GetAuditLogs(0, 50, 0, "DELETE", "")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)

	logs, total, err = auditService.GetAuditLogs(1, 50, 0, "DELETE", "poll")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "admin", logs[0].Username)
	assert.Contains(t, logs[0].Details, "Lunch?")
}

func TestAuditCleanOldLogs(t *testing.T) {
	setup()
	defer teardown()

	auditService := AuditLogService{}

	assert.Error(t, auditService.CleanOldLogs(0))

	auditService.LogAction(1, "admin", "DELETE", "poll", 1, "127.0.0.1", nil)
	err := database.GetDB().Model(model.AuditLog{}).
		Where("1 = 1").
		Update("timestamp", time.Now().AddDate(0, 0, -120)).Error
	assert.NoError(t, err)
	auditService.LogAction(1, "admin", "DELETE", "poll", 2, "127.0.0.1", nil)

	assert.NoError(t, auditService.CleanOldLogs(90))

	_, total, err := auditService.GetAuditLogs(0, 50, 0, "", "")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
