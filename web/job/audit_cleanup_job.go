package job

import (
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/service"
)

const auditRetentionDays = 90

// AuditCleanupJob prunes old audit log rows.
type AuditCleanupJob struct {
	auditService service.AuditLogService
}

func NewAuditCleanupJob() *AuditCleanupJob {
	return &AuditCleanupJob{
		auditService: service.AuditLogService{},
	}
}

// Run cleans up old audit logs
func (j *AuditCleanupJob) Run() {
	logger.Debug("Audit cleanup job started")

	err := j.auditService.CleanOldLogs(auditRetentionDays)
	if err != nil {
		logger.Warning("Failed to clean old audit logs:", err)
	} else {
		logger.Debugf("Audit cleanup completed (retention: %d days)", auditRetentionDays)
	}
}
