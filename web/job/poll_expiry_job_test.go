package job

import (
	"os"
	"testing"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/web/service"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestPollExpiryJob(t *testing.T) {
	setup()
	defer teardown()

	pollService := service.PollService{}
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired, err := pollService.CreatePoll(1, "Over?", []string{"A", "B"}, true, &past)
	assert.NoError(t, err)
	running, err := pollService.CreatePoll(1, "Ongoing?", []string{"A", "B"}, true, &future)
	assert.NoError(t, err)

	NewPollExpiryJob().Run()

	// Fresh dest per lookup, a reused struct keeps its primary key as a
	// query condition
	db := database.GetDB()
	closed := &model.Poll{}
	assert.NoError(t, db.First(closed, expired.Id).Error)
	assert.False(t, closed.IsActive)
	open := &model.Poll{}
	assert.NoError(t, db.First(open, running.Id).Error)
	assert.True(t, open.IsActive)
}

func TestAuditCleanupJob(t *testing.T) {
	setup()
	defer teardown()

	auditService := service.AuditLogService{}
	auditService.LogAction(1, "admin", "DELETE", "poll", 1, "127.0.0.1", nil)

	db := database.GetDB()
	err := db.Model(model.AuditLog{}).
		Where("1 = 1").
		Update("timestamp", time.Now().AddDate(0, 0, -(auditRetentionDays + 1))).Error
	assert.NoError(t, err)
	auditService.LogAction(1, "admin", "DELETE", "poll", 2, "127.0.0.1", nil)

	NewAuditCleanupJob().Run()

	var count int64
	db.Model(model.AuditLog{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
