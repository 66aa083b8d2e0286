package job

import (
	"time"

	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/web/service"
)

// PollExpiryJob deactivates polls whose end date has passed, so the voting
// UI and the vote service agree that an expired poll is closed.
type PollExpiryJob struct {
	pollService service.PollService
}

func NewPollExpiryJob() *PollExpiryJob {
	return &PollExpiryJob{
		pollService: service.PollService{},
	}
}

// Run is an interface method of the cron Job interface
func (j *PollExpiryJob) Run() {
	closed, err := j.pollService.MarkExpiredPolls(time.Now())
	if err != nil {
		logger.Warning("poll expiry job err:", err)
		return
	}
	if closed > 0 {
		logger.Infof("poll expiry job closed %d poll(s)", closed)
	}
}
