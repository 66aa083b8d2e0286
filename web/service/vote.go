package service

import (
	"errors"
	"math"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"gorm.io/gorm/clause"
)

var (
	ErrPollClosed    = errors.New("This poll is no longer accepting votes")
	ErrOptionInvalid = errors.New("That option does not belong to this poll")
)

type VoteService struct{}

// Vote records the user's choice. A single conditional write against the
// (poll_id, user_id) unique index either inserts the vote or overwrites the
// previous choice, so concurrent submissions can never produce two rows for
// the same pair.
func (s *VoteService) Vote(pollId, optionId, userId int) error {
	db := database.GetDB()

	poll := &model.Poll{}
	err := db.Where("id = ?", pollId).First(poll).Error
	if database.IsNotFound(err) {
		return ErrPollNotFound
	} else if err != nil {
		return err
	}

	if !poll.IsActive {
		return ErrPollClosed
	}
	if poll.EndDate != nil && !time.Now().Before(*poll.EndDate) {
		return ErrPollClosed
	}

	var optionCount int64
	err = db.Model(model.PollOption{}).
		Where("id = ? AND poll_id = ?", optionId, pollId).
		Count(&optionCount).Error
	if err != nil {
		return err
	}
	if optionCount == 0 {
		return ErrOptionInvalid
	}

	vote := &model.Vote{
		PollId:   pollId,
		OptionId: optionId,
		UserId:   userId,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"option_id":  optionId,
			"updated_at": time.Now(),
		}),
	}).Create(vote).Error
}

// GetUserVote returns the caller's vote on a poll, or nil if they have not
// voted.
func (s *VoteService) GetUserVote(pollId, userId int) (*model.Vote, error) {
	db := database.GetDB()
	vote := &model.Vote{}
	err := db.Where("poll_id = ? AND user_id = ?", pollId, userId).First(vote).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return vote, nil
}

// CountsByOption aggregates votes for one poll in a single grouped query.
func (s *VoteService) CountsByOption(pollId int) (map[int]int64, int64, error) {
	db := database.GetDB()

	var rows []struct {
		OptionId int
		Count    int64
	}
	err := db.Model(model.Vote{}).
		Select("option_id, COUNT(*) AS count").
		Where("poll_id = ?", pollId).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	byOption := make(map[int]int64, len(rows))
	var total int64
	for _, row := range rows {
		byOption[row.OptionId] = row.Count
		total += row.Count
	}
	return byOption, total, nil
}

// Percentage returns round(100*votes/total), and 0 when total is 0.
func Percentage(votes, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(votes) * 100 / float64(total)))
}
