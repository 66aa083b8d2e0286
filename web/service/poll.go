package service

import (
	"errors"
	"strings"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"gorm.io/gorm"
)

// maxPageLimit caps caller-supplied page sizes on every listing.
const maxPageLimit = 100

var (
	ErrPollNotFound  = errors.New("Poll not found")
	ErrNotPollOwner  = errors.New("You can only delete your own polls")
	ErrQuestionEmpty = errors.New("Question is required")
	ErrTooFewOptions = errors.New("A poll needs at least 2 options")
)

// PollResult is a poll with per-option and total vote counts attached.
type PollResult struct {
	model.Poll
	Options    []OptionResult `json:"options"`
	TotalVotes int64          `json:"totalVotes"`
}

// OptionResult annotates an option with its count and display percentage.
type OptionResult struct {
	model.PollOption
	Votes      int64 `json:"votes"`
	Percentage int   `json:"percentage"`
}

// PollListItem is one row of the browse page.
type PollListItem struct {
	model.Poll
	CreatorName string `json:"creatorName"`
}

type PollService struct {
	voteService VoteService
}

// ClampPageLimit normalizes caller-supplied pagination values.
func ClampPageLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// CreatePoll inserts the poll and its options in one transaction so a failed
// option insert never leaves an orphaned poll behind.
func (s *PollService) CreatePoll(userId int, question string, options []string, isPublic bool, endDate *time.Time) (*model.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrQuestionEmpty
	}

	texts := make([]string, 0, len(options))
	for _, option := range options {
		if trimmed := strings.TrimSpace(option); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	if len(texts) < 2 {
		return nil, ErrTooFewOptions
	}

	poll := &model.Poll{
		Question:  question,
		IsPublic:  isPublic,
		IsActive:  true,
		CreatedBy: userId,
		EndDate:   endDate,
	}

	db := database.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Create(poll).Error; err != nil {
			return err
		}
		for _, text := range texts {
			option := model.PollOption{PollId: poll.Id, Text: text}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			poll.Options = append(poll.Options, option)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

// GetPoll fetches a poll with its options, per-option counts and total.
func (s *PollService) GetPoll(id int) (*PollResult, error) {
	db := database.GetDB()

	poll := &model.Poll{}
	err := db.Preload("Options").Where("id = ?", id).First(poll).Error
	if database.IsNotFound(err) {
		return nil, ErrPollNotFound
	} else if err != nil {
		return nil, err
	}

	byOption, total, err := s.voteService.CountsByOption(poll.Id)
	if err != nil {
		return nil, err
	}

	result := &PollResult{Poll: *poll, TotalVotes: total}
	for _, option := range poll.Options {
		votes := byOption[option.Id]
		result.Options = append(result.Options, OptionResult{
			PollOption: option,
			Votes:      votes,
			Percentage: Percentage(votes, total),
		})
	}
	return result, nil
}

// GetPolls returns a page of polls ordered by creation time descending,
// optionally restricted to public ones, with the total count for pagination.
func (s *PollService) GetPolls(page, limit int, onlyPublic bool) ([]PollListItem, int64, error) {
	page, limit = ClampPageLimit(page, limit)
	db := database.GetDB()

	query := db.Model(model.Poll{})
	if onlyPublic {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []PollListItem
	err := query.
		Select("polls.*, users.name AS creator_name").
		Joins("LEFT JOIN users ON users.id = polls.created_by").
		Order("polls.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetUserPolls returns the polls created by one user, newest first, in the
// same row shape as GetPolls so both feed the same listing template.
func (s *PollService) GetUserPolls(userId, page, limit int) ([]PollListItem, int64, error) {
	page, limit = ClampPageLimit(page, limit)
	db := database.GetDB()

	query := db.Model(model.Poll{}).Where("created_by = ?", userId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []PollListItem
	err := query.
		Select("polls.*, users.name AS creator_name").
		Joins("LEFT JOIN users ON users.id = polls.created_by").
		Order("polls.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeletePoll removes a poll with its options and votes. Only the creator or
// an admin may delete.
func (s *PollService) DeletePoll(id, callerId int, callerIsAdmin bool) error {
	db := database.GetDB()

	poll := &model.Poll{}
	err := db.Where("id = ?", id).First(poll).Error
	if database.IsNotFound(err) {
		return ErrPollNotFound
	} else if err != nil {
		return err
	}

	if poll.CreatedBy != callerId && !callerIsAdmin {
		return ErrNotPollOwner
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(model.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(model.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(poll).Error
	})
}

// MarkExpiredPolls deactivates polls whose end date has passed. Returns the
// number of polls closed.
func (s *PollService) MarkExpiredPolls(now time.Time) (int64, error) {
	db := database.GetDB()
	result := db.Model(model.Poll{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date < ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
