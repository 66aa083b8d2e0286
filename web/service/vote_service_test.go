package service

import (
	"sync"
	"testing"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"github.com/stretchr/testify/assert"
)

func TestVoteUpsert(t *testing.T) {
	setup()
	defer teardown()

	pollService := PollService{}
	voteService := VoteService{}
	user := registerVerified(t, "Alice", "alice@example.com", "secret1")

	poll, err := pollService.CreatePoll(user.Id, "Lunch?", []string{"Pizza", "Sushi"}, true, nil)
	assert.NoError(t, err)

	vote, err := voteService.GetUserVote(poll.Id, user.Id)
	assert.NoError(t, err)
	assert.Nil(t, vote)

	err = voteService.Vote(poll.Id, poll.Options[0].Id, user.Id)
	assert.NoError(t, err)

	// Voting again switches the choice instead of adding a row
	err = voteService.Vote(poll.Id, poll.Options[1].Id, user.Id)
	assert.NoError(t, err)

	var count int64
	database.GetDB().Model(model.Vote{}).
		Where("poll_id = ? AND user_id = ?", poll.Id, user.Id).
		Count(&count)
	assert.EqualValues(t, 1, count)

	vote, err = voteService.GetUserVote(poll.Id, user.Id)
	assert.NoError(t, err)
	assert.Equal(t, poll.Options[1].Id, vote.OptionId)
}

func TestVoteRejections(t *testing.T) {
	setup()
	defer teardown()

	pollService := PollService{}
	voteService := VoteService{}
	user := registerVerified(t, "Alice", "alice@example.com", "secret1")

	poll, err := pollService.CreatePoll(user.Id, "Lunch?", []string{"Pizza", "Sushi"}, true, nil)
	assert.NoError(t, err)
	otherPoll, err := pollService.CreatePoll(user.Id, "Dinner?", []string{"Soup", "Salad"}, true, nil)
	assert.NoError(t, err)

	err = voteService.Vote(9999, poll.Options[0].Id, user.Id)
	assert.ErrorIs(t, err, ErrPollNotFound)

	// An option id from a different poll is rejected
	err = voteService.Vote(poll.Id, otherPoll.Options[0].Id, user.Id)
	assert.ErrorIs(t, err, ErrOptionInvalid)

	past := time.Now().Add(-time.Hour)
	ended, err := pollService.CreatePoll(user.Id, "Over?", []string{"A", "B"}, true, &past)
	assert.NoError(t, err)
	err = voteService.Vote(ended.Id, ended.Options[0].Id, user.Id)
	assert.ErrorIs(t, err, ErrPollClosed)

	err = database.GetDB().Model(model.Poll{}).
		Where("id = ?", poll.Id).
		Update("is_active", false).Error
	assert.NoError(t, err)
	err = voteService.Vote(poll.Id, poll.Options[0].Id, user.Id)
	assert.ErrorIs(t, err, ErrPollClosed)
}

func TestVoteConcurrent(t *testing.T) {
	setup()
	defer teardown()

	pollService := PollService{}
	voteService := VoteService{}
	user := registerVerified(t, "Alice", "alice@example.com", "secret1")

	poll, err := pollService.CreatePoll(user.Id, "Lunch?", []string{"Pizza", "Sushi"}, true, nil)
	assert.NoError(t, err)

	// Simultaneous submissions from the same user must collapse to one row
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(optionIdx int) {
			defer wg.Done()
			err := voteService.Vote(poll.Id, poll.Options[optionIdx%2].Id, user.Id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var count int64
	database.GetDB().Model(model.Vote{}).
		Where("poll_id = ? AND user_id = ?", poll.Id, user.Id).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCountsByOption(t *testing.T) {
	setup()
	defer teardown()

	pollService := PollService{}
	voteService := VoteService{}
	creator := registerVerified(t, "Creator", "creator@example.com", "secret1")

	poll, err := pollService.CreatePoll(creator.Id, "Lunch?", []string{"Pizza", "Sushi", "Salad"}, true, nil)
	assert.NoError(t, err)

	voters := []struct {
		email     string
		optionIdx int
	}{
		{"v1@example.com", 0},
		{"v2@example.com", 0},
		{"v3@example.com", 1},
	}
	for _, v := range voters {
		voter := registerVerified(t, v.email, v.email, "secret1")
		assert.NoError(t, voteService.Vote(poll.Id, poll.Options[v.optionIdx].Id, voter.Id))
	}

	byOption, total, err := voteService.CountsByOption(poll.Id)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 2, byOption[poll.Options[0].Id])
	assert.EqualValues(t, 1, byOption[poll.Options[1].Id])
	assert.EqualValues(t, 0, byOption[poll.Options[2].Id])

	result, err := pollService.GetPoll(poll.Id)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, result.TotalVotes)
	assert.Equal(t, 67, result.Options[0].Percentage)
	assert.Equal(t, 33, result.Options[1].Percentage)
	assert.Equal(t, 0, result.Options[2].Percentage)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		votes    int64
		total    int64
		expected int
	}{
		{"no votes at all", 0, 0, 0},
		{"all votes", 4, 4, 100},
		{"rounds down", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"zero of some", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percentage(tt.votes, tt.total))
		})
	}
}
