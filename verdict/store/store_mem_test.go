package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeSubmissionIsCompareAndSet(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateSubmission(ctx, &Submission{ID: "sub1"}))

	ok, err := db.FinalizeSubmission(ctx, "sub1", CategoryScam, nil, time.Now())
	require.NoError(err)
	assert.True(ok)

	// the losing finalize must not overwrite the committed verdict
	score := 4.5
	ok, err = db.FinalizeSubmission(ctx, "sub1", CategoryAccurate, &score, time.Now())
	require.NoError(err)
	assert.False(ok)

	sub, err := db.GetSubmission(ctx, "sub1")
	require.NoError(err)
	assert.Equal(CategoryScam, *sub.PrimaryCategory)
	assert.Nil(sub.TruthScore)
}

func TestMarkRepliedIsCompareAndSet(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateSubmission(ctx, &Submission{ID: "sub1"}))
	require.NoError(db.CreateEvent(ctx, &Event{ID: "ev1", SubmissionID: "sub1", From: "u1", State: EventPending}))

	ok, err := db.MarkReplied(ctx, "ev1", ReplyRecord{Category: CategoryScam, Timestamp: time.Now()})
	require.NoError(err)
	assert.True(ok)

	ok, err = db.MarkReplied(ctx, "ev1", ReplyRecord{Category: CategorySpam, Timestamp: time.Now()})
	require.NoError(err)
	assert.False(ok)

	ev, err := db.GetEvent(ctx, "ev1")
	require.NoError(err)
	assert.Equal(CategoryScam, *ev.ReplyCategory)
}

func TestCastVoteNeverOverwrites(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateVote(ctx, &Vote{ID: "v1", SubmissionID: "sub1", ReviewerID: "r1"}))

	ok, err := db.CastVote(ctx, "v1", CategoryScam, nil, time.Now())
	require.NoError(err)
	assert.True(ok)

	ok, err = db.CastVote(ctx, "v1", CategoryLegitimate, nil, time.Now())
	require.NoError(err)
	assert.False(ok)

	v, err := db.GetVote(ctx, "v1")
	require.NoError(err)
	assert.Equal(CategoryScam, *v.Category)
	assert.NotNil(v.VotedTimestamp)
}

func TestSetEventFlagIsOneShot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateEvent(ctx, &Event{ID: "ev1", SubmissionID: "sub1", From: "u1", State: EventPending}))

	for _, flag := range []EventFlag{FlagInterimPromptSent, FlagInterimReplySent, FlagRationalisationSent, FlagSatisfactionSurveySent} {
		ok, err := db.SetEventFlag(ctx, "ev1", flag)
		require.NoError(err)
		assert.True(ok, string(flag))

		ok, err = db.SetEventFlag(ctx, "ev1", flag)
		require.NoError(err)
		assert.False(ok, string(flag))
	}

	ev, err := db.GetEvent(ctx, "ev1")
	require.NoError(err)
	assert.True(ev.IsInterimPromptSent)
	assert.True(ev.IsInterimReplySent)
	assert.True(ev.IsRationalisationSent)
	assert.True(ev.IsSatisfactionSurveySent)
}

func TestCreateEventBumpsSubmissionEventCount(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateSubmission(ctx, &Submission{ID: "sub1"}))
	require.NoError(db.CreateEvent(ctx, &Event{ID: "ev1", SubmissionID: "sub1", From: "u1", State: EventPending}))
	require.NoError(db.CreateEvent(ctx, &Event{ID: "ev2", SubmissionID: "sub1", From: "u2", State: EventPending}))

	sub, err := db.GetSubmission(ctx, "sub1")
	require.NoError(err)
	assert.Equal(2, sub.EventCount)

	n, err := db.CountEventsBySender(ctx, "sub1", "u1")
	require.NoError(err)
	assert.Equal(1, n)
}

func TestClaimSatisfactionSurveyCooldown(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	_, err := db.GetOrCreateUser(ctx, "u1")
	require.NoError(err)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown := 30 * 24 * time.Hour

	ok, err := db.ClaimSatisfactionSurvey(ctx, "u1", now, cooldown)
	require.NoError(err)
	assert.True(ok)

	ok, err = db.ClaimSatisfactionSurvey(ctx, "u1", now.Add(24*time.Hour), cooldown)
	require.NoError(err)
	assert.False(ok)

	ok, err = db.ClaimSatisfactionSurvey(ctx, "u1", now.Add(cooldown), cooldown)
	require.NoError(err)
	assert.True(ok)
}

func TestGetSubmissionReturnsCopies(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	db := NewMemStore()

	require.NoError(db.CreateSubmission(ctx, &Submission{ID: "sub1", Text: "original"}))
	sub, err := db.GetSubmission(ctx, "sub1")
	require.NoError(err)
	sub.Text = "mutated by caller"

	again, err := db.GetSubmission(ctx, "sub1")
	require.NoError(err)
	assert.Equal("original", again.Text)
}

func TestNotFound(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	db := NewMemStore()

	_, err := db.GetSubmission(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
	_, err = db.GetEvent(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
	_, err = db.GetVote(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
	_, err = db.GetReviewer(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
	_, err = db.GetUser(ctx, "missing")
	assert.ErrorIs(err, ErrNotFound)
}
