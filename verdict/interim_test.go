package verdict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettersg/checkmate/verdict/store"
)

func TestInterimPromptIsOneShot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 3)
	evID, _ := MustSeedSubmission(db, "sub1", "user-1", reviewers)

	require.NoError(eng.SendInterimPrompt(ctx, evID))
	require.Equal(1, out.Count())
	require.Len(out.Last().Buttons, 1)
	assert.Equal("sendInterim_"+evID, out.Last().Buttons[0].ID)

	require.NoError(eng.SendInterimPrompt(ctx, evID))
	assert.Equal(1, out.Count())
}

func TestInterimUpdateReportsLeadingCategory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 4)
	evID, voteIDs := MustSeedSubmission(db, "sub1", "user-1", reviewers)
	_, err := db.CastVote(ctx, voteIDs[0], store.CategoryScam, nil, eng.now())
	require.NoError(err)

	require.NoError(eng.SendInterimUpdate(ctx, evID))
	require.Equal(1, out.Count())
	msg := out.Last()
	assert.Contains(msg.Text, "a scam")
	assert.Contains(msg.Text, "25.0%")
	require.Len(msg.Buttons, 1)
	assert.Equal("sendInterim_"+evID, msg.Buttons[0].ID)

	ev, err := db.GetEvent(ctx, evID)
	require.NoError(err)
	assert.True(ev.IsInterimReplySent)
	require.NotNil(ev.IsMeaningfulInterimReplySent)
	assert.True(*ev.IsMeaningfulInterimReplySent)
}

func TestInterimUpdateUnsureDoesNotOverwriteMeaningful(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 4)
	evID, voteIDs := MustSeedSubmission(db, "sub1", "user-1", reviewers)
	_, err := db.CastVote(ctx, voteIDs[0], store.CategoryUnsure, nil, eng.now())
	require.NoError(err)

	require.NoError(eng.SendInterimUpdate(ctx, evID))
	require.Equal(1, out.Count())
	ev, err := db.GetEvent(ctx, evID)
	require.NoError(err)
	require.NotNil(ev.IsMeaningfulInterimReplySent)
	assert.False(*ev.IsMeaningfulInterimReplySent)

	// a later meaningful update flips the marker
	_, err = db.CastVote(ctx, voteIDs[1], store.CategoryScam, nil, eng.now())
	require.NoError(err)
	_, err = db.CastVote(ctx, voteIDs[2], store.CategoryScam, nil, eng.now())
	require.NoError(err)
	require.NoError(eng.SendInterimUpdate(ctx, evID))
	ev, err = db.GetEvent(ctx, evID)
	require.NoError(err)
	require.NotNil(ev.IsMeaningfulInterimReplySent)
	assert.True(*ev.IsMeaningfulInterimReplySent)
}

func TestInterimUpdateAfterReply(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 2)
	evID, _ := MustSeedSubmission(db, "sub1", "user-1", reviewers)
	_, err := db.MarkReplied(ctx, evID, store.ReplyRecord{Category: store.CategoryScam, Timestamp: eng.now()})
	require.NoError(err)

	require.NoError(eng.SendInterimUpdate(ctx, evID))
	require.Equal(1, out.Count())
	assert.Contains(out.Last().Text, "already replied")
}

func TestVotingStatsTopTwoShares(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 4)
	evID, voteIDs := MustSeedSubmission(db, "sub1", "user-1", reviewers)
	for _, vid := range voteIDs[:3] {
		_, err := db.CastVote(ctx, vid, store.CategoryScam, nil, eng.now())
		require.NoError(err)
	}
	_, err := db.CastVote(ctx, voteIDs[3], store.CategoryLegitimate, nil, eng.now())
	require.NoError(err)

	require.NoError(eng.SendVotingStats(ctx, evID))
	require.Equal(1, out.Count())
	text := out.Last().Text
	assert.Contains(text, "75.0% of our CheckMates rated this as a scam")
	assert.Contains(text, "25.0% rated this as from a legitimate source")
}

func TestVotingStatsWithoutVotes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 2)
	evID, _ := MustSeedSubmission(db, "sub1", "user-1", reviewers)

	require.NoError(eng.SendVotingStats(ctx, evID))
	require.Equal(1, out.Count())
	assert.Contains(out.Last().Text, "something went wrong")
}

func TestRationalisationIsOneShot(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	cat := store.CategoryScam
	why := "The link leads to a fake bank login page."
	require.NoError(db.CreateSubmission(ctx, &store.Submission{
		ID: "sub1", PrimaryCategory: &cat, IsAssessed: true, Rationalisation: &why,
	}))
	require.NoError(db.CreateEvent(ctx, &store.Event{
		ID: "ev1", SubmissionID: "sub1", From: "user-1", Type: "text", State: store.EventPending,
	}))

	require.NoError(eng.SendRationalisation(ctx, "ev1"))
	require.Equal(1, out.Count())
	msg := out.Last()
	assert.Contains(msg.Text, why)
	require.Len(msg.Buttons, 2)
	assert.Equal("feedbackRationalisation_ev1_yes", msg.Buttons[0].ID)

	require.NoError(eng.SendRationalisation(ctx, "ev1"))
	assert.Equal(1, out.Count())
}

func TestRationalisationMissingFallsBackToError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	cat := store.CategoryScam
	require.NoError(db.CreateSubmission(ctx, &store.Submission{
		ID: "sub1", PrimaryCategory: &cat, IsAssessed: true,
	}))
	require.NoError(db.CreateEvent(ctx, &store.Event{
		ID: "ev1", SubmissionID: "sub1", From: "user-1", Type: "text", State: store.EventPending,
	}))

	require.NoError(eng.SendRationalisation(ctx, "ev1"))
	require.Equal(1, out.Count())
	assert.Contains(out.Last().Text, "something went wrong")
	ev, err := db.GetEvent(ctx, "ev1")
	require.NoError(err)
	assert.False(ev.IsRationalisationSent)
}
