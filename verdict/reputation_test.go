package verdict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettersg/checkmate/verdict/store"
)

const profileWindow = 30 * 24 * time.Hour

func seedScoredVote(t *testing.T, db *store.MemStore, voteID, subID, reviewerID string, voted, final store.Category, eventCount int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.CreateSubmission(ctx, &store.Submission{
		ID: subID, PrimaryCategory: &final, IsAssessed: true, EventCount: eventCount,
	}))
	created := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	votedAt := created.Add(30 * time.Minute)
	require.NoError(t, db.CreateVote(ctx, &store.Vote{
		ID:               voteID,
		SubmissionID:     subID,
		ReviewerID:       reviewerID,
		Category:         &voted,
		CreatedTimestamp: created,
		VotedTimestamp:   &votedAt,
	}))
}

func TestReviewerProfileAggregatesWindow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, _ := EngineTestFixture()
	require.NoError(db.CreateReviewer(ctx, &store.Reviewer{
		ID: "checker-1", Name: "Alice", Kind: "human", IsActive: true,
	}))

	// two accurate, one inaccurate
	seedScoredVote(t, db, "v1", "sub1", "checker-1", store.CategoryScam, store.CategoryScam, 3)
	seedScoredVote(t, db, "v2", "sub2", "checker-1", store.CategoryScam, store.CategoryScam, 1)
	seedScoredVote(t, db, "v3", "sub3", "checker-1", store.CategoryLegitimate, store.CategoryScam, 2)
	// plus one still-pending vote
	require.NoError(db.CreateVote(ctx, &store.Vote{
		ID: "v4", SubmissionID: "sub1", ReviewerID: "checker-1",
		CreatedTimestamp: eng.now(),
	}))

	profile, err := eng.ReviewerProfile(ctx, "checker-1", profileWindow)
	require.NoError(err)
	assert.Equal("Alice", profile.Name)
	assert.Equal("human", profile.Kind)
	assert.True(profile.IsActive)
	assert.Equal(1, profile.PendingVoteCount)
	assert.Equal(3, profile.Last30Days.TotalVoted)
	assert.InDelta(2.0/3.0, profile.Last30Days.AccuracyRate, 0.0001)
	assert.InDelta(30.0, profile.Last30Days.AverageResponseTime, 0.0001)
	assert.Equal(6, profile.Last30Days.PeopleHelped)
}

func TestReviewerProfileFullMarksWithNothingScoreable(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, _ := EngineTestFixture()
	require.NoError(db.CreateReviewer(ctx, &store.Reviewer{
		ID: "checker-1", Name: "Alice", Kind: "human", IsActive: true,
	}))
	// the only vote landed on an unsure verdict, which never counts
	seedScoredVote(t, db, "v1", "sub1", "checker-1", store.CategoryScam, store.CategoryUnsure, 1)

	profile, err := eng.ReviewerProfile(ctx, "checker-1", profileWindow)
	require.NoError(err)
	assert.Equal(1, profile.Last30Days.TotalVoted)
	assert.Equal(1.0, profile.Last30Days.AccuracyRate)
}

func TestReviewerProfileServedFromCache(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, _ := EngineTestFixture()
	require.NoError(db.CreateReviewer(ctx, &store.Reviewer{
		ID: "checker-1", Name: "Alice", Kind: "human", IsActive: true,
	}))
	seedScoredVote(t, db, "v1", "sub1", "checker-1", store.CategoryScam, store.CategoryScam, 1)

	first, err := eng.ReviewerProfile(ctx, "checker-1", profileWindow)
	require.NoError(err)

	// new activity is invisible until the cache is purged
	seedScoredVote(t, db, "v2", "sub2", "checker-1", store.CategoryScam, store.CategoryScam, 1)
	cached, err := eng.ReviewerProfile(ctx, "checker-1", profileWindow)
	require.NoError(err)
	assert.Equal(first.Last30Days.TotalVoted, cached.Last30Days.TotalVoted)

	require.NoError(eng.Cache.Purge(ctx, "profile", "checker-1"))
	fresh, err := eng.ReviewerProfile(ctx, "checker-1", profileWindow)
	require.NoError(err)
	assert.Equal(2, fresh.Last30Days.TotalVoted)
}

func TestReviewerProfileUnknownReviewer(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture()
	_, err := eng.ReviewerProfile(ctx, "nobody", profileWindow)
	assert.ErrorIs(err, store.ErrNotFound)
}

func TestVoteCastPurgesProfileCache(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, _ := EngineTestFixture()
	reviewers := MustSeedReviewers(db, 1)
	_, voteIDs := MustSeedSubmission(db, "sub1", "user-1", reviewers)

	_, err := eng.ReviewerProfile(ctx, reviewers[0], profileWindow)
	require.NoError(err)

	require.NoError(eng.HandleVote(ctx, voteIDs[0], store.CategoryScam, nil))

	fresh, err := eng.ReviewerProfile(ctx, reviewers[0], profileWindow)
	require.NoError(err)
	assert.Equal(1, fresh.Last30Days.TotalVoted)
}
