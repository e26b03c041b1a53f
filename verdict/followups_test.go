package verdict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettersg/checkmate/verdict/store"
)

func seedAssessedEvent(t *testing.T, db *store.MemStore, subID, evID, from string, category store.Category) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.CreateSubmission(ctx, &store.Submission{
		ID: subID, PrimaryCategory: &category, IsAssessed: true,
	}))
	require.NoError(t, db.CreateEvent(ctx, &store.Event{
		ID: evID, SubmissionID: subID, From: from, Type: "text", State: store.EventPending,
	}))
}

func TestFollowUpsReminderAndReferralSentOnce(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	db.PutUser(&store.User{ID: "user-1", Locale: "en", ReferralID: "abc123"})
	seedAssessedEvent(t, db, "sub1", "ev1", "user-1", store.CategoryScam)
	seedAssessedEvent(t, db, "sub2", "ev2", "user-1", store.CategoryScam)

	require.NoError(eng.Dispatch(ctx, "ev1", false, false))
	// verdict reply, reminder, referral
	require.Equal(3, out.Count())
	assert.Contains(out.Sent[1].Text, "forward it in")
	assert.Contains(out.Sent[2].Text, "https://ref.checkmate.sg/abc123")

	user, err := db.GetUser(ctx, "user-1")
	require.NoError(err)
	assert.True(user.IsReminderMessageSent)
	assert.True(user.IsReferralMessageSent)

	// the second submission gets its reply, but not the one-time extras
	require.NoError(eng.Dispatch(ctx, "ev2", false, false))
	assert.Equal(4, out.Count())
}

func TestFollowUpsSkippedForIrrelevantVerdicts(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	db.PutUser(&store.User{ID: "user-1", Locale: "en", ReferralID: "abc123"})
	seedAssessedEvent(t, db, "sub1", "ev1", "user-1", store.CategoryIrrelevant)

	require.NoError(eng.Dispatch(ctx, "ev1", false, false))
	// just the options menu, no reminder or referral
	assert.Equal(1, out.Count())
}

func TestSatisfactionSurveyOffer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	eng.Rand = func() float64 { return 0.0 } // always inside the offer likelihood
	db.PutUser(&store.User{
		ID: "user-1", Locale: "en", ReferralID: "abc123",
		IsReminderMessageSent: true, IsReferralMessageSent: true,
	})
	seedAssessedEvent(t, db, "sub1", "ev1", "user-1", store.CategoryScam)

	require.NoError(eng.Dispatch(ctx, "ev1", false, false))
	require.Equal(2, out.Count())
	survey := out.Last()
	require.Len(survey.Rows, 10)
	assert.Equal("satisfactionSurvey_10_ev1", survey.Rows[0].ID)
	assert.Equal("satisfactionSurvey_1_ev1", survey.Rows[9].ID)

	ev, err := db.GetEvent(ctx, "ev1")
	require.NoError(err)
	assert.True(ev.IsSatisfactionSurveySent)
	user, err := db.GetUser(ctx, "user-1")
	require.NoError(err)
	assert.NotNil(user.SatisfactionSurveyLastSent)
}

func TestSatisfactionSurveyCooldown(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	eng.Rand = func() float64 { return 0.0 }
	lastSent := eng.now().Add(-24 * time.Hour) // well inside the 30-day window
	db.PutUser(&store.User{
		ID: "user-1", Locale: "en", ReferralID: "abc123",
		IsReminderMessageSent: true, IsReferralMessageSent: true,
		SatisfactionSurveyLastSent: &lastSent,
	})
	seedAssessedEvent(t, db, "sub1", "ev1", "user-1", store.CategoryScam)

	require.NoError(eng.Dispatch(ctx, "ev1", false, false))
	// only the verdict reply; the cooldown suppressed the survey
	assert.Equal(1, out.Count())
	ev, err := db.GetEvent(ctx, "ev1")
	require.NoError(err)
	assert.False(ev.IsSatisfactionSurveySent)
}

func TestSatisfactionSurveyDailyQuota(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, db, out := EngineTestFixture()
	eng.Rand = func() float64 { return 0.0 }
	eng.Thresholds.SurveyQuotaDay = 0
	db.PutUser(&store.User{
		ID: "user-1", Locale: "en", ReferralID: "abc123",
		IsReminderMessageSent: true, IsReferralMessageSent: true,
	})
	seedAssessedEvent(t, db, "sub1", "ev1", "user-1", store.CategoryScam)

	require.NoError(eng.Dispatch(ctx, "ev1", false, false))
	assert.Equal(1, out.Count())
	// the quota gate fires before the cooldown claim, so the user's
	// cooldown window is untouched
	user, err := db.GetUser(ctx, "user-1")
	require.NoError(err)
	assert.Nil(user.SatisfactionSurveyLastSent)
}
