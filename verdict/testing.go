package verdict

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/bettersg/checkmate/verdict/cachestore"
	"github.com/bettersg/checkmate/verdict/countstore"
	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"
)

// EngineTestFixture wires an engine against in-memory stores and a
// capturing sender, with a frozen clock and a deterministic RNG that
// never triggers the probabilistic survey offer. Intentionally exported,
// for use in other packages' tests.
func EngineTestFixture() (Engine, *store.MemStore, *sender.CaptureSender) {
	db := store.NewMemStore()
	out := sender.NewCaptureSender()
	engine := Engine{
		Logger:      slog.Default(),
		Submissions: db,
		Events:      db,
		Votes:       db,
		Reviewers:   db,
		Users:       db,
		Counters:    countstore.NewMemCountStore(),
		Cache:       cachestore.NewMemCacheStore(10, time.Hour),
		Responses:   responses.NewResolver(),
		Sender:      out,
		Pacer:       rate.NewLimiter(rate.Inf, 1),
		Thresholds:  DefaultThresholds(),
		Now:         func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
		Rand:        func() float64 { return 1.0 },
	}
	return engine, db, out
}

// MustSeedReviewers creates n active human reviewers named checker-1..n.
func MustSeedReviewers(db *store.MemStore, n int) []string {
	ctx := context.Background()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := "checker-" + string(rune('0'+i))
		if err := db.CreateReviewer(ctx, &store.Reviewer{
			ID:       id,
			Name:     "Checker " + string(rune('0'+i)),
			Kind:     "human",
			IsActive: true,
		}); err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

// MustSeedSubmission creates a submission, one pending event from the
// given sender, and one uncast vote per reviewer. Returns the event ID
// and the vote IDs in reviewer order.
func MustSeedSubmission(db *store.MemStore, subID, from string, reviewerIDs []string) (string, []string) {
	ctx := context.Background()
	if err := db.CreateSubmission(ctx, &store.Submission{ID: subID, Text: "forwarded message"}); err != nil {
		panic(err)
	}
	evID := subID + "-ev1"
	if err := db.CreateEvent(ctx, &store.Event{
		ID:           evID,
		SubmissionID: subID,
		From:         from,
		Type:         "text",
		State:        store.EventPending,
	}); err != nil {
		panic(err)
	}
	voteIDs := make([]string, 0, len(reviewerIDs))
	for _, rid := range reviewerIDs {
		vid := subID + "-" + rid
		if err := db.CreateVote(ctx, &store.Vote{
			ID:               vid,
			SubmissionID:     subID,
			ReviewerID:       rid,
			CreatedTimestamp: time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
		}); err != nil {
			panic(err)
		}
		voteIDs = append(voteIDs, vid)
	}
	return evID, voteIDs
}
