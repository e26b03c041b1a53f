package verdict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/bettersg/checkmate/verdict/cachestore"
	"github.com/bettersg/checkmate/verdict/countstore"
	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"
)

// runtime for consensus evaluation, reply dispatch and reputation
// scoring. Fields should not be nil except Now and Rand, which default
// to the wall clock and math/rand.
type Engine struct {
	Logger      *slog.Logger
	Submissions store.SubmissionStore
	Events      store.EventStore
	Votes       store.VoteStore
	Reviewers   store.ReviewerStore
	Users       store.UserStore
	Counters    countstore.CountStore
	Cache       cachestore.CacheStore
	Responses   *responses.Resolver
	Sender      sender.Sender
	// throttles follow-up sends against downstream rate limits; pacing
	// only, provides no ordering guarantees
	Pacer      *rate.Limiter
	Thresholds Thresholds
	Now        func() time.Time
	Rand       func() float64
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) randFloat() float64 {
	if e.Rand != nil {
		return e.Rand()
	}
	return rand.Float64()
}

// HandleVote casts a reviewer's vote and runs the consensus pipeline for
// the parent submission. A vote that was already cast is never
// overwritten; the duplicate trigger is logged and the pipeline still
// re-evaluates, which is safe because every downstream step is
// idempotent.
func (e *Engine) HandleVote(ctx context.Context, voteID string, category store.Category, truthScore *float64) error {
	vote, err := e.Votes.GetVote(ctx, voteID)
	if err != nil {
		return fmt.Errorf("loading vote: %w", err)
	}

	cast, err := e.Votes.CastVote(ctx, voteID, category, truthScore, e.now())
	if err != nil {
		return fmt.Errorf("casting vote: %w", err)
	}
	if !cast {
		e.Logger.Warn("vote already cast, not overwriting", "vote", voteID)
	} else {
		voteCastCount.WithLabelValues(string(category)).Inc()
		if err := e.Cache.Purge(ctx, profileCacheName, vote.ReviewerID); err != nil {
			e.Logger.Error("purging reviewer profile cache", "err", err, "reviewer", vote.ReviewerID)
		}
	}

	return e.ProcessSubmission(ctx, vote.SubmissionID)
}

// ProcessSubmission re-evaluates consensus for a submission and, once a
// verdict exists, drives the post-verdict work: replying to every pending
// event and rolling the verdict into each voter's accuracy counters.
// Idempotent; safe to call on every vote and on queue redelivery.
func (e *Engine) ProcessSubmission(ctx context.Context, submissionID string) error {
	_, _, err := e.EvaluateSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	sub, err := e.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("loading submission: %w", err)
	}
	if !sub.IsAssessed {
		return nil
	}

	e.dispatchPendingEvents(ctx, submissionID)
	e.scoreSubmissionVotes(ctx, sub)
	return nil
}

// dispatchPendingEvents replies to every not-yet-replied event of an
// assessed submission. Per-event failures are contained: one bad event
// does not block replies to the others.
func (e *Engine) dispatchPendingEvents(ctx context.Context, submissionID string) {
	pending, err := e.Events.ListPendingEvents(ctx, submissionID)
	if err != nil {
		e.Logger.Error("listing pending events", "err", err, "submission", submissionID)
		return
	}
	for _, ev := range pending {
		if err := e.Dispatch(ctx, ev.ID, false, false); err != nil {
			e.Logger.Error("dispatching reply", "err", err, "event", ev.ID)
		}
	}
}

// scoreSubmissionVotes rolls the finalized verdict into each voter's
// rolling counters, exactly once per vote. Not-scoreable votes are
// marked processed but counted in neither numerator nor denominator.
func (e *Engine) scoreSubmissionVotes(ctx context.Context, sub *store.Submission) {
	votes, err := e.Votes.ListVotesBySubmission(ctx, sub.ID)
	if err != nil {
		e.Logger.Error("listing votes for scoring", "err", err, "submission", sub.ID)
		return
	}
	for _, v := range votes {
		if v.Category == nil {
			continue
		}
		result := ScoreVote(e.Logger, sub, v)
		claimed, err := e.Votes.MarkScored(ctx, v.ID)
		if err != nil {
			e.Logger.Error("marking vote scored", "err", err, "vote", v.ID)
			continue
		}
		if !claimed || result == nil {
			continue
		}
		if err := e.Reviewers.IncrementVoteStats(ctx, v.ReviewerID, *result); err != nil {
			e.Logger.Error("updating reviewer counters", "err", err, "reviewer", v.ReviewerID)
		}
	}
}

// resolve looks up response text for the user's locale, logging loudly on
// unknown keys rather than sending template soup.
func (e *Engine) resolve(key responses.Key, locale string) string {
	text, err := e.Responses.Resolve(key, locale)
	if err != nil {
		var unknownKey *responses.UnknownKeyError
		if errors.As(err, &unknownKey) {
			e.Logger.Error("unknown response key", "key", key, "locale", locale)
		} else {
			e.Logger.Error("resolving response text", "err", err, "key", key)
		}
		return ""
	}
	return text
}

func (e *Engine) sendText(ctx context.Context, kind, to, text string) error {
	if err := e.Sender.SendText(ctx, to, text); err != nil {
		outboundSendErrorCount.WithLabelValues(kind).Inc()
		return err
	}
	e.countSend(ctx, kind)
	return nil
}

func (e *Engine) sendButtons(ctx context.Context, kind, to, text string, buttons []sender.Button) error {
	if err := e.Sender.SendButtons(ctx, to, text, buttons); err != nil {
		outboundSendErrorCount.WithLabelValues(kind).Inc()
		return err
	}
	e.countSend(ctx, kind)
	return nil
}

func (e *Engine) sendMenu(ctx context.Context, kind, to, text, buttonLabel string, rows []sender.MenuRow) error {
	if err := e.Sender.SendMenu(ctx, to, text, buttonLabel, rows); err != nil {
		outboundSendErrorCount.WithLabelValues(kind).Inc()
		return err
	}
	e.countSend(ctx, kind)
	return nil
}

func (e *Engine) countSend(ctx context.Context, kind string) {
	outboundSendCount.WithLabelValues(kind).Inc()
	if err := e.Counters.Increment(ctx, "sends", kind); err != nil {
		e.Logger.Error("incrementing send counter", "err", err, "kind", kind)
	}
}
