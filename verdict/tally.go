package verdict

import (
	"context"

	"github.com/bettersg/checkmate/verdict/store"
)

// Tally is a pure aggregation of the votes on one submission. Votes with
// a nil category have not been cast yet and are excluded from all counts
// and denominators.
type Tally struct {
	Counts     map[store.Category]int
	ValidCount int
	// arithmetic mean of truth scores among cast numeric-info votes that
	// carry a score; nil when there are none
	MeanTruthScore *float64
}

// SusCount is the combined scam and illicit count; the two categories
// share one user-safety threshold.
func (t *Tally) SusCount() int {
	return t.Counts[store.CategoryScam] + t.Counts[store.CategoryIllicit]
}

// TallyVoteSet aggregates a vote set. Pure; the order of votes does not
// affect the result.
func TallyVoteSet(votes []*store.Vote) *Tally {
	t := &Tally{Counts: make(map[store.Category]int)}
	var scoreSum float64
	var scoreCount int
	for _, v := range votes {
		if v.Category == nil {
			continue
		}
		t.Counts[*v.Category]++
		t.ValidCount++
		if *v.Category == store.CategoryInfo && v.TruthScore != nil {
			scoreSum += *v.TruthScore
			scoreCount++
		}
	}
	if scoreCount > 0 {
		mean := scoreSum / float64(scoreCount)
		t.MeanTruthScore = &mean
	}
	return t
}

// TallyVotes reads the submission's votes and aggregates them. No side
// effects.
func (e *Engine) TallyVotes(ctx context.Context, submissionID string) (*Tally, error) {
	votes, err := e.Votes.ListVotesBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return TallyVoteSet(votes), nil
}
