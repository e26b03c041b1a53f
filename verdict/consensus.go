package verdict

import (
	"context"
	"fmt"

	"github.com/bettersg/checkmate/verdict/store"
)

// Verdict is the finalized outcome of voting on a submission. TruthScore
// is only set for numeric-info verdicts.
type Verdict struct {
	Category   store.Category
	TruthScore *float64
}

// candidate groups one or more vote categories under a shared
// assignment threshold. Order in the candidate list is the exact-tie
// precedence: user-safety outcomes beat softer ones.
type candidate struct {
	category  store.Category
	count     int
	threshold float64
}

// EvaluateConsensus decides whether the tallied votes finalize the
// submission, and with what verdict. Pure and deterministic: the same
// tally and reviewer count always yield the same outcome, so concurrent
// or repeated evaluation cannot flap.
//
// Voting ends when the scam/illicit share exceeds EndVoteSus, the unsure
// share exceeds EndVoteUnsure, any share exceeds EndVote, or every
// eligible reviewer has voted. The verdict goes to the qualifying
// category (share strictly above its assignment threshold) with the
// highest share; on an exact tie the earlier candidate in safety
// precedence wins. If voting ended only because all reviewers voted and
// no category qualifies, the verdict is unsure.
func EvaluateConsensus(th Thresholds, tally *Tally, eligibleReviewers int) (*Verdict, bool) {
	valid := tally.ValidCount
	if valid < th.MinValidVotes || valid == 0 {
		return nil, false
	}

	sus := tally.SusCount()
	cands := []candidate{
		{store.CategoryScam, sus, th.IsSus},
		{store.CategorySpam, tally.Counts[store.CategorySpam], th.IsSpam},
		{store.CategoryInfo, tally.Counts[store.CategoryInfo], th.IsInfo},
		{store.CategoryLegitimate, tally.Counts[store.CategoryLegitimate], th.IsLegitimate},
		{store.CategorySatire, tally.Counts[store.CategorySatire], th.EndVote},
		{store.CategoryIrrelevant, tally.Counts[store.CategoryIrrelevant], th.IsIrrelevant},
		{store.CategoryUnsure, tally.Counts[store.CategoryUnsure], th.IsUnsure},
	}

	share := func(count int) float64 { return float64(count) / float64(valid) }

	maxShare := 0.0
	for _, c := range cands {
		if s := share(c.count); s > maxShare {
			maxShare = s
		}
	}

	allVoted := eligibleReviewers > 0 && valid >= eligibleReviewers
	ended := allVoted ||
		share(sus) > th.EndVoteSus ||
		share(tally.Counts[store.CategoryUnsure]) > th.EndVoteUnsure ||
		maxShare > th.EndVote
	if !ended {
		return nil, false
	}

	var best *candidate
	bestShare := 0.0
	for i := range cands {
		c := &cands[i]
		s := share(c.count)
		if s <= c.threshold {
			continue
		}
		// strictly higher share wins; an exact tie keeps the earlier,
		// safety-preferred candidate
		if best == nil || s > bestShare {
			best = c
			bestShare = s
		}
	}
	if best == nil {
		if allVoted {
			return &Verdict{Category: store.CategoryUnsure}, true
		}
		return nil, false
	}

	switch best.category {
	case store.CategoryScam:
		// resolve the combined sus group to its dominant member
		if tally.Counts[store.CategoryIllicit] > tally.Counts[store.CategoryScam] {
			return &Verdict{Category: store.CategoryIllicit}, true
		}
		return &Verdict{Category: store.CategoryScam}, true
	case store.CategoryInfo:
		return infoVerdict(th, tally), true
	default:
		return &Verdict{Category: best.category}, true
	}
}

// infoVerdict buckets the mean truth score into untrue, misleading or
// accurate, preserving the numeric score. With no scores to average the
// outcome degrades to unsure rather than guessing a band.
func infoVerdict(th Thresholds, tally *Tally) *Verdict {
	score := tally.MeanTruthScore
	if score == nil {
		return &Verdict{Category: store.CategoryUnsure}
	}
	switch {
	case *score < th.FalseUpperBound:
		return &Verdict{Category: store.CategoryUntrue, TruthScore: score}
	case *score < th.MisleadingUpperBound:
		return &Verdict{Category: store.CategoryMisleading, TruthScore: score}
	default:
		return &Verdict{Category: store.CategoryAccurate, TruthScore: score}
	}
}

// EvaluateSubmission runs consensus over the submission's current vote
// set and, when voting has concluded, finalizes the verdict. The
// finalize is a compare-and-set scoped to the submission, so two
// concurrent evaluations cannot commit conflicting verdicts; the loser
// observes the submission already assessed. Returns the verdict (when
// voting concluded) and whether this call committed it.
func (e *Engine) EvaluateSubmission(ctx context.Context, submissionID string) (*Verdict, bool, error) {
	tally, err := e.TallyVotes(ctx, submissionID)
	if err != nil {
		return nil, false, fmt.Errorf("tallying votes: %w", err)
	}
	eligible, err := e.Reviewers.CountActiveReviewers(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("counting eligible reviewers: %w", err)
	}
	verdict, decided := EvaluateConsensus(e.Thresholds, tally, eligible)
	if !decided {
		return nil, false, nil
	}
	committed, err := e.Submissions.FinalizeSubmission(ctx, submissionID, verdict.Category, verdict.TruthScore, e.now())
	if err != nil {
		return nil, false, fmt.Errorf("finalizing submission: %w", err)
	}
	if committed {
		verdictFinalizedCount.WithLabelValues(string(verdict.Category)).Inc()
		e.Logger.Info("submission assessed", "submission", submissionID,
			"category", verdict.Category, "validVotes", tally.ValidCount)
	}
	return verdict, committed, nil
}
