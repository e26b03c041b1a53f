package verdict

import (
	"log/slog"
	"math"

	"github.com/bettersg/checkmate/verdict/store"
)

// ScoreVote compares one reviewer's vote against the submission's
// finalized verdict. Returns nil when the vote is not scoreable; a nil
// result must never be counted as either accurate or inaccurate.
//
// Reviewers are not penalized when the collective outcome itself is
// unsure. A numeric-info vote is scored by truth-score distance when the
// verdict landed in an info-compatible category, and is plainly wrong
// when it did not.
func ScoreVote(logger *slog.Logger, sub *store.Submission, vote *store.Vote) *bool {
	if !sub.IsAssessed {
		return nil
	}
	if sub.PrimaryCategory == nil {
		logger.Warn("assessed submission has no category", "submission", sub.ID)
		return nil
	}
	final := *sub.PrimaryCategory
	if final == store.CategoryUnsure {
		return nil
	}
	if vote.Category == nil {
		logger.Warn("vote has no category", "vote", vote.ID)
		return nil
	}

	if *vote.Category == store.CategoryInfo {
		if !final.IsInfoCompatible() {
			return boolPtr(false)
		}
		if sub.TruthScore == nil || vote.TruthScore == nil {
			logger.Warn("truth score missing", "submission", sub.ID, "vote", vote.ID)
			return nil
		}
		return boolPtr(math.Abs(*sub.TruthScore-*vote.TruthScore) <= 1)
	}

	return boolPtr(*vote.Category == final)
}

func boolPtr(v bool) *bool {
	return &v
}
