package verdict

import "time"

// Thresholds tunes the consensus decision rule and the follow-up
// messaging behavior. Shares are fractions of the valid (cast) vote
// count; a category is only assigned when its share strictly exceeds its
// threshold.
type Thresholds struct {
	// floor of cast votes before any decision
	MinValidVotes int

	// early-termination shares
	EndVote       float64
	EndVoteSus    float64
	EndVoteUnsure float64

	// category-assignment shares
	IsSpam       float64
	IsLegitimate float64
	IsInfo       float64
	IsIrrelevant float64
	IsUnsure     float64
	IsSus        float64

	// truth-score bucket boundaries on the 1-5 scale
	FalseUpperBound      float64
	MisleadingUpperBound float64

	// satisfaction survey pacing
	SatisfactionSurveyCooldownDays int
	SurveyLikelihood               float64
	// daily ceiling on survey offers across all users (circuit breaker)
	SurveyQuotaDay int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinValidVotes:                  1,
		EndVote:                        0.5,
		EndVoteSus:                     0.2,
		EndVoteUnsure:                  0.8,
		IsSpam:                         0.5,
		IsLegitimate:                   0.5,
		IsInfo:                         0.5,
		IsIrrelevant:                   0.5,
		IsUnsure:                       0.5,
		IsSus:                          0.5,
		FalseUpperBound:                1.5,
		MisleadingUpperBound:           3.5,
		SatisfactionSurveyCooldownDays: 30,
		SurveyLikelihood:               0.25,
		SurveyQuotaDay:                 50,
	}
}

func (t Thresholds) SurveyCooldown() time.Duration {
	return time.Duration(t.SatisfactionSurveyCooldownDays) * 24 * time.Hour
}
