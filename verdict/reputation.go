package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const profileCacheName = "profile"

// WindowStats aggregates a reviewer's activity over a trailing window.
type WindowStats struct {
	TotalVoted          int     `json:"totalVoted"`
	AccuracyRate        float64 `json:"accuracyRate"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	PeopleHelped        int     `json:"peopleHelped"`
}

// ReviewerProfile is the read-side reputation view served to the
// reviewer-facing app.
type ReviewerProfile struct {
	Name             string      `json:"name"`
	Kind             string      `json:"type"`
	IsActive         bool        `json:"isActive"`
	PendingVoteCount int         `json:"pendingVoteCount"`
	Last30Days       WindowStats `json:"last30days"`
}

// ReviewerProfile computes a reviewer's reputation profile over the
// trailing window, reading through the profile cache. Cached entries
// are purged whenever the reviewer casts a vote, so staleness is
// bounded by the reviewer's own activity.
func (e *Engine) ReviewerProfile(ctx context.Context, reviewerID string, window time.Duration) (*ReviewerProfile, error) {
	if cached, err := e.Cache.Get(ctx, profileCacheName, reviewerID); err != nil {
		e.Logger.Error("reading profile cache", "err", err, "reviewer", reviewerID)
	} else if cached != "" {
		var profile ReviewerProfile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			profileCacheHitCount.Inc()
			return &profile, nil
		}
		e.Logger.Warn("discarding unparseable cached profile", "reviewer", reviewerID)
	}

	rev, err := e.Reviewers.GetReviewer(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	pending, err := e.Votes.CountPendingVotesByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("counting pending votes: %w", err)
	}

	cutoff := e.now().Add(-window)
	votes, err := e.Votes.ListCastVotesByReviewerSince(ctx, reviewerID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing recent votes: %w", err)
	}

	stats := WindowStats{TotalVoted: len(votes)}
	var accurate, scoreable int
	var responseMinutes float64
	var responseCount int
	for _, v := range votes {
		sub, err := e.Submissions.GetSubmission(ctx, v.SubmissionID)
		if err != nil {
			e.Logger.Error("loading submission for profile", "err", err, "vote", v.ID)
			continue
		}
		stats.PeopleHelped += sub.EventCount
		if v.VotedTimestamp != nil {
			responseMinutes += v.VotedTimestamp.Sub(v.CreatedTimestamp).Minutes()
			responseCount++
		}
		result := ScoreVote(e.Logger, sub, v)
		if result == nil {
			continue
		}
		scoreable++
		if *result {
			accurate++
		}
	}
	// with nothing scoreable the reviewer has not been wrong yet
	stats.AccuracyRate = 1.0
	if scoreable > 0 {
		stats.AccuracyRate = float64(accurate) / float64(scoreable)
	}
	if responseCount > 0 {
		stats.AverageResponseTime = responseMinutes / float64(responseCount)
	}

	profile := &ReviewerProfile{
		Name:             rev.Name,
		Kind:             rev.Kind,
		IsActive:         rev.IsActive,
		PendingVoteCount: pending,
		Last30Days:       stats,
	}

	if encoded, err := json.Marshal(profile); err == nil {
		if err := e.Cache.Set(ctx, profileCacheName, reviewerID, string(encoded)); err != nil {
			e.Logger.Error("writing profile cache", "err", err, "reviewer", reviewerID)
		}
	}
	return profile, nil
}
