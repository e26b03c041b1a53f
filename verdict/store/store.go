package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// Category is a classification of a submission, either as voted by an
// individual reviewer or as the finalized verdict.
type Category string

const (
	CategoryScam       Category = "scam"
	CategoryIllicit    Category = "illicit"
	CategorySpam       Category = "spam"
	CategoryInfo       Category = "info"
	CategoryUntrue     Category = "untrue"
	CategoryMisleading Category = "misleading"
	CategoryAccurate   Category = "accurate"
	CategorySatire     Category = "satire"
	CategoryLegitimate Category = "legitimate"
	CategoryIrrelevant Category = "irrelevant"
	CategoryUnsure     Category = "unsure"

	// reply-side only, never assigned by consensus
	CategoryIrrelevantAuto Category = "irrelevant_auto"
	CategoryCustom         Category = "custom"
	CategoryError          Category = "error"
)

// verdict categories which consensus may assign to a submission
var VerdictCategories = []Category{
	CategoryScam,
	CategoryIllicit,
	CategorySpam,
	CategoryUntrue,
	CategoryMisleading,
	CategoryAccurate,
	CategorySatire,
	CategoryLegitimate,
	CategoryIrrelevant,
	CategoryUnsure,
}

func (c Category) IsKnownVerdict() bool {
	for _, v := range VerdictCategories {
		if c == v {
			return true
		}
	}
	return false
}

// IsInfoCompatible indicates the category carries a numeric truth score.
func (c Category) IsInfoCompatible() bool {
	return c == CategoryUntrue || c == CategoryMisleading || c == CategoryAccurate
}

// IsSus indicates the category warrants a user-safety response.
func (c Category) IsSus() bool {
	return c == CategoryScam || c == CategoryIllicit
}

func (c Category) IsIrrelevant() bool {
	return c == CategoryIrrelevant || c == CategoryIrrelevantAuto
}

// Submission is the canonical record for one distinct forwarded message.
// Verdict fields are written once by the consensus engine; the record is
// never deleted.
type Submission struct {
	ID                   string `gorm:"primaryKey"`
	Text                 string
	PrimaryCategory      *Category
	TruthScore           *float64
	IsAssessed           bool
	IsMachineCategorised bool
	Rationalisation      *string
	CustomReplyType      *string
	CustomReplyText      *string
	EventCount           int
	AssessedTimestamp    *time.Time
	CreatedAt            time.Time
}

// CustomReplyTextOrEmpty returns the configured custom text reply, or ""
// when no text-type custom reply is set.
func (s *Submission) CustomReplyTextOrEmpty() string {
	if s.CustomReplyType != nil && *s.CustomReplyType == "text" && s.CustomReplyText != nil {
		return *s.CustomReplyText
	}
	return ""
}

// EventState is the reply lifecycle of an event. The post-reply follow-up
// flows are tracked as independent one-shot flags, not states.
type EventState string

const (
	EventPending EventState = "pending"
	EventReplied EventState = "replied"
)

// Event is one occurrence of a user forwarding a submission.
type Event struct {
	ID           string `gorm:"primaryKey"`
	SubmissionID string `gorm:"index"`
	From         string `gorm:"index"`
	Type         string // "text" or "image"
	Text         *string
	Caption      *string
	IsMatched    bool

	State            EventState
	IsReplyForced    bool
	IsReplyImmediate bool
	ReplyCategory    *Category
	ReplyTimestamp   *time.Time

	IsInterimPromptSent          bool
	IsInterimReplySent           bool
	IsMeaningfulInterimReplySent *bool
	IsRationalisationSent        bool
	IsSatisfactionSurveySent     bool

	CreatedAt time.Time
}

func (ev *Event) IsReplied() bool {
	return ev.State == EventReplied
}

// EventFlag names the one-shot follow-up flags on an event.
type EventFlag string

const (
	FlagInterimPromptSent      EventFlag = "interim_prompt_sent"
	FlagInterimReplySent       EventFlag = "interim_reply_sent"
	FlagRationalisationSent    EventFlag = "rationalisation_sent"
	FlagSatisfactionSurveySent EventFlag = "satisfaction_survey_sent"
)

// ReplyRecord is the set of fields committed atomically when an event
// transitions from pending to replied.
type ReplyRecord struct {
	Category  Category
	Forced    bool
	Immediate bool
	Timestamp time.Time
}

// Vote is one reviewer's classification of one submission. A nil category
// means the vote has been requested but not yet cast.
type Vote struct {
	ID           string `gorm:"primaryKey"`
	SubmissionID string `gorm:"index"`
	ReviewerID   string `gorm:"index"`
	Category     *Category
	TruthScore   *float64
	// set once the finalized verdict has been scored into the reviewer's
	// rolling counters
	IsScored         bool
	CreatedTimestamp time.Time
	VotedTimestamp   *time.Time
}

// Reviewer is a member of the checking pool.
type Reviewer struct {
	ID              string `gorm:"primaryKey"`
	Name            string
	Kind            string // "human" or "ai"
	IsActive        bool
	NumVoted        int64
	NumCorrectVotes int64
	CreatedAt       time.Time
}

// User is a submitting end user on the other side of the bot.
type User struct {
	ID                         string `gorm:"primaryKey"`
	Locale                     string
	ReferralID                 string
	IsReminderMessageSent      bool
	IsReferralMessageSent      bool
	SatisfactionSurveyLastSent *time.Time
	CreatedAt                  time.Time
}

type SubmissionStore interface {
	GetSubmission(ctx context.Context, id string) (*Submission, error)
	CreateSubmission(ctx context.Context, sub *Submission) error
	// FinalizeSubmission atomically sets the verdict iff the submission is
	// not yet assessed. Returns false when another finalize won the race.
	FinalizeSubmission(ctx context.Context, id string, category Category, truthScore *float64, at time.Time) (bool, error)
}

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, ev *Event) error
	ListPendingEvents(ctx context.Context, submissionID string) ([]*Event, error)
	CountEventsBySender(ctx context.Context, submissionID, from string) (int, error)
	// MarkReplied is a compare-and-set from pending to replied. Returns
	// false when the event was already replied to.
	MarkReplied(ctx context.Context, id string, reply ReplyRecord) (bool, error)
	// SetEventFlag is a compare-and-set of a one-shot flag from false to
	// true. Returns false when the flag was already set.
	SetEventFlag(ctx context.Context, id string, flag EventFlag) (bool, error)
	SetMeaningfulInterim(ctx context.Context, id string, meaningful bool) error
}

type VoteStore interface {
	GetVote(ctx context.Context, id string) (*Vote, error)
	CreateVote(ctx context.Context, vote *Vote) error
	ListVotesBySubmission(ctx context.Context, submissionID string) ([]*Vote, error)
	// ListCastVotesByReviewerSince returns votes with a non-nil category
	// created at or after the cutoff.
	ListCastVotesByReviewerSince(ctx context.Context, reviewerID string, since time.Time) ([]*Vote, error)
	CountPendingVotesByReviewer(ctx context.Context, reviewerID string) (int, error)
	// CastVote sets category and truth score iff the vote has not been
	// cast yet; a cast vote is never silently overwritten.
	CastVote(ctx context.Context, id string, category Category, truthScore *float64, at time.Time) (bool, error)
	// MarkScored is a compare-and-set guarding the one-time rollup of this
	// vote into the reviewer's counters.
	MarkScored(ctx context.Context, id string) (bool, error)
}

type ReviewerStore interface {
	GetReviewer(ctx context.Context, id string) (*Reviewer, error)
	CreateReviewer(ctx context.Context, rev *Reviewer) error
	CountActiveReviewers(ctx context.Context) (int, error)
	// IncrementVoteStats bumps numVoted, and numCorrectVotes when accurate.
	IncrementVoteStats(ctx context.Context, id string, accurate bool) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetOrCreateUser(ctx context.Context, id string) (*User, error)
	MarkReminderSent(ctx context.Context, id string) (bool, error)
	MarkReferralSent(ctx context.Context, id string) (bool, error)
	// ClaimSatisfactionSurvey records a survey offer iff none is within the
	// cooldown window. Returns false when still cooling down.
	ClaimSatisfactionSurvey(ctx context.Context, id string, now time.Time, cooldown time.Duration) (bool, error)
}
