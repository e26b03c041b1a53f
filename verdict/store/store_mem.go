package store

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory implementation of all the repository
// interfaces, used in tests and for local development. All compare-and-set
// operations hold the store mutex, so the idempotency guards behave the
// same way they do against a real database.
type MemStore struct {
	mu          sync.Mutex
	submissions map[string]*Submission
	events      map[string]*Event
	votes       map[string]*Vote
	reviewers   map[string]*Reviewer
	users       map[string]*User
}

func NewMemStore() *MemStore {
	return &MemStore{
		submissions: make(map[string]*Submission),
		events:      make(map[string]*Event),
		votes:       make(map[string]*Vote),
		reviewers:   make(map[string]*Reviewer),
		users:       make(map[string]*User),
	}
}

func copySubmission(s *Submission) *Submission {
	out := *s
	return &out
}

func copyEvent(ev *Event) *Event {
	out := *ev
	return &out
}

func copyVote(v *Vote) *Vote {
	out := *v
	return &out
}

func (s *MemStore) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySubmission(sub), nil
}

func (s *MemStore) CreateSubmission(ctx context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	s.submissions[sub.ID] = copySubmission(sub)
	return nil
}

func (s *MemStore) FinalizeSubmission(ctx context.Context, id string, category Category, truthScore *float64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return false, ErrNotFound
	}
	if sub.IsAssessed {
		return false, nil
	}
	sub.IsAssessed = true
	sub.PrimaryCategory = &category
	sub.TruthScore = truthScore
	ts := at
	sub.AssessedTimestamp = &ts
	return true, nil
}

func (s *MemStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEvent(ev), nil
}

func (s *MemStore) CreateEvent(ctx context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.State == "" {
		ev.State = EventPending
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	s.events[ev.ID] = copyEvent(ev)
	if sub, ok := s.submissions[ev.SubmissionID]; ok {
		sub.EventCount++
	}
	return nil
}

func (s *MemStore) ListPendingEvents(ctx context.Context, submissionID string) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Event
	for _, ev := range s.events {
		if ev.SubmissionID == submissionID && ev.State == EventPending {
			out = append(out, copyEvent(ev))
		}
	}
	return out, nil
}

func (s *MemStore) CountEventsBySender(ctx context.Context, submissionID, from string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, ev := range s.events {
		if ev.SubmissionID == submissionID && ev.From == from {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) MarkReplied(ctx context.Context, id string, reply ReplyRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return false, ErrNotFound
	}
	if ev.State != EventPending {
		return false, nil
	}
	ev.State = EventReplied
	cat := reply.Category
	ev.ReplyCategory = &cat
	ev.IsReplyForced = reply.Forced
	ev.IsReplyImmediate = reply.Immediate
	ts := reply.Timestamp
	ev.ReplyTimestamp = &ts
	return true, nil
}

func (s *MemStore) SetEventFlag(ctx context.Context, id string, flag EventFlag) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return false, ErrNotFound
	}
	var field *bool
	switch flag {
	case FlagInterimPromptSent:
		field = &ev.IsInterimPromptSent
	case FlagInterimReplySent:
		field = &ev.IsInterimReplySent
	case FlagRationalisationSent:
		field = &ev.IsRationalisationSent
	case FlagSatisfactionSurveySent:
		field = &ev.IsSatisfactionSurveySent
	default:
		return false, ErrNotFound
	}
	if *field {
		return false, nil
	}
	*field = true
	return true, nil
}

func (s *MemStore) SetMeaningfulInterim(ctx context.Context, id string, meaningful bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.IsMeaningfulInterimReplySent = &meaningful
	return nil
}

func (s *MemStore) GetVote(ctx context.Context, id string) (*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyVote(v), nil
}

func (s *MemStore) CreateVote(ctx context.Context, vote *Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vote.CreatedTimestamp.IsZero() {
		vote.CreatedTimestamp = time.Now()
	}
	s.votes[vote.ID] = copyVote(vote)
	return nil
}

func (s *MemStore) ListVotesBySubmission(ctx context.Context, submissionID string) ([]*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Vote
	for _, v := range s.votes {
		if v.SubmissionID == submissionID {
			out = append(out, copyVote(v))
		}
	}
	return out, nil
}

func (s *MemStore) ListCastVotesByReviewerSince(ctx context.Context, reviewerID string, since time.Time) ([]*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Vote
	for _, v := range s.votes {
		if v.ReviewerID == reviewerID && v.Category != nil && !v.CreatedTimestamp.Before(since) {
			out = append(out, copyVote(v))
		}
	}
	return out, nil
}

func (s *MemStore) CountPendingVotesByReviewer(ctx context.Context, reviewerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, v := range s.votes {
		if v.ReviewerID == reviewerID && v.Category == nil {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) CastVote(ctx context.Context, id string, category Category, truthScore *float64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[id]
	if !ok {
		return false, ErrNotFound
	}
	if v.Category != nil {
		return false, nil
	}
	cat := category
	v.Category = &cat
	v.TruthScore = truthScore
	ts := at
	v.VotedTimestamp = &ts
	return true, nil
}

func (s *MemStore) MarkScored(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[id]
	if !ok {
		return false, ErrNotFound
	}
	if v.IsScored {
		return false, nil
	}
	v.IsScored = true
	return true, nil
}

func (s *MemStore) GetReviewer(ctx context.Context, id string) (*Reviewer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev, ok := s.reviewers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rev
	return &out, nil
}

func (s *MemStore) CreateReviewer(ctx context.Context, rev *Reviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	out := *rev
	s.reviewers[rev.ID] = &out
	return nil
}

func (s *MemStore) CountActiveReviewers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rev := range s.reviewers {
		if rev.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) IncrementVoteStats(ctx context.Context, id string, accurate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev, ok := s.reviewers[id]
	if !ok {
		return ErrNotFound
	}
	rev.NumVoted++
	if accurate {
		rev.NumCorrectVotes++
	}
	return nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// PutUser inserts or replaces a user record. Seeding hook for tests and
// local development; upstream onboarding owns user provisioning in
// production.
func (s *MemStore) PutUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.users[u.ID] = &cp
}

func (s *MemStore) GetOrCreateUser(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		u = &User{ID: id, Locale: "en", CreatedAt: time.Now()}
		s.users[id] = u
	}
	out := *u
	return &out, nil
}

func (s *MemStore) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if u.IsReminderMessageSent {
		return false, nil
	}
	u.IsReminderMessageSent = true
	return true, nil
}

func (s *MemStore) MarkReferralSent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if u.IsReferralMessageSent {
		return false, nil
	}
	u.IsReferralMessageSent = true
	return true, nil
}

func (s *MemStore) ClaimSatisfactionSurvey(ctx context.Context, id string, now time.Time, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, ErrNotFound
	}
	if u.SatisfactionSurveyLastSent != nil && now.Sub(*u.SatisfactionSurveyLastSent) < cooldown {
		return false, nil
	}
	ts := now
	u.SatisfactionSurveyLastSent = &ts
	return true, nil
}
