package verdict

import (
	"context"
	"fmt"

	"github.com/bettersg/checkmate/verdict/countstore"
	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"
)

// runFollowUps fires the post-reply side effects. Each is independent,
// guarded by its own one-shot flag, and commits that flag only after its
// send succeeded, so a transport retry can still deliver a follow-up
// whose first send failed. None of them fire for irrelevant verdicts.
func (e *Engine) runFollowUps(ctx context.Context, ev *store.Event, sub *store.Submission, user *store.User, category store.Category) {
	if category.IsIrrelevant() || category == store.CategoryError {
		return
	}
	locale := user.Locale

	if !user.IsReminderMessageSent {
		// paced to respect downstream rate limits, not for ordering
		if err := e.Pacer.Wait(ctx); err != nil {
			e.Logger.Warn("pacer interrupted before reminder", "err", err, "user", user.ID)
		} else if err := e.sendText(ctx, "reminder", ev.From, e.resolve(responses.NextTime, locale)); err != nil {
			e.Logger.Error("sending reminder", "err", err, "user", user.ID)
		} else if _, err := e.Users.MarkReminderSent(ctx, user.ID); err != nil {
			e.Logger.Error("marking reminder sent", "err", err, "user", user.ID)
		}
	}

	if !user.IsReferralMessageSent {
		if err := e.sendReferralMessage(ctx, user, locale); err != nil {
			e.Logger.Error("sending referral message", "err", err, "user", user.ID)
		} else if _, err := e.Users.MarkReferralSent(ctx, user.ID); err != nil {
			e.Logger.Error("marking referral sent", "err", err, "user", user.ID)
		}
	}

	if e.randFloat() < e.Thresholds.SurveyLikelihood {
		e.offerSatisfactionSurvey(ctx, ev, user)
	}
}

func (e *Engine) sendReferralMessage(ctx context.Context, user *store.User, locale string) error {
	if user.ReferralID == "" {
		// referral code provisioning is upstream's job; absence here is a
		// data problem worth surfacing
		return fmt.Errorf("no referral code for user %s", user.ID)
	}
	text := responses.Fill(e.resolve(responses.Referral, locale), map[string]string{
		"link": "https://ref.checkmate.sg/" + user.ReferralID,
	})
	return e.sendText(ctx, "referral", user.ID, text)
}

// offerSatisfactionSurvey sends the NPS list message, gated three ways:
// the event's one-shot flag, the per-user cooldown window, and a global
// daily quota acting as a circuit breaker.
func (e *Engine) offerSatisfactionSurvey(ctx context.Context, ev *store.Event, user *store.User) {
	if ev.IsSatisfactionSurveySent {
		return
	}

	sentToday, err := e.Counters.GetCount(ctx, "sends", "survey", countstore.PeriodDay)
	if err != nil {
		e.Logger.Error("reading survey quota counter", "err", err)
		return
	}
	if sentToday >= e.Thresholds.SurveyQuotaDay {
		e.Logger.Info("survey daily quota reached, skipping offer", "user", user.ID)
		return
	}

	claimed, err := e.Users.ClaimSatisfactionSurvey(ctx, user.ID, e.now(), e.Thresholds.SurveyCooldown())
	if err != nil {
		e.Logger.Error("claiming survey cooldown", "err", err, "user", user.ID)
		return
	}
	if !claimed {
		return
	}

	locale := user.Locale
	rows := make([]sender.MenuRow, 0, 10)
	for score := 10; score >= 1; score-- {
		rows = append(rows, sender.MenuRow{
			ID:    fmt.Sprintf("satisfactionSurvey_%d_%s", score, ev.ID),
			Title: fmt.Sprintf("%d", score),
		})
	}

	if err := e.sendMenu(ctx, "survey", ev.From, e.resolve(responses.SatisfactionSurvey, locale), e.resolve(responses.NPSMenuButton, locale), rows); err != nil {
		e.Logger.Error("sending satisfaction survey", "err", err, "user", user.ID)
		return
	}
	if _, err := e.Events.SetEventFlag(ctx, ev.ID, store.FlagSatisfactionSurveySent); err != nil {
		e.Logger.Error("marking survey sent", "err", err, "event", ev.ID)
	}
}
