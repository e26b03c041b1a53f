package verdict

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"
)

// reportedCounterName keys the distinct counter of submissions a sender
// has had replied-to with a substantive verdict.
const reportedCounterName = "reported"

// Dispatch decides and sends the next outbound message for one
// forwarding event.
//
// The reply commit is a compare-and-set on the event's stored state,
// claimed before the send: a concurrent duplicate trigger observes the
// claim and no-ops, and a failed send is not rolled back, so from the
// caller's perspective the reply is at-most-once. Retried triggers are
// therefore always safe.
//
// forceReply replies even when the submission is not yet assessed;
// isImmediate selects the acknowledgement-timing fragment.
func (e *Engine) Dispatch(ctx context.Context, eventID string, forceReply, isImmediate bool) error {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event: %w", err)
	}
	if ev.From == "" {
		e.Logger.Warn("event has no sender, skipping", "event", eventID)
		return nil
	}
	if ev.IsReplied() {
		replySkippedCount.Inc()
		e.Logger.Debug("event already replied", "event", eventID)
		return nil
	}

	sub, err := e.Submissions.GetSubmission(ctx, ev.SubmissionID)
	if err != nil {
		// contained: log and drop, the queue retry will find the same state
		e.Logger.Error("loading parent submission", "err", err, "event", eventID, "submission", ev.SubmissionID)
		return nil
	}

	user, err := e.Users.GetOrCreateUser(ctx, ev.From)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	locale := user.Locale

	if !sub.IsAssessed && !forceReply {
		// repeatable holding notice; no flags mutated
		if err := e.sendText(ctx, "notice", ev.From, e.resolve(responses.MessageNotYetAssessed, locale)); err != nil {
			e.Logger.Error("sending under-review notice", "err", err, "event", ev.ID)
		}
		return nil
	}

	customText := sub.CustomReplyTextOrEmpty()

	var category store.Category
	switch {
	case customText != "":
		category = store.CategoryCustom
	case sub.PrimaryCategory == nil || !sub.PrimaryCategory.IsKnownVerdict():
		e.Logger.Error("unknown verdict category, no reply sent",
			"event", ev.ID, "submission", sub.ID, "category", sub.PrimaryCategory)
		if _, err := e.Events.MarkReplied(ctx, ev.ID, store.ReplyRecord{
			Category:  store.CategoryError,
			Forced:    forceReply,
			Immediate: isImmediate,
			Timestamp: e.now(),
		}); err != nil {
			return fmt.Errorf("recording errored reply: %w", err)
		}
		return nil
	default:
		category = *sub.PrimaryCategory
		if category == store.CategoryIrrelevant && sub.IsMachineCategorised {
			category = store.CategoryIrrelevantAuto
		}
	}

	claimed, err := e.Events.MarkReplied(ctx, ev.ID, store.ReplyRecord{
		Category:  category,
		Forced:    forceReply,
		Immediate: isImmediate,
		Timestamp: e.now(),
	})
	if err != nil {
		return fmt.Errorf("committing reply state: %w", err)
	}
	if !claimed {
		replySkippedCount.Inc()
		e.Logger.Info("lost reply race, skipping send", "event", ev.ID)
		return nil
	}

	var sendErr error
	switch category {
	case store.CategoryCustom:
		sendErr = e.sendText(ctx, "reply", ev.From, customText)
	case store.CategoryIrrelevantAuto:
		sendErr = e.sendMenuReply(ctx, ev, responses.IrrelevantAutoMenuPrefix, locale)
	case store.CategoryIrrelevant:
		sendErr = e.sendMenuReply(ctx, ev, responses.IrrelevantMenuPrefix, locale)
	default:
		sendErr = e.sendVerdictReply(ctx, ev, sub, category, locale, isImmediate)
	}
	if sendErr != nil {
		// claim stays committed; see at-most-once note above
		e.Logger.Error("sending reply", "err", sendErr, "event", ev.ID, "category", category)
		return nil
	}
	replyDispatchedCount.WithLabelValues(string(category)).Inc()

	if !category.IsIrrelevant() {
		// distinct counter: duplicate events from the same sender on the
		// same submission count once, regardless of retries
		if err := e.Counters.IncrementDistinct(ctx, reportedCounterName, ev.From, sub.ID); err != nil {
			e.Logger.Error("incrementing reported counter", "err", err, "user", ev.From)
		}
	}

	e.runFollowUps(ctx, ev, sub, user, category)
	return nil
}

// sendVerdictReply composes the verdict message from its four optional
// fragments and the category-specific actions, then sends it.
func (e *Engine) sendVerdictReply(ctx context.Context, ev *store.Event, sub *store.Submission, category store.Category, locale string, isImmediate bool) error {
	templateKey, ok := replyTemplateKey(category)
	if !ok {
		return fmt.Errorf("no reply template for category %s", category)
	}
	template := e.resolve(templateKey, locale)

	thanksKey := responses.ThanksDelayed
	if isImmediate {
		thanksKey = responses.ThanksImmediate
	}

	matched := ""
	if sub.EventCount >= 5 {
		matched = responses.Fill(e.resolve(responses.Matched, locale), map[string]string{
			"numberInstances": strconv.Itoa(sub.EventCount),
		})
	}

	methodologyKey := responses.MethodologyHuman
	if sub.IsMachineCategorised {
		methodologyKey = responses.MethodologyAuto
	} else if ev.IsMatched {
		methodologyKey = responses.MethodologyHumanPrevious
	}

	imageCaveat := ""
	if ev.Type == "image" && ev.Caption != nil {
		imageCaveat = e.resolve(responses.ImageCaveat, locale)
	}

	text := responses.Fill(template, map[string]string{
		"thanks":       e.resolve(thanksKey, locale),
		"matched":      matched,
		"methodology":  e.resolve(methodologyKey, locale),
		"image_caveat": imageCaveat,
	})

	var buttons []sender.Button

	validCount := 0
	if tally, err := e.TallyVotes(ctx, sub.ID); err != nil {
		e.Logger.Error("tallying votes for reply actions", "err", err, "submission", sub.ID)
	} else {
		validCount = tally.ValidCount
	}
	if !sub.IsMachineCategorised && validCount > 0 {
		buttons = append(buttons, sender.Button{
			ID:    "votingResults_" + ev.ID,
			Title: e.resolve(responses.ButtonResults, locale),
		})
	}

	if category.IsSus() {
		if sub.Rationalisation != nil && locale == responses.DefaultLocale {
			buttons = append(buttons, sender.Button{
				ID:    "rationalisation_" + ev.ID,
				Title: e.resolve(responses.ButtonRationalisation, locale),
			})
		}
		// external reporting is opt-out: consent is assumed, the button
		// declines it
		buttons = append(buttons, sender.Button{
			ID:    "scamshieldDecline_" + ev.ID,
			Title: e.resolve(responses.ButtonDeclineReport, locale),
		})
	}

	if len(buttons) > 0 {
		return e.sendButtons(ctx, "reply", ev.From, text, buttons)
	}
	return e.sendText(ctx, "reply", ev.From, text)
}

// sendMenuReply routes irrelevant verdicts to the options menu instead of
// a verdict message.
func (e *Engine) sendMenuReply(ctx context.Context, ev *store.Event, prefixKey responses.Key, locale string) error {
	text := responses.Fill(e.resolve(responses.Menu, locale), map[string]string{
		"prefix": e.resolve(prefixKey, locale),
	})
	rows := []sender.MenuRow{
		{
			ID:          "menu_check",
			Title:       e.resolve(responses.MenuTitleCheck, locale),
			Description: e.resolve(responses.MenuDescriptionCheck, locale),
		},
		{
			ID:          "menu_dispute_" + ev.ID,
			Title:       e.resolve(responses.MenuTitleDispute, locale),
			Description: e.resolve(responses.MenuDescriptionDispute, locale),
		},
		{
			ID:          "menu_help",
			Title:       e.resolve(responses.MenuTitleHelp, locale),
			Description: e.resolve(responses.MenuDescriptionHelp, locale),
		},
	}
	return e.sendMenu(ctx, "menu", ev.From, text, e.resolve(responses.MenuButton, locale), rows)
}

func replyTemplateKey(category store.Category) (responses.Key, bool) {
	switch category {
	case store.CategoryScam:
		return responses.Scam, true
	case store.CategoryIllicit:
		return responses.Illicit, true
	case store.CategorySpam:
		return responses.Spam, true
	case store.CategoryUntrue:
		return responses.Untrue, true
	case store.CategoryMisleading:
		return responses.Misleading, true
	case store.CategoryAccurate:
		return responses.Accurate, true
	case store.CategorySatire:
		return responses.Satire, true
	case store.CategoryLegitimate:
		return responses.Legitimate, true
	case store.CategoryUnsure:
		return responses.Unsure, true
	}
	return "", false
}
