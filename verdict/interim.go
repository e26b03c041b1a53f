package verdict

import (
	"context"
	"fmt"
	"sort"

	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"
)

// SendInterimPrompt offers the sender an interim voting update while the
// submission is still under review. One-shot per event.
func (e *Engine) SendInterimPrompt(ctx context.Context, eventID string) error {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event: %w", err)
	}
	if ev.IsInterimPromptSent {
		return nil
	}
	user, err := e.Users.GetOrCreateUser(ctx, ev.From)
	if err != nil {
		return err
	}
	buttons := []sender.Button{{
		ID:    "sendInterim_" + ev.ID,
		Title: e.resolve(responses.ButtonGetInterim, user.Locale),
	}}
	if err := e.sendButtons(ctx, "interim", ev.From, e.resolve(responses.InterimPrompt, user.Locale), buttons); err != nil {
		return err
	}
	if _, err := e.Events.SetEventFlag(ctx, ev.ID, store.FlagInterimPromptSent); err != nil {
		e.Logger.Error("marking interim prompt sent", "err", err, "event", ev.ID)
	}
	return nil
}

// SendInterimUpdate reports the provisional leading assessment and how
// much of the reviewer pool has voted. Users may request it repeatedly;
// only the flag commits are one-shot.
func (e *Engine) SendInterimUpdate(ctx context.Context, eventID string) error {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event: %w", err)
	}
	user, err := e.Users.GetOrCreateUser(ctx, ev.From)
	if err != nil {
		return err
	}
	locale := user.Locale

	if ev.IsReplied() {
		return e.sendText(ctx, "interim", ev.From, e.resolve(responses.AlreadyReplied, locale))
	}

	sub, err := e.Submissions.GetSubmission(ctx, ev.SubmissionID)
	if err != nil {
		e.Logger.Error("loading parent submission", "err", err, "event", ev.ID)
		return nil
	}
	tally, err := e.TallyVotes(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("tallying votes: %w", err)
	}
	eligible, err := e.Reviewers.CountActiveReviewers(ctx)
	if err != nil {
		return fmt.Errorf("counting reviewers: %w", err)
	}
	percentVoted := 0.0
	if eligible > 0 {
		percentVoted = float64(tally.ValidCount) / float64(eligible) * 100
	}

	leading := e.provisionalCategory(sub, tally)

	var template string
	meaningful := leading != store.CategoryUnsure
	if meaningful {
		template = e.resolve(responses.InterimTemplate, locale)
	} else {
		template = e.resolve(responses.InterimTemplateUnsure, locale)
	}

	infoLiner := ""
	if leading.IsInfoCompatible() {
		infoLiner = e.infoLiner(tally.MeanTruthScore, locale)
	}
	text := responses.Fill(template, map[string]string{
		"prelim_assessment": e.categoryDisplayName(leading, locale),
		"info_placeholder":  infoLiner,
		"%voted":            fmt.Sprintf("%.1f", percentVoted),
	})

	buttons := []sender.Button{{
		ID:    "sendInterim_" + ev.ID,
		Title: e.resolve(responses.ButtonAnotherUpdate, locale),
	}}
	if err := e.sendButtons(ctx, "interim", ev.From, text, buttons); err != nil {
		return err
	}

	// a meaningful interim survives later unsure updates; unsure only
	// records false when nothing meaningful was ever sent
	if meaningful {
		if err := e.Events.SetMeaningfulInterim(ctx, ev.ID, true); err != nil {
			e.Logger.Error("recording meaningful interim", "err", err, "event", ev.ID)
		}
	} else if ev.IsMeaningfulInterimReplySent == nil {
		if err := e.Events.SetMeaningfulInterim(ctx, ev.ID, false); err != nil {
			e.Logger.Error("recording interim state", "err", err, "event", ev.ID)
		}
	}
	if !ev.IsInterimReplySent {
		if _, err := e.Events.SetEventFlag(ctx, ev.ID, store.FlagInterimReplySent); err != nil {
			e.Logger.Error("marking interim reply sent", "err", err, "event", ev.ID)
		}
	}
	return nil
}

// SendVotingStats reports the top two category shares for an assessed or
// in-progress submission.
func (e *Engine) SendVotingStats(ctx context.Context, eventID string) error {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event: %w", err)
	}
	user, err := e.Users.GetOrCreateUser(ctx, ev.From)
	if err != nil {
		return err
	}
	locale := user.Locale

	sub, err := e.Submissions.GetSubmission(ctx, ev.SubmissionID)
	if err != nil {
		e.Logger.Error("loading parent submission", "err", err, "event", ev.ID)
		return nil
	}
	tally, err := e.TallyVotes(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("tallying votes: %w", err)
	}
	if tally.ValidCount <= 0 {
		e.Logger.Error("voting stats requested with zero votes", "event", ev.ID, "submission", sub.ID)
		return e.sendText(ctx, "stats", ev.From, e.resolve(responses.GenericError, locale))
	}

	type slice struct {
		category store.Category
		count    int
	}
	groups := []slice{
		{e.susDisplayCategory(tally), tally.SusCount()},
		{store.CategorySpam, tally.Counts[store.CategorySpam]},
		{e.infoDisplayCategory(sub, tally), tally.Counts[store.CategoryInfo]},
		{store.CategoryLegitimate, tally.Counts[store.CategoryLegitimate]},
		{store.CategorySatire, tally.Counts[store.CategorySatire]},
		{store.CategoryIrrelevant, tally.Counts[store.CategoryIrrelevant]},
		{store.CategoryUnsure, tally.Counts[store.CategoryUnsure]},
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].count > groups[j].count })

	infoLiner := e.infoLiner(tally.MeanTruthScore, locale)
	liner := func(c store.Category) string {
		if c.IsInfoCompatible() {
			return infoLiner
		}
		return ""
	}

	top := groups[0]
	text := responses.Fill(e.resolve(responses.StatsTemplateTop, locale), map[string]string{
		"top":              fmt.Sprintf("%.1f", float64(top.count)/float64(tally.ValidCount)*100),
		"category":         e.categoryDisplayName(top.category, locale),
		"info_placeholder": liner(top.category),
	})
	if second := groups[1]; second.count > 0 {
		text += responses.Fill(e.resolve(responses.StatsTemplateSecond, locale), map[string]string{
			"second":           fmt.Sprintf("%.1f", float64(second.count)/float64(tally.ValidCount)*100),
			"category":         e.categoryDisplayName(second.category, locale),
			"info_placeholder": liner(second.category),
		})
	}
	return e.sendText(ctx, "stats", ev.From, text)
}

// SendRationalisation sends the stored reasoning behind a verdict, with
// feedback buttons. One-shot per event.
func (e *Engine) SendRationalisation(ctx context.Context, eventID string) error {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("loading event: %w", err)
	}
	if ev.IsRationalisationSent {
		return nil
	}
	user, err := e.Users.GetOrCreateUser(ctx, ev.From)
	if err != nil {
		return err
	}
	locale := user.Locale

	sub, err := e.Submissions.GetSubmission(ctx, ev.SubmissionID)
	if err != nil || sub.Rationalisation == nil || sub.PrimaryCategory == nil {
		e.Logger.Error("rationalisation unavailable", "err", err, "event", ev.ID)
		return e.sendText(ctx, "rationalisation", ev.From, e.resolve(responses.GenericError, locale))
	}

	text := responses.Fill(e.resolve(responses.HowdWeTell, locale), map[string]string{
		"rationalisation": *sub.Rationalisation,
	})
	buttons := []sender.Button{
		{ID: "feedbackRationalisation_" + ev.ID + "_yes", Title: e.resolve(responses.ButtonUseful, locale)},
		{ID: "feedbackRationalisation_" + ev.ID + "_no", Title: e.resolve(responses.ButtonNotUseful, locale)},
	}
	if err := e.sendButtons(ctx, "rationalisation", ev.From, text, buttons); err != nil {
		return err
	}
	if _, err := e.Events.SetEventFlag(ctx, ev.ID, store.FlagRationalisationSent); err != nil {
		e.Logger.Error("marking rationalisation sent", "err", err, "event", ev.ID)
	}
	return nil
}

// provisionalCategory is the current leading assessment: the verdict when
// assessed, else the tally leader, else unsure.
func (e *Engine) provisionalCategory(sub *store.Submission, tally *Tally) store.Category {
	if sub.IsAssessed && sub.PrimaryCategory != nil {
		return *sub.PrimaryCategory
	}
	if tally.ValidCount == 0 {
		return store.CategoryUnsure
	}
	best := store.CategoryUnsure
	bestCount := 0
	for _, c := range []store.Category{store.CategoryScam, store.CategoryIllicit, store.CategorySpam,
		store.CategoryInfo, store.CategoryLegitimate, store.CategorySatire,
		store.CategoryIrrelevant, store.CategoryUnsure} {
		if tally.Counts[c] > bestCount {
			best = c
			bestCount = tally.Counts[c]
		}
	}
	if best == store.CategoryInfo {
		if v := infoVerdict(e.Thresholds, tally); v != nil {
			return v.Category
		}
	}
	return best
}

func (e *Engine) susDisplayCategory(tally *Tally) store.Category {
	if tally.Counts[store.CategoryIllicit] > tally.Counts[store.CategoryScam] {
		return store.CategoryIllicit
	}
	return store.CategoryScam
}

func (e *Engine) infoDisplayCategory(sub *store.Submission, tally *Tally) store.Category {
	if sub.IsAssessed && sub.PrimaryCategory != nil && sub.PrimaryCategory.IsInfoCompatible() {
		return *sub.PrimaryCategory
	}
	return infoVerdict(e.Thresholds, tally).Category
}

func (e *Engine) infoLiner(truthScore *float64, locale string) string {
	display := "NA"
	if truthScore != nil {
		display = fmt.Sprintf("%.1f", *truthScore)
	}
	return responses.Fill(e.resolve(responses.InfoPlaceholder, locale), map[string]string{
		"score": display,
	})
}

func (e *Engine) categoryDisplayName(c store.Category, locale string) string {
	var key responses.Key
	switch c {
	case store.CategoryScam:
		key = responses.PlaceholderScam
	case store.CategoryIllicit:
		key = responses.PlaceholderSuspicious
	case store.CategorySpam:
		key = responses.PlaceholderSpam
	case store.CategoryUntrue:
		key = responses.PlaceholderUntrue
	case store.CategoryMisleading:
		key = responses.PlaceholderMisleading
	case store.CategoryAccurate, store.CategoryInfo:
		key = responses.PlaceholderAccurate
	case store.CategorySatire:
		key = responses.PlaceholderSatire
	case store.CategoryLegitimate:
		key = responses.PlaceholderLegitimate
	case store.CategoryIrrelevant, store.CategoryIrrelevantAuto:
		key = responses.PlaceholderIrrelevant
	default:
		key = responses.PlaceholderUnsure
	}
	return e.resolve(key, locale)
}
