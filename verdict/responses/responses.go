// Package responses resolves outbound message text by key and locale.
// Lookup falls back to the default locale and fails with a distinct error
// on unknown keys, so a missing template is a loud, attributable failure
// rather than a silently empty message.
package responses

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const DefaultLocale = "en"

// Key names one response template.
type Key string

const (
	MessageNotYetAssessed Key = "MESSAGE_NOT_YET_ASSESSED"
	AlreadyReplied        Key = "ALREADY_REPLIED"
	GenericError          Key = "GENERIC_ERROR"

	// verdict reply templates, one per reply category
	Scam       Key = "SCAM"
	Illicit    Key = "ILLICIT"
	Spam       Key = "SPAM"
	Untrue     Key = "UNTRUE"
	Misleading Key = "MISLEADING"
	Accurate   Key = "ACCURATE"
	Satire     Key = "SATIRE"
	Legitimate Key = "LEGITIMATE"
	Unsure     Key = "UNSURE"
	ErrorReply Key = "ERROR"

	// composition fragments
	ThanksImmediate          Key = "THANKS_IMMEDIATE"
	ThanksDelayed            Key = "THANKS_DELAYED"
	Matched                  Key = "MATCHED"
	MethodologyAuto          Key = "METHODOLOGY_AUTO"
	MethodologyHuman         Key = "METHODOLOGY_HUMAN"
	MethodologyHumanPrevious Key = "METHODOLOGY_HUMAN_PREVIOUS"
	ImageCaveat              Key = "IMAGE_CAVEAT"
	InfoPlaceholder          Key = "INFO_PLACEHOLDER"

	// menus
	Menu                     Key = "MENU"
	MenuButton               Key = "MENU_BUTTON"
	MenuPrefix               Key = "MENU_PREFIX"
	IrrelevantMenuPrefix     Key = "IRRELEVANT_MENU_PREFIX"
	IrrelevantAutoMenuPrefix Key = "IRRELEVANT_AUTO_MENU_PREFIX"
	MenuTitleCheck           Key = "MENU_TITLE_CHECK"
	MenuDescriptionCheck     Key = "MENU_DESCRIPTION_CHECK"
	MenuTitleDispute         Key = "MENU_TITLE_DISPUTE"
	MenuDescriptionDispute   Key = "MENU_DESCRIPTION_DISPUTE"
	MenuTitleHelp            Key = "MENU_TITLE_HELP"
	MenuDescriptionHelp      Key = "MENU_DESCRIPTION_HELP"

	// follow-ups
	NextTime           Key = "NEXT_TIME"
	Referral           Key = "REFERRAL"
	SatisfactionSurvey Key = "SATISFACTION_SURVEY"
	NPSMenuButton      Key = "NPS_MENU_BUTTON"
	HowdWeTell         Key = "HOWD_WE_TELL"
	FeedbackThanks     Key = "FEEDBACK_THANKS"

	// interim voting updates
	InterimPrompt         Key = "INTERIM_PROMPT"
	InterimTemplate       Key = "INTERIM_TEMPLATE"
	InterimTemplateUnsure Key = "INTERIM_TEMPLATE_UNSURE"
	StatsTemplateTop      Key = "STATS_TEMPLATE_1"
	StatsTemplateSecond   Key = "STATS_TEMPLATE_2"

	// category display names for interim updates and stats
	PlaceholderScam       Key = "PLACEHOLDER_SCAM"
	PlaceholderSuspicious Key = "PLACEHOLDER_SUSPICIOUS"
	PlaceholderSpam       Key = "PLACEHOLDER_SPAM"
	PlaceholderUntrue     Key = "PLACEHOLDER_UNTRUE"
	PlaceholderMisleading Key = "PLACEHOLDER_MISLEADING"
	PlaceholderAccurate   Key = "PLACEHOLDER_ACCURATE"
	PlaceholderSatire     Key = "PLACEHOLDER_SATIRE"
	PlaceholderLegitimate Key = "PLACEHOLDER_LEGITIMATE"
	PlaceholderIrrelevant Key = "PLACEHOLDER_IRRELEVANT"
	PlaceholderUnsure     Key = "PLACEHOLDER_UNSURE"

	// action button labels
	ButtonResults         Key = "BUTTON_RESULTS"
	ButtonDeclineReport   Key = "BUTTON_DECLINE_REPORT"
	ButtonRationalisation Key = "BUTTON_RATIONALISATION"
	ButtonGetInterim      Key = "BUTTON_GET_INTERIM"
	ButtonAnotherUpdate   Key = "BUTTON_ANOTHER_UPDATE"
	ButtonUseful          Key = "BUTTON_USEFUL"
	ButtonNotUseful       Key = "BUTTON_NOT_USEFUL"
)

type UnknownKeyError struct {
	Key Key
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown response key: %s", e.Key)
}

// Resolver holds response text per locale. Safe for concurrent reads once
// constructed.
type Resolver struct {
	locales       map[string]map[Key]string
	defaultLocale string
}

func NewResolver() *Resolver {
	return &Resolver{
		locales: map[string]map[Key]string{
			DefaultLocale: defaultEnglish(),
		},
		defaultLocale: DefaultLocale,
	}
}

// LoadFromFileJSON merges response overrides from a JSON file shaped as
// {"locale": {"KEY": "text"}}.
func (r *Resolver) LoadFromFileJSON(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var overrides map[string]map[Key]string
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return err
	}

	for locale, texts := range overrides {
		m, ok := r.locales[locale]
		if !ok {
			m = make(map[Key]string, len(texts))
			r.locales[locale] = m
		}
		for k, v := range texts {
			m[k] = v
		}
	}
	return nil
}

// Resolve returns the text for key in the given locale, falling back to
// the default locale. An unknown key yields an UnknownKeyError.
func (r *Resolver) Resolve(key Key, locale string) (string, error) {
	if m, ok := r.locales[locale]; ok {
		if text, ok := m[key]; ok {
			return text, nil
		}
	}
	if text, ok := r.locales[r.defaultLocale][key]; ok {
		return text, nil
	}
	return "", &UnknownKeyError{Key: key}
}

// Fill substitutes {{name}} placeholders in a template. Optional
// fragments are dropped by passing an empty replacement.
func Fill(template string, subs map[string]string) string {
	out := template
	for name, val := range subs {
		out = strings.ReplaceAll(out, "{{"+name+"}}", val)
	}
	return out
}
