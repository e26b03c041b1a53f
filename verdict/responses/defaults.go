package responses

// Built-in English response text. Deployments override these per locale
// via LoadFromFileJSON.
func defaultEnglish() map[Key]string {
	return map[Key]string{
		MessageNotYetAssessed: "Hello! 👋 Thanks for sending this in! Our CheckMates 🕵🏻 will review this and provide the results soon.",
		AlreadyReplied:        "We've already replied to this message, but thanks for checking in!",
		GenericError:          "Sorry, something went wrong on our end. Please try again later!",

		Scam:       "{{thanks}}⛔️⛔️ Our CheckMates {{methodology}}think this is likely a *scam*!🚫 {{matched}}We recommend you do not engage further.{{image_caveat}}",
		Illicit:    "{{thanks}}⛔️⛔️ Our CheckMates {{methodology}}think this *looks suspicious*!🚨 {{matched}}We recommend you do not engage further.{{image_caveat}}",
		Spam:       "{{thanks}}🚧🚧 Our CheckMates {{methodology}}think this is likely spam! {{matched}}It's likely harmless, but you should always make sure!{{image_caveat}}",
		Untrue:     "{{thanks}}⛔⛔ Our CheckMates {{methodology}}think it's *likely to be untrue*.❌ {{matched}}Please do not spread it further.{{image_caveat}}",
		Misleading: "{{thanks}}🚧🚧 Our CheckMates {{methodology}}think that *while some elements within could be true, it's presented in a misleading way*.⚠️ {{matched}}Please take it with a pinch of salt.{{image_caveat}}",
		Accurate:   "{{thanks}}✅✅ Our CheckMates {{methodology}}think that it's *accurate*.✅ {{matched}}{{image_caveat}}",
		Satire:     "{{thanks}}🤭 Our CheckMates {{methodology}}think this is *satire*, not meant to be taken at face value. {{matched}}{{image_caveat}}",
		Legitimate: "{{thanks}}✅✅ Our CheckMates {{methodology}}think that it's *from a legitimate source*.✅ {{matched}}{{image_caveat}}",
		Unsure:     "{{thanks}}🤷🏻‍♂️🤷🏻‍♀️ Unfortunately, our CheckMates are *unsure about this message*.😞 {{matched}}If you can, send in a version with more context, e.g. a screenshot including the sender's number.{{image_caveat}}",
		ErrorReply: "{{thanks}}Sorry, we were unable to assess this message.{{image_caveat}}",

		ThanksImmediate:          "Thanks for sending this in! ",
		ThanksDelayed:            "Thank you for waiting! ",
		Matched:                  "This message has been sent in {{numberInstances}} times. ",
		MethodologyAuto:          "used automated checks and ",
		MethodologyHuman:         "reviewed the message and ",
		MethodologyHumanPrevious: "previously reviewed a matching message and ",
		ImageCaveat:              "\n\nNote: we assess only the image itself, not the accompanying caption.",
		InfoPlaceholder:          " (Truth score: {{score}} out of 5)",

		Menu:                     "{{prefix}}What would you like to do next?",
		MenuButton:               "Options",
		MenuPrefix:               "",
		IrrelevantMenuPrefix:     "Our CheckMates reviewed this and think it's *harmless*.👌 Such messages still add to our CheckMates' workload, so do avoid sending in trivial messages. ",
		IrrelevantAutoMenuPrefix: "This message is likely *harmless*.👌 Such messages still add to our CheckMates' workload, so do avoid sending in trivial messages. ",
		MenuTitleCheck:           "Check another message",
		MenuDescriptionCheck:     "Forward in another dubious message",
		MenuTitleDispute:         "Dispute this assessment",
		MenuDescriptionDispute:   "Tell us why you think we got this one wrong",
		MenuTitleHelp:            "Get help",
		MenuDescriptionHelp:      "Learn how this service works",

		NextTime:           "Next time you receive a dubious message, just forward it in and we'll help you check it! ✅✅",
		Referral:           "Know others who would find this useful? Share your personal referral link: {{link}}",
		SatisfactionSurvey: "How likely are you to recommend us to a friend?",
		NPSMenuButton:      "Pick a score",
		HowdWeTell:         "How did we tell? 🕵🏻\n\n{{rationalisation}}",
		FeedbackThanks:     "Thank you for your feedback!",

		InterimPrompt:         "While our CheckMates are reviewing this, would you like an interim update?",
		InterimTemplate:       "So far, our CheckMates think this is {{prelim_assessment}}{{info_placeholder}}. {{%voted}}% of them have voted. We'll send the final assessment once voting concludes.",
		InterimTemplateUnsure: "Our CheckMates are still unsure about this message. {{%voted}}% of them have voted. We'll send the final assessment once voting concludes.",
		StatsTemplateTop:      "{{top}}% of our CheckMates rated this as {{category}}{{info_placeholder}}.",
		StatsTemplateSecond:   "\n{{second}}% rated this as {{category}}{{info_placeholder}}.",

		PlaceholderScam:       "a scam",
		PlaceholderSuspicious: "suspicious",
		PlaceholderSpam:       "spam",
		PlaceholderUntrue:     "untrue",
		PlaceholderMisleading: "misleading",
		PlaceholderAccurate:   "accurate",
		PlaceholderSatire:     "satire",
		PlaceholderLegitimate: "from a legitimate source",
		PlaceholderIrrelevant: "harmless",
		PlaceholderUnsure:     "unsure",

		ButtonResults:         "See voting results",
		ButtonDeclineReport:   "Don't report this",
		ButtonRationalisation: "How'd we tell?",
		ButtonGetInterim:      "Get interim update",
		ButtonAnotherUpdate:   "Get another update",
		ButtonUseful:          "Useful",
		ButtonNotUseful:       "Not useful",
	}
}
