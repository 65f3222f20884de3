package site

import "github.com/goliatone/go-formsite/pkg/forms"

// SurveyFormName names the survey in URLs, metrics and stored responses.
const SurveyFormName = "survey"

// SurveyForm defines the public survey. Two questions are explicit Yes/No
// choices; the mail format preference is an ordinary checkbox.
func SurveyForm() *forms.Form {
	form := forms.NewForm(SurveyFormName)
	form.MustAdd("name", forms.NewCharField(forms.CharOptions{
		Options:   forms.Options{Label: "Your name", HelpText: "Optional."},
		MaxLength: 100,
	}))
	form.MustAdd("subscribe", forms.MustBooleanChoiceField(forms.BooleanChoiceConfig{
		Label:    "Would you like to subscribe to the newsletter?",
		HelpText: "We send <strong>one</strong> mail a month.",
	}))
	form.MustAdd("terms", forms.MustBooleanChoiceField(forms.BooleanChoiceConfig{
		Label:      "Do you accept the terms of use?",
		TrueLabel:  "I accept",
		FalseLabel: "I decline",
	}))
	form.MustAdd("newsletter_html", forms.NewBooleanField(forms.Options{
		Label: "Send the newsletter as HTML",
	}))
	return form
}
