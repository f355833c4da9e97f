// Placeholder values for the dry run. They only exist to satisfy form
// validation long enough to page through the dialog and record its
// questions; the filled application is discarded afterwards.

package apply

import "strings"

const (
	placeholderName     = "John Doe"
	placeholderEmail    = "john.doe@example.com"
	placeholderPhone    = "5551234567"
	placeholderSentence = "I am a motivated candidate and happy to provide more detail on request."
)

// placeholderText picks a value for a free-text control by heuristic
// label matching, falling back to the input type.
func placeholderText(label, inputType string) string {
	l := normalizeLabel(label)
	switch {
	case strings.Contains(l, "email"):
		return placeholderEmail
	case strings.Contains(l, "phone") || strings.Contains(l, "mobile"):
		return placeholderPhone
	case strings.Contains(l, "name"):
		return placeholderName
	}

	switch inputType {
	case "email":
		return placeholderEmail
	case "tel":
		return placeholderPhone
	case "number":
		return "1"
	}
	return placeholderSentence
}

// placeholderFill fills one control with placeholder data.
// Unrecognized single-choice takes the first option; multi-choice and
// selects take the second when one exists.
func placeholderFill(c Control) error {
	switch c.Kind {
	case KindText:
		return c.Element.SetValue(placeholderText(c.Label, c.Element.Attr("type")))

	case KindSelect:
		if len(c.Options) == 0 {
			return nil
		}
		pick := c.Options[0]
		if len(c.Options) > 1 {
			pick = c.Options[1]
		}
		return c.Element.SelectByLabel(pick)

	case KindSingleChoice:
		if len(c.OptionEls) == 0 {
			return nil
		}
		return c.OptionEls[0].Click()

	case KindMultiChoice:
		if len(c.OptionEls) == 0 {
			return nil
		}
		pick := c.OptionEls[0]
		if len(c.OptionEls) > 1 {
			pick = c.OptionEls[1]
		}
		return pick.Click()
	}
	return nil
}
