// Dialog scanning: locating the submission dialog, its form controls,
// and its primary action. Everything here reads the page through the
// adapter; nothing mutates except explicit fill/click calls from the
// protocol.

package apply

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-autoapply/internal/page"
)

type ControlKind int

const (
	KindText ControlKind = iota
	KindSelect
	KindSingleChoice
	KindMultiChoice
)

// Control is one visible form control group inside the dialog.
type Control struct {
	Kind    ControlKind
	Label   string
	Options []string

	//Element is the input itself for text/select kinds
	Element page.Element

	//OptionEls are the individual radio/checkbox inputs, parallel to
	//Options
	OptionEls []page.Element
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNext
	ActionSubmit
)

var dialogSelectors = []string{
	"div.jobs-easy-apply-modal",
	"div[data-test-modal][role='dialog']",
	"div[role='dialog']",
}

var groupSelectors = []string{
	".jobs-easy-apply-form-element",
	".fb-dash-form-element",
	"div[data-test-form-element]",
}

var labelSelectors = []string{
	"label",
	"legend",
	".fb-dash-form-element__label",
	"span[aria-hidden='true']",
}

var errorSelectors = []string{
	".artdeco-inline-feedback--error",
	"div[role='alert']",
	".fb-dash-form-element-error",
}

// confirmationHeaders signal a completed submission even when no Submit
// control fired last (some flows auto-advance past the final page).
var confirmationHeaders = []string{
	"application sent",
	"your application was sent",
	"applied",
}

// normalizeLabel lowercases and strips diacritics so label matching
// survives localized punctuation.
func normalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.ToLower(strings.TrimSpace(result))
}

// findDialog returns the open submission dialog, if any.
func findDialog(adapter page.Adapter) (page.Element, bool) {
	for _, sel := range dialogSelectors {
		if el, ok := adapter.First(sel); ok {
			return el, true
		}
	}
	return nil, false
}

// primaryAction classifies the dialog's visible primary action button.
func primaryAction(dialog page.Element) (page.Element, ActionKind) {
	buttons, err := dialog.Query("button")
	if err != nil {
		return nil, ActionNone
	}

	var next page.Element
	for _, b := range buttons {
		if !b.IsVisible() {
			continue
		}
		text := normalizeLabel(b.Text() + " " + b.Attr("aria-label"))
		switch {
		case strings.Contains(text, "submit"):
			return b, ActionSubmit
		case strings.Contains(text, "next"),
			strings.Contains(text, "review"),
			strings.Contains(text, "continue"):
			if next == nil {
				next = b
			}
		}
	}
	if next != nil {
		return next, ActionNext
	}
	return nil, ActionNone
}

// scanControls collects the visible form control groups of the current
// dialog page.
func scanControls(dialog page.Element) []Control {
	var groups []page.Element
	for _, sel := range groupSelectors {
		els, err := dialog.Query(sel)
		if err == nil && len(els) > 0 {
			groups = els
			break
		}
	}

	var controls []Control
	for _, group := range groups {
		if c, ok := buildControl(group); ok {
			controls = append(controls, c)
		}
	}
	return controls
}

func buildControl(group page.Element) (Control, bool) {
	label := groupLabel(group)

	if selects, err := group.Query("select"); err == nil && len(selects) > 0 {
		options := optionLabels(selects[0])
		return Control{Kind: KindSelect, Label: label, Options: options, Element: selects[0]}, label != ""
	}

	inputs, err := group.Query("input, textarea")
	if err != nil || len(inputs) == 0 {
		return Control{}, false
	}

	switch inputs[0].Attr("type") {
	case "radio":
		options, optionEls := choiceOptions(inputs)
		return Control{Kind: KindSingleChoice, Label: label, Options: options, OptionEls: optionEls}, label != ""
	case "checkbox":
		options, optionEls := choiceOptions(inputs)
		return Control{Kind: KindMultiChoice, Label: label, Options: options, OptionEls: optionEls}, label != ""
	}

	return Control{Kind: KindText, Label: label, Element: inputs[0]}, label != ""
}

func groupLabel(group page.Element) string {
	for _, sel := range labelSelectors {
		els, err := group.Query(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if text := el.Text(); text != "" {
				return text
			}
		}
	}
	return ""
}

func optionLabels(sel page.Element) []string {
	opts, err := sel.Query("option")
	if err != nil {
		return nil
	}
	var labels []string
	for _, o := range opts {
		if text := o.Text(); text != "" {
			labels = append(labels, text)
		}
	}
	return labels
}

func choiceOptions(inputs []page.Element) ([]string, []page.Element) {
	var options []string
	var optionEls []page.Element
	for _, in := range inputs {
		label := in.Attr("value")
		if label == "" {
			label = in.Attr("aria-label")
		}
		if label == "" {
			continue
		}
		options = append(options, label)
		optionEls = append(optionEls, in)
	}
	return options, optionEls
}

// validationError reports a visible inline validation message in the
// dialog.
func validationError(dialog page.Element) bool {
	for _, sel := range errorSelectors {
		els, err := dialog.Query(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if el.IsVisible() && el.Text() != "" {
				return true
			}
		}
	}
	return false
}

// confirmationShown reports a post-submission confirmation header
// anywhere on the page.
func confirmationShown(adapter page.Adapter) bool {
	els, err := adapter.Query("h2, h3, [role='heading']")
	if err != nil {
		return false
	}
	for _, el := range els {
		if !el.IsVisible() {
			continue
		}
		text := normalizeLabel(el.Text())
		for _, header := range confirmationHeaders {
			if strings.Contains(text, header) {
				return true
			}
		}
	}
	return false
}
