package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-autoapply/internal/page"
)

func TestPrimaryAction_SubmitBeatsNext(t *testing.T) {
	dialog := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"button": {
			page.NewFakeElement("Next"),
			page.NewFakeElement("Submit application"),
		},
	}}

	el, kind := primaryAction(dialog)
	assert.Equal(t, ActionSubmit, kind)
	assert.Equal(t, "Submit application", el.Text())
}

func TestPrimaryAction_ReviewCountsAsNext(t *testing.T) {
	dialog := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"button": {page.NewFakeElement("Review your application")},
	}}

	_, kind := primaryAction(dialog)
	assert.Equal(t, ActionNext, kind)
}

func TestPrimaryAction_InvisibleButtonsIgnored(t *testing.T) {
	hidden := page.NewFakeElement("Submit application")
	hidden.Visible = false
	dialog := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"button": {hidden},
	}}

	_, kind := primaryAction(dialog)
	assert.Equal(t, ActionNone, kind)
}

func TestBuildControl_Kinds(t *testing.T) {
	textGroup := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"label":           {page.NewFakeElement("Years of experience")},
		"input, textarea": {{Visible: true, Attrs: map[string]string{"type": "text"}}},
	}}
	c, ok := buildControl(textGroup)
	require.True(t, ok)
	assert.Equal(t, KindText, c.Kind)
	assert.Equal(t, "Years of experience", c.Label)

	radioGroup := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"label": {page.NewFakeElement("Work permit?")},
		"input, textarea": {
			{Visible: true, Attrs: map[string]string{"type": "radio", "value": "Yes"}},
			{Visible: true, Attrs: map[string]string{"type": "radio", "value": "No"}},
		},
	}}
	c, ok = buildControl(radioGroup)
	require.True(t, ok)
	assert.Equal(t, KindSingleChoice, c.Kind)
	assert.Equal(t, []string{"Yes", "No"}, c.Options)
	assert.Len(t, c.OptionEls, 2)

	selectGroup := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"label": {page.NewFakeElement("Notice period")},
		"select": {{Visible: true, Children: map[string][]*page.FakeElement{
			"option": {page.NewFakeElement("2 weeks"), page.NewFakeElement("1 month")},
		}}},
	}}
	c, ok = buildControl(selectGroup)
	require.True(t, ok)
	assert.Equal(t, KindSelect, c.Kind)
	assert.Equal(t, []string{"2 weeks", "1 month"}, c.Options)
}

func TestBuildControl_UnlabeledGroupIsSkipped(t *testing.T) {
	group := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"input, textarea": {{Visible: true, Attrs: map[string]string{"type": "text"}}},
	}}
	_, ok := buildControl(group)
	assert.False(t, ok)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "ho chi minh", normalizeLabel("  Hồ Chí Minh "))
	assert.Equal(t, "email address", normalizeLabel("Email Address"))
}

func TestPlaceholderText(t *testing.T) {
	tests := []struct {
		label     string
		inputType string
		expected  string
	}{
		{"Email address", "text", placeholderEmail},
		{"Phone number", "text", placeholderPhone},
		{"Mobile", "text", placeholderPhone},
		{"Full name", "text", placeholderName},
		{"", "email", placeholderEmail},
		{"", "tel", placeholderPhone},
		{"Years of experience", "number", "1"},
		{"Why do you want this job?", "text", placeholderSentence},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, placeholderText(tt.label, tt.inputType), "label=%q type=%q", tt.label, tt.inputType)
	}
}

func TestPlaceholderFill_ChoicePicks(t *testing.T) {
	first := &page.FakeElement{Visible: true, Attrs: map[string]string{"type": "radio", "value": "Yes"}}
	second := &page.FakeElement{Visible: true, Attrs: map[string]string{"type": "radio", "value": "No"}}

	//single choice takes the first option
	require.NoError(t, placeholderFill(Control{
		Kind:      KindSingleChoice,
		Label:     "Work permit?",
		Options:   []string{"Yes", "No"},
		OptionEls: []page.Element{first, second},
	}))
	assert.Equal(t, 1, first.Clicks)

	//multi choice prefers the second option when one exists
	boxA := &page.FakeElement{Visible: true, Attrs: map[string]string{"type": "checkbox", "value": "A"}}
	boxB := &page.FakeElement{Visible: true, Attrs: map[string]string{"type": "checkbox", "value": "B"}}
	require.NoError(t, placeholderFill(Control{
		Kind:      KindMultiChoice,
		Label:     "Skills",
		Options:   []string{"A", "B"},
		OptionEls: []page.Element{boxA, boxB},
	}))
	assert.Zero(t, boxA.Clicks)
	assert.Equal(t, 1, boxB.Clicks)
}
