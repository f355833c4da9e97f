// In-memory Adapter used by unit tests across packages.
// Tests script the page either statically via Selectors or dynamically
// via QueryFunc; clicks can mutate the scripted page through OnClick.

package page

import (
	"net/url"
	"time"
)

type FakeElement struct {
	TextVal  string
	Attrs    map[string]string
	HTML     string
	Visible  bool
	Checked  bool
	TopVal   float64
	Children map[string][]*FakeElement

	//recorded interactions
	Value    string
	Selected string
	Clicks   int

	OnClick  func()
	ClickErr error
	SetErr   error
}

// NewFakeElement returns a visible element with the given text.
func NewFakeElement(text string) *FakeElement {
	return &FakeElement{TextVal: text, Visible: true, HTML: "<div>" + text + "</div>"}
}

func (e *FakeElement) Query(selector string) ([]Element, error) {
	return toElements(e.Children[selector]), nil
}

func (e *FakeElement) Text() string       { return e.TextVal }
func (e *FakeElement) Attr(n string) string {
	return e.Attrs[n]
}
func (e *FakeElement) OuterHTML() string { return e.HTML }

func (e *FakeElement) SetValue(value string) error {
	if e.SetErr != nil {
		return e.SetErr
	}
	e.Value = value
	return nil
}

func (e *FakeElement) SelectByLabel(label string) error {
	e.Selected = label
	return nil
}

func (e *FakeElement) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *FakeElement) IsVisible() bool      { return e.Visible }
func (e *FakeElement) IsChecked() bool      { return e.Checked }
func (e *FakeElement) ScrollIntoView() error { return nil }
func (e *FakeElement) Top() float64         { return e.TopVal }

type FakeAdapter struct {
	URLVal    *url.URL
	Selectors map[string][]*FakeElement

	//QueryFunc, when set, overrides Selectors entirely
	QueryFunc func(selector string) []*FakeElement

	NavigateErr error
	Navigations []string
	Scrolls     int

	//AtBottomAfter makes AtBottom report true once Scrolls reaches it;
	//zero means never at bottom
	AtBottomAfter int
}

func NewFakeAdapter(rawURL string) *FakeAdapter {
	u, _ := url.Parse(rawURL)
	return &FakeAdapter{
		URLVal:    u,
		Selectors: make(map[string][]*FakeElement),
	}
}

func (a *FakeAdapter) Query(selector string) ([]Element, error) {
	if a.QueryFunc != nil {
		return toElements(a.QueryFunc(selector)), nil
	}
	return toElements(a.Selectors[selector]), nil
}

func (a *FakeAdapter) First(selector string) (Element, bool) {
	elements, _ := a.Query(selector)
	for _, el := range elements {
		if el.IsVisible() {
			return el, true
		}
	}
	return nil, false
}

func (a *FakeAdapter) CurrentURL() (*url.URL, error) {
	return a.URLVal, nil
}

func (a *FakeAdapter) Navigate(rawURL string) error {
	if a.NavigateErr != nil {
		return a.NavigateErr
	}
	a.Navigations = append(a.Navigations, rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	a.URLVal = u
	return nil
}

func (a *FakeAdapter) ScrollBy(px int) error {
	a.Scrolls++
	return nil
}

func (a *FakeAdapter) AtBottom() bool {
	return a.AtBottomAfter > 0 && a.Scrolls >= a.AtBottomAfter
}

func (a *FakeAdapter) WaitSettled(timeout time.Duration) {}

func toElements(fakes []*FakeElement) []Element {
	elements := make([]Element, 0, len(fakes))
	for _, f := range fakes {
		elements = append(elements, f)
	}
	return elements
}
