package page

import (
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightAdapter binds the Adapter capability to a live playwright page.
type PlaywrightAdapter struct {
	page playwright.Page
}

func NewPlaywrightAdapter(page playwright.Page) *PlaywrightAdapter {
	return &PlaywrightAdapter{page: page}
}

func (a *PlaywrightAdapter) Query(selector string) ([]Element, error) {
	locators, err := a.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &pwElement{loc: l})
	}
	return elements, nil
}

func (a *PlaywrightAdapter) First(selector string) (Element, bool) {
	elements, err := a.Query(selector)
	if err != nil {
		return nil, false
	}
	for _, el := range elements {
		if el.IsVisible() {
			return el, true
		}
	}
	return nil, false
}

func (a *PlaywrightAdapter) CurrentURL() (*url.URL, error) {
	return url.Parse(a.page.URL())
}

func (a *PlaywrightAdapter) Navigate(rawURL string) error {
	_, err := a.page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return err
}

func (a *PlaywrightAdapter) ScrollBy(px int) error {
	_, err := a.page.Evaluate("px => window.scrollBy(0, px)", px)
	return err
}

func (a *PlaywrightAdapter) AtBottom() bool {
	result, err := a.page.Evaluate("() => window.innerHeight + window.scrollY >= document.body.scrollHeight - 2")
	if err != nil {
		return false
	}
	atBottom, _ := result.(bool)
	return atBottom
}

func (a *PlaywrightAdapter) WaitSettled(timeout time.Duration) {
	_ = a.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

type pwElement struct {
	loc playwright.Locator
}

func (e *pwElement) Query(selector string) ([]Element, error) {
	locators, err := e.loc.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &pwElement{loc: l})
	}
	return elements, nil
}

func (e *pwElement) Text() string {
	text, err := e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(2000)})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *pwElement) Attr(name string) string {
	val, err := e.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(2000)})
	if err != nil {
		return ""
	}
	return val
}

func (e *pwElement) OuterHTML() string {
	result, err := e.loc.Evaluate("el => el.outerHTML", nil)
	if err != nil {
		return ""
	}
	html, _ := result.(string)
	return html
}

func (e *pwElement) SetValue(value string) error {
	return e.loc.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(5000)})
}

func (e *pwElement) SelectByLabel(label string) error {
	_, err := e.loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{label}})
	return err
}

func (e *pwElement) Click() error {
	return e.loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)})
}

func (e *pwElement) IsVisible() bool {
	visible, err := e.loc.IsVisible()
	if err != nil {
		return false
	}
	return visible
}

func (e *pwElement) IsChecked() bool {
	checked, err := e.loc.IsChecked(playwright.LocatorIsCheckedOptions{Timeout: playwright.Float(2000)})
	if err != nil {
		return false
	}
	return checked
}

func (e *pwElement) ScrollIntoView() error {
	return e.loc.ScrollIntoViewIfNeeded()
}

func (e *pwElement) Top() float64 {
	box, err := e.loc.BoundingBox()
	if err != nil || box == nil {
		return 0
	}
	return box.Y
}
