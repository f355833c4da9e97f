// PageAdapter is the only coupling the run loop has to the loaded page.
// The state machines see roles, labels, and values; everything
// selector-shaped stays behind this boundary so the core logic is
// markup-agnostic and unit-testable against a fake.

package page

import (
	"net/url"
	"time"
)

// Element is a handle to one control or container on the page.
// Read accessors are best-effort: a detached or unreadable element
// yields zero values rather than an error, matching how the driver
// treats flaky dialog markup.
type Element interface {
	// Query finds descendants by selector.
	Query(selector string) ([]Element, error)

	// Text is the visible inner text, trimmed.
	Text() string

	// Attr reads an attribute value, "" when absent.
	Attr(name string) string

	// OuterHTML serializes the element. Used as a dedup key: items are
	// not mutated between probes, so equal markup means equal item.
	OuterHTML() string

	// SetValue fills a text-like control.
	SetValue(value string) error

	// SelectByLabel picks a dropdown option by its visible label.
	SelectByLabel(label string) error

	Click() error
	IsVisible() bool
	IsChecked() bool
	ScrollIntoView() error

	// Top is the element's vertical position in the viewport, used to
	// approximate display order.
	Top() float64
}

// Adapter exposes the currently loaded page.
type Adapter interface {
	Query(selector string) ([]Element, error)

	// First returns the first visible match, or false.
	First(selector string) (Element, bool)

	CurrentURL() (*url.URL, error)
	Navigate(rawURL string) error

	// ScrollBy scrolls the results surface by px vertically.
	ScrollBy(px int) error

	// AtBottom reports whether the scroll position reached the bottom
	// of the content.
	AtBottom() bool

	// WaitSettled blocks until pending DOM mutation quiets down or the
	// timeout elapses. Best-effort, never errors.
	WaitSettled(timeout time.Duration)
}
