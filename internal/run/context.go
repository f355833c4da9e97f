package run

import (
	"go-autoapply/internal/ai"
	"go-autoapply/internal/ledger"
	"go-autoapply/internal/page"
	"go-autoapply/internal/store"
)

// Notifier is how run-level events reach the user.
type Notifier interface {
	Status(message string) error
	Applied(title, company string) error
	ReportError(err error) error
}

// NopNotifier drops everything; used in tests.
type NopNotifier struct{}

func (NopNotifier) Status(string) error          { return nil }
func (NopNotifier) Applied(string, string) error { return nil }
func (NopNotifier) ReportError(error) error      { return nil }

// RunContext bundles every collaborator the orchestrator hands to its
// components. Only the orchestrator holds one; nothing reaches for
// globals.
type RunContext struct {
	Store    store.Store
	Adapter  page.Adapter
	AI       ai.Client
	Ledger   *ledger.Ledger
	Prefs    store.Preferences
	Notifier Notifier
	Signals  *Signals
	Profile  string
}
