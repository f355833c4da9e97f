// Error taxonomy for the run loop.
// Per-item errors are caught at the item boundary; per-run errors abort
// the whole run and get surfaced to the user.

package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded aborts the entire run. User-visible.
	ErrQuotaExceeded = errors.New("daily submission quota exceeded")

	// ErrStopped is returned from cancelable waits when the user hit stop.
	ErrStopped = errors.New("run stopped by user")
)

// ConfigurationError is fatal-to-start: no cursor is created and the user
// must fix the campaign configuration.
type ConfigurationError struct {
	Campaign string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Campaign == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error in campaign %q: %s", e.Campaign, e.Reason)
}

// DialogNotFoundError is fatal-to-item: the submission dialog never showed up.
type DialogNotFoundError struct {
	Item string
}

func (e *DialogNotFoundError) Error() string {
	return fmt.Sprintf("submission dialog not found for %q", e.Item)
}

// ControlNotFoundError is fatal-to-item: a required control could not be
// located after all lookup strategies.
type ControlNotFoundError struct {
	Item string
	What string
}

func (e *ControlNotFoundError) Error() string {
	return fmt.Sprintf("control %q not found for %q", e.What, e.Item)
}

// ValidationBlockedError means the dialog showed an inline validation error.
// Fatal-to-item during the dry run, fatal to the attempt during the real run.
type ValidationBlockedError struct {
	Phase string
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("inline validation error during %s", e.Phase)
}

// AIUnavailableError is fatal-to-item when fetching answers; scoring callers
// degrade to a neutral default instead of propagating it.
type AIUnavailableError struct {
	Op  string
	Err error
}

func (e *AIUnavailableError) Error() string {
	return fmt.Sprintf("ai call %s failed: %v", e.Op, e.Err)
}

func (e *AIUnavailableError) Unwrap() error { return e.Err }

// NavigationMismatchError is recoverable: the loaded page no longer matches
// the active segment, the orchestrator must navigate back and re-enter.
type NavigationMismatchError struct {
	Want string
	Got  string
}

func (e *NavigationMismatchError) Error() string {
	return fmt.Sprintf("page mismatch: want %s, got %s", e.Want, e.Got)
}
