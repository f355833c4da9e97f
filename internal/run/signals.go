package run

import "sync/atomic"

// Signals carries the user's pause/stop intent into the run loop.
// Observed only at designated suspension points: an in-flight dialog
// step always finishes before either takes effect.
type Signals struct {
	paused  atomic.Bool
	stopped atomic.Bool
}

func NewSignals() *Signals { return &Signals{} }

func (s *Signals) Pause()  { s.paused.Store(true) }
func (s *Signals) Resume() { s.paused.Store(false) }
func (s *Signals) Stop()   { s.stopped.Store(true) }

// TogglePause flips the pause state and reports the new value.
func (s *Signals) TogglePause() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Signals) Paused() bool  { return s.paused.Load() }
func (s *Signals) Stopped() bool { return s.stopped.Load() }
