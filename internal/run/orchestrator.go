// Orchestrator: the top-level driver. One cooperative timeline wiring
// segment scheduling → discovery → relevance filtering → submission,
// with pause/stop observed at every suspension point and the segment
// deadline honored only at iteration boundaries, never mid-dialog.

package run

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-autoapply/internal/apply"
	"go-autoapply/internal/discovery"
	"go-autoapply/internal/errs"
	"go-autoapply/internal/relevance"
	"go-autoapply/internal/schedule"
)

const selectRetries = 3

// Collector, Relevance and Submitter are the orchestrator's views of
// its three stages.
type Collector interface {
	Collect() ([]discovery.Item, error)
}

type Relevance interface {
	Apply(ctx context.Context, items []discovery.Item) []discovery.Item
}

type Submitter interface {
	Run(ctx context.Context, item discovery.Item, location string) error
}

type quotaCounter interface {
	CountForDay(day time.Time) (int, error)
}

type Orchestrator struct {
	rc        *RunContext
	scheduler *schedule.Scheduler

	collector Collector
	filter    Relevance
	submitter Submitter
	counter   quotaCounter

	//per-run tallies for the end-of-run summary
	discovered int
	filtered   int
	submitted  int
	skipped    int

	ctx context.Context
}

func NewOrchestrator(rc *RunContext, scheduler *schedule.Scheduler) *Orchestrator {
	o := &Orchestrator{rc: rc, scheduler: scheduler}
	o.collector = discovery.NewBatcher(rc.Adapter, o.suspendVeryShort)
	o.filter = relevance.NewFilter(rc.AI, rc.Prefs, rc.Profile)
	o.submitter = apply.New(rc.Adapter, rc.AI, rc.Ledger, rc.Profile, o.suspendVeryShort)
	o.counter = rc.Ledger
	return o
}

// Run loops over segments until the iteration space is exhausted, the
// quota trips, or the user stops.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ctx = ctx

	for {
		if err := o.checkpoint(); err != nil {
			return o.finishStopped()
		}
		if o.scheduler.Cursor() == nil {
			return nil
		}

		if err := o.checkQuota(); err != nil {
			return err
		}

		//segment expiry is only ever acted on here, at the loop head
		if o.scheduler.Remaining() <= 0 {
			done, err := o.advance()
			if err != nil || done {
				return err
			}
			continue
		}

		query := o.scheduler.CurrentQuery()
		if !o.onTargetPage(query) {
			log.Printf("🌐 Navigating to segment: %q in %q", query.Keyword, query.Location)
			if err := o.rc.Adapter.Navigate(query.URL()); err != nil {
				return fmt.Errorf("failed to navigate to segment: %w", err)
			}
			o.rc.Adapter.WaitSettled(10 * time.Second)
			if err := o.waitFor(o.longDelay()); err != nil {
				return o.finishStopped()
			}
			continue
		}

		err := o.runBatch(query)
		switch {
		case errors.Is(err, errs.ErrStopped):
			return o.finishStopped()
		case err != nil:
			var nav *errs.NavigationMismatchError
			if errors.As(err, &nav) {
				//facets silently got lost; force re-entry on a fresh page
				log.Printf("🧭 %v, re-entering segment", nav)
				continue
			}
			return err
		}

		//batch exhausted: paginate within the segment, else move on
		if o.nextPage() {
			continue
		}
		done, err := o.advance()
		if err != nil || done {
			return err
		}
	}
}

func (o *Orchestrator) advance() (bool, error) {
	done, err := o.scheduler.Advance()
	if err != nil {
		return false, err
	}
	if done {
		log.Println("🏁 Full cycle completed.")
		_ = o.rc.Notifier.Status("Run finished: all segments completed. " + o.summary())
	}
	return done, nil
}

func (o *Orchestrator) summary() string {
	return fmt.Sprintf("%d discovered, %d passed filters, %d submitted, %d skipped.",
		o.discovered, o.filtered, o.submitted, o.skipped)
}

// runBatch discovers, filters, and submits the current page's items.
// Per-item failures are logged at the item boundary and never abort the
// batch.
func (o *Orchestrator) runBatch(query schedule.TargetQuery) error {
	items, err := o.collector.Collect()
	if err != nil {
		return err
	}
	o.discovered += len(items)

	items = o.filter.Apply(o.ctx, items)
	o.filtered += len(items)
	log.Printf("🎯 %d candidates after filtering", len(items))

	for _, item := range items {
		if err := o.checkpoint(); err != nil {
			return err
		}
		//deadline observed between items, not inside a dialog
		if o.scheduler.Remaining() <= 0 {
			return nil
		}
		if err := o.checkQuota(); err != nil {
			return err
		}

		//facet filters can silently drop on host-side redirects; verify
		//before every item rather than trusting stale state
		if !o.onTargetPage(query) {
			got := ""
			if u, uerr := o.rc.Adapter.CurrentURL(); uerr == nil && u != nil {
				got = u.String()
			}
			return &errs.NavigationMismatchError{Want: query.URL(), Got: got}
		}

		if err := o.selectItem(item); err != nil {
			log.Printf("⚠️ Could not select %q: %v", item.Title, err)
			o.skipped++
			continue
		}

		if err := o.submitter.Run(o.ctx, item, query.Location); err != nil {
			if errors.Is(err, errs.ErrStopped) {
				return err
			}
			log.Printf("⚠️ Skipping %q @ %q: %v", item.Title, item.Company, err)
			o.skipped++
			continue
		}

		o.submitted++
		_ = o.rc.Notifier.Applied(item.Title, item.Company)

		//short inter-item delay
		if err := o.waitFor(o.shortDelay()); err != nil {
			return err
		}
	}
	return nil
}

const (
	detailTitleSelector   = ".job-details-jobs-unified-top-card__job-title, h1"
	detailCompanySelector = ".job-details-jobs-unified-top-card__company-name, .jobs-unified-top-card__company-name"
)

// selectItem clicks the item in the results list and re-verifies the
// detail view shows the expected title and company before the protocol
// runs.
func (o *Orchestrator) selectItem(item discovery.Item) error {
	if item.Anchor == nil {
		return fmt.Errorf("item has no anchor")
	}

	for attempt := 0; attempt < selectRetries; attempt++ {
		_ = item.Anchor.ScrollIntoView()
		if err := item.Anchor.Click(); err != nil {
			if werr := o.waitFor(o.shortDelay()); werr != nil {
				return werr
			}
			continue
		}
		if err := o.waitFor(o.shortDelay()); err != nil {
			return err
		}
		if o.detailShows(item) {
			return nil
		}
	}
	return fmt.Errorf("detail view never showed %q @ %q", item.Title, item.Company)
}

func (o *Orchestrator) detailShows(item discovery.Item) bool {
	if !textShown(o.queryText(detailTitleSelector), item.Title) {
		return false
	}
	if item.Company == "" {
		return true
	}
	//the company header selector drifts more than the title's; only a
	//present, mismatching company blocks the item
	companies := o.queryText(detailCompanySelector)
	if len(companies) == 0 {
		return true
	}
	return textShown(companies, item.Company)
}

func (o *Orchestrator) queryText(selector string) []string {
	els, err := o.rc.Adapter.Query(selector)
	if err != nil {
		return nil
	}
	var texts []string
	for _, el := range els {
		if t := strings.TrimSpace(el.Text()); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func textShown(texts []string, want string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	for _, t := range texts {
		got := strings.ToLower(t)
		if strings.Contains(got, w) || strings.Contains(w, got) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) onTargetPage(query schedule.TargetQuery) bool {
	u, err := o.rc.Adapter.CurrentURL()
	if err != nil {
		return false
	}
	return query.Matches(u)
}

// checkQuota enforces the hard daily cap before any item selection.
func (o *Orchestrator) checkQuota() error {
	count, err := o.counter.CountForDay(time.Now())
	if err != nil {
		return fmt.Errorf("failed to read quota count: %w", err)
	}
	if count >= o.rc.Prefs.DailyQuota {
		msg := fmt.Sprintf("Daily quota reached (%d/%d). Stopping for today.", count, o.rc.Prefs.DailyQuota)
		log.Println("🛑 " + msg)
		_ = o.rc.Notifier.Status(msg)
		return errs.ErrQuotaExceeded
	}
	return nil
}

func (o *Orchestrator) nextPage() bool {
	for _, sel := range []string{
		"button[aria-label='View next page']",
		".artdeco-pagination__button--next:not([disabled])",
	} {
		if el, ok := o.rc.Adapter.First(sel); ok {
			if err := el.Click(); err != nil {
				return false
			}
			log.Println("📖 Moving to next results page")
			o.rc.Adapter.WaitSettled(10 * time.Second)
			_ = o.waitFor(o.longDelay())
			return true
		}
	}
	return false
}

func (o *Orchestrator) finishStopped() error {
	log.Println("⏹️ Run stopped by user.")
	_ = o.rc.Notifier.Status("Run stopped. " + o.summary())
	return o.scheduler.Stop()
}

// checkpoint is the zero-delay suspension point used at loop heads.
func (o *Orchestrator) checkpoint() error {
	return o.waitFor(0)
}

func (o *Orchestrator) suspendVeryShort() error {
	return o.waitFor(o.veryShortDelay())
}

// waitFor is the single cancelable delay primitive: every wait observes
// stop immediately and holds while paused, freezing the segment budget
// for the duration of the pause.
func (o *Orchestrator) waitFor(d time.Duration) error {
	const tick = 100 * time.Millisecond

	remaining := d
	for {
		if o.stopped() {
			return errs.ErrStopped
		}

		if o.rc.Signals.Paused() {
			if err := o.scheduler.Pause(); err != nil {
				log.Printf("⚠️ Failed to persist pause: %v", err)
			}
			for o.rc.Signals.Paused() {
				if o.stopped() {
					return errs.ErrStopped
				}
				time.Sleep(tick)
			}
			if err := o.scheduler.Unpause(); err != nil {
				log.Printf("⚠️ Failed to persist resume: %v", err)
			}
		}

		if remaining <= 0 {
			return nil
		}
		step := tick
		if remaining < step {
			step = remaining
		}
		time.Sleep(step)
		remaining -= step
	}
}

func (o *Orchestrator) stopped() bool {
	if o.rc.Signals.Stopped() {
		return true
	}
	return o.ctx != nil && o.ctx.Err() != nil
}

func (o *Orchestrator) veryShortDelay() time.Duration {
	return time.Duration(o.rc.Prefs.VeryShortDelayMs) * time.Millisecond
}

func (o *Orchestrator) shortDelay() time.Duration {
	return time.Duration(o.rc.Prefs.ShortDelayMs) * time.Millisecond
}

func (o *Orchestrator) longDelay() time.Duration {
	return time.Duration(o.rc.Prefs.LongDelayMs) * time.Millisecond
}
