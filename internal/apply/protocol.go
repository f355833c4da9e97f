// SubmissionProtocol: the two-pass dialog driver.
//
//	Idle → DryRun → (questions? Discard → FetchAnswers → Reopen → RealRun
//	                            : RealRun) → Closed
//
// The dry run placeholder-fills every page purely to enumerate the
// dialog's questions; the real run fills the reopened dialog with
// AI-resolved answers and submits. Transitions are driven by polling the
// dialog's visible primary action.

package apply

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"go-autoapply/internal/ai"
	"go-autoapply/internal/discovery"
	"go-autoapply/internal/errs"
	"go-autoapply/internal/ledger"
	"go-autoapply/internal/page"
)

const (
	dryRunMaxPages    = 50
	realRunMaxPages   = 100
	maxConfirmDismiss = 20
	sweepInterval     = 2 * time.Second
)

// Recorder is the slice of the ledger the protocol needs.
type Recorder interface {
	Append(rec ledger.AppliedRecord) (bool, error)
}

type Protocol struct {
	adapter  page.Adapter
	client   ai.Client
	recorder Recorder
	profile  string

	//wait is the injected cancelable delay point
	wait func() error
}

func New(adapter page.Adapter, client ai.Client, recorder Recorder, profile string, wait func() error) *Protocol {
	return &Protocol{
		adapter:  adapter,
		client:   client,
		recorder: recorder,
		profile:  profile,
		wait:     wait,
	}
}

// Run drives one item through both passes. The returned error is always
// fatal-to-item only; the caller logs it and moves to the next item.
func (p *Protocol) Run(ctx context.Context, item discovery.Item, location string) error {
	if err := p.openApply(item); err != nil {
		return err
	}

	questions, err := p.dryRun(ctx, item)
	if err != nil {
		return err
	}

	//No questions anywhere in the dialog: the placeholder pass touched
	//nothing worth replacing, so submit directly. Discard, answer
	//fetching, and reopen are all skipped.
	if questions.Empty() {
		log.Printf("📨 No questions found, submitting directly: %s", item.Title)
		return p.realRun(ctx, item, location, &ai.AnswerSet{})
	}

	log.Printf("❓ Recorded %d free-text, %d single-choice, %d multi-choice questions",
		len(questions.FreeText), len(questions.SingleChoice), len(questions.MultiChoice))

	p.discard()

	answers, err := p.client.AnswerQuestions(ctx, questions, p.profile)
	if err != nil {
		//no answers means abort; placeholders are never resubmitted
		return err
	}

	//discarding may have navigated away; reopen is the same strategy
	//cascade as the initial open, preceded by a page identity check
	if err := p.openApply(item); err != nil {
		return err
	}

	return p.realRun(ctx, item, location, answers)
}

// dryRun pages through the dialog, recording every control's question
// and filling it with placeholder data to satisfy validation. It stops
// the moment a Submit action is visible: the final confirmation page is
// never placeholder-filled or recorded.
func (p *Protocol) dryRun(ctx context.Context, item discovery.Item) (ai.QuestionSet, error) {
	var questions ai.QuestionSet
	recorded := make(map[string]bool)

	sawDialog := false
	for i := 0; i < dryRunMaxPages; i++ {
		if err := p.wait(); err != nil {
			return questions, err
		}
		p.dismissInterstitials()

		dialog, ok := findDialog(p.adapter)
		if !ok {
			//dialog still opening: keep polling. Gone after having
			//been seen: something closed it under us.
			if sawDialog {
				return questions, &errs.DialogNotFoundError{Item: item.Title}
			}
			continue
		}
		sawDialog = true

		if validationError(dialog) {
			return questions, &errs.ValidationBlockedError{Phase: "dry run"}
		}

		action, kind := primaryAction(dialog)
		if kind == ActionSubmit {
			return questions, nil
		}

		for _, c := range scanControls(dialog) {
			p.recordQuestion(&questions, recorded, c)
			if err := placeholderFill(c); err != nil {
				log.Printf("⚠️ Placeholder fill failed for %q: %v", c.Label, err)
			}
		}

		if kind == ActionNext {
			if err := action.Click(); err != nil {
				return questions, &errs.ControlNotFoundError{Item: item.Title, What: "next action"}
			}
		}
		//ActionNone: dialog still rendering, poll again
	}

	if !sawDialog {
		return questions, &errs.DialogNotFoundError{Item: item.Title}
	}
	return questions, fmt.Errorf("dry run did not reach the final page within %d iterations", dryRunMaxPages)
}

func (p *Protocol) recordQuestion(questions *ai.QuestionSet, recorded map[string]bool, c Control) {
	key := fmt.Sprintf("%d|%s", c.Kind, normalizeLabel(c.Label))
	if recorded[key] {
		return
	}
	recorded[key] = true

	switch c.Kind {
	case KindText:
		questions.FreeText = append(questions.FreeText, c.Label)
	case KindSelect, KindSingleChoice:
		questions.SingleChoice = append(questions.SingleChoice, ai.ChoiceQuestion{Question: c.Label, Options: c.Options})
	case KindMultiChoice:
		questions.MultiChoice = append(questions.MultiChoice, ai.ChoiceQuestion{Question: c.Label, Options: c.Options})
	}
}

var closeSelectors = []string{
	"div[role='dialog'] button[aria-label='Dismiss']",
	"div[role='dialog'] button.artdeco-modal__dismiss",
}

var discardConfirmSelectors = []string{
	"button[data-control-name='discard_application_confirm_btn']",
	"button[data-test-dialog-secondary-btn]",
}

// discard dismisses the placeholder-filled application: close control,
// then the discard confirmation. Absence of either is tolerated: the
// dialog may have auto-closed.
func (p *Protocol) discard() {
	if el, ok := firstOf(p.adapter, closeSelectors); ok {
		_ = el.Click()
	}
	_ = p.wait()

	if el, ok := firstOf(p.adapter, discardConfirmSelectors); ok {
		_ = el.Click()
		return
	}
	if el, ok := buttonByText(p.adapter, "discard"); ok {
		_ = el.Click()
	}
}

// openApply locates and clicks the item's apply action. The page is
// re-verified first and the item re-selected from the list when the
// detail view no longer shows it. Four lookup strategies of increasing
// breadth; exhausting them is fatal for the item.
func (p *Protocol) openApply(item discovery.Item) error {
	if !p.showingItem(item) {
		log.Printf("↩️ Page left item %q, re-selecting from list", item.Title)
		if item.Anchor != nil {
			_ = item.Anchor.ScrollIntoView()
			_ = item.Anchor.Click()
			_ = p.wait()
		}
	}

	strategies := []func() (page.Element, bool){
		//scoped container search
		func() (page.Element, bool) {
			return firstOf(p.adapter, []string{
				".jobs-apply-button--top-card button",
				".jobs-s-apply button",
			})
		},
		//global search excluding filter-like controls
		func() (page.Element, bool) {
			els, err := p.adapter.Query("button.jobs-apply-button")
			if err != nil {
				return nil, false
			}
			for _, el := range els {
				if !el.IsVisible() {
					continue
				}
				if strings.Contains(normalizeLabel(el.Attr("aria-label")), "filter") {
					continue
				}
				return el, true
			}
			return nil, false
		},
		//search by the stable per-item identifier attribute
		func() (page.Element, bool) {
			if item.ID == "" {
				return nil, false
			}
			return p.adapter.First(fmt.Sprintf("[data-job-id='%s'] button, [data-occludable-job-id='%s'] button", item.ID, item.ID))
		},
		//last resort: any visible apply button, no exclusions
		func() (page.Element, bool) {
			return buttonByText(p.adapter, "apply")
		},
	}

	for _, strategy := range strategies {
		if el, ok := strategy(); ok {
			if err := el.Click(); err != nil {
				continue
			}
			_ = p.wait()
			return nil
		}
	}

	return &errs.ControlNotFoundError{Item: item.Title, What: "apply action"}
}

// showingItem checks whether the detail view still belongs to the item,
// by path identifier or by title containment. The full title/company
// check already ran at selection time; this is the cheaper in-protocol
// recheck.
func (p *Protocol) showingItem(item discovery.Item) bool {
	if item.ID != "" {
		if u, err := p.adapter.CurrentURL(); err == nil && u != nil {
			if strings.Contains(u.Path, item.ID) || strings.Contains(u.RawQuery, item.ID) {
				return true
			}
		}
	}

	els, err := p.adapter.Query(".job-details-jobs-unified-top-card__job-title, h1")
	if err != nil {
		return false
	}
	want := normalizeLabel(item.Title)
	for _, el := range els {
		got := normalizeLabel(el.Text())
		if got == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return true
		}
	}
	return false
}

// realRun pages through the reopened dialog filling the fetched answers
// and submits. A validation error after a Next click is fatal here: the
// AI answers are treated as final and the protocol does not re-enter
// Discard.
func (p *Protocol) realRun(ctx context.Context, item discovery.Item, location string, answers *ai.AnswerSet) error {
	stopSweep := p.startSweep()
	defer stopSweep()

	sawDialog := false
	for i := 0; i < realRunMaxPages; i++ {
		if err := p.wait(); err != nil {
			return err
		}
		p.dismissInterstitials()

		//some flows auto-advance past the last page; the confirmation
		//header alone signals success
		if confirmationShown(p.adapter) {
			p.record(item, location, answers)
			p.dismissConfirmations()
			return nil
		}

		dialog, ok := findDialog(p.adapter)
		if !ok {
			if sawDialog {
				return &errs.DialogNotFoundError{Item: item.Title}
			}
			continue
		}
		sawDialog = true

		if validationError(dialog) {
			return &errs.ValidationBlockedError{Phase: "real run"}
		}

		for _, c := range scanControls(dialog) {
			p.fillAnswer(c, answers)
		}

		action, kind := primaryAction(dialog)
		switch kind {
		case ActionSubmit:
			p.uncheckFollow(dialog)
			if err := action.Click(); err != nil {
				return &errs.ControlNotFoundError{Item: item.Title, What: "submit action"}
			}
			p.record(item, location, answers)
			p.dismissConfirmations()
			return nil
		case ActionNext:
			if err := action.Click(); err != nil {
				return &errs.ControlNotFoundError{Item: item.Title, What: "next action"}
			}
		}
	}

	if !sawDialog {
		return &errs.DialogNotFoundError{Item: item.Title}
	}
	return fmt.Errorf("real run exceeded %d iterations", realRunMaxPages)
}

// fillAnswer matches a control's recorded label against the answer set:
// exact first, then substring containment, case-insensitive, either
// direction. Controls without a matching answer fall back to
// placeholder data so validation stays satisfied.
func (p *Protocol) fillAnswer(c Control, answers *ai.AnswerSet) {
	switch c.Kind {
	case KindText:
		if answer, ok := matchAnswer(answers.FreeText, c.Label); ok {
			if err := c.Element.SetValue(answer); err != nil {
				log.Printf("⚠️ Failed to fill %q: %v", c.Label, err)
			}
			return
		}

	case KindSelect:
		if answer, ok := matchAnswer(answers.SingleChoice, c.Label); ok {
			if opt, found := matchOption(c.Options, answer); found {
				_ = c.Element.SelectByLabel(opt)
				return
			}
		}

	case KindSingleChoice:
		if answer, ok := matchAnswer(answers.SingleChoice, c.Label); ok {
			for i, opt := range c.Options {
				if labelsMatch(opt, answer) {
					_ = c.OptionEls[i].Click()
					return
				}
			}
		}

	case KindMultiChoice:
		if picks, ok := matchAnswerList(answers.MultiChoice, c.Label); ok {
			for i, opt := range c.Options {
				for _, pick := range picks {
					if labelsMatch(opt, pick) && !c.OptionEls[i].IsChecked() {
						_ = c.OptionEls[i].Click()
					}
				}
			}
			return
		}
	}

	if err := placeholderFill(c); err != nil {
		log.Printf("⚠️ Fallback fill failed for %q: %v", c.Label, err)
	}
}

// uncheckFollow clears the default "follow organization" toggle before
// submitting.
func (p *Protocol) uncheckFollow(dialog page.Element) {
	els, err := dialog.Query("input[type='checkbox']")
	if err != nil {
		return
	}
	for _, el := range els {
		id := normalizeLabel(el.Attr("id") + " " + el.Attr("aria-label") + " " + el.Attr("value"))
		if strings.Contains(id, "follow") && el.IsChecked() {
			_ = el.Click()
		}
	}
}

// record appends the submission to the durable ledger, de-duplicated by
// (title, company) within the day.
func (p *Protocol) record(item discovery.Item, location string, answers *ai.AnswerSet) {
	snapshot, _ := json.Marshal(answers)
	written, err := p.recorder.Append(ledger.AppliedRecord{
		Title:        item.Title,
		Company:      item.Company,
		Location:     location,
		SubmittedAt:  time.Now(),
		FormSnapshot: string(snapshot),
	})
	if err != nil {
		log.Printf("⚠️ Failed to record application: %v", err)
		return
	}
	if !written {
		log.Printf("ℹ️ Already recorded today: %s @ %s", item.Title, item.Company)
		return
	}
	log.Printf("🎉 Applied: %s @ %s", item.Title, item.Company)
}

var interstitialDismissSelectors = []string{
	"div[data-test-modal-id='pre-apply-safety-reminder'] button",
	".job-trust-pre-apply-safety-reminder button",
	"div[data-test-modal-id='easy-apply-save-confirmation'] button[aria-label='Dismiss']",
}

// dismissInterstitials proactively clears the safety reminder and the
// save-application confirmation on every iteration, regardless of state.
func (p *Protocol) dismissInterstitials() {
	for _, sel := range interstitialDismissSelectors {
		if el, ok := p.adapter.First(sel); ok {
			_ = el.Click()
		}
	}
}

var upsellDismissSelectors = []string{
	"div[data-test-modal-id='post-apply-modal'] button[aria-label='Dismiss']",
	".artdeco-modal__dismiss",
	"div[role='dialog'] button[aria-label='Dismiss']",
}

// dismissConfirmations clears post-submission confirmation and upsell
// dialogs, bounded so a sticky modal cannot trap the loop.
func (p *Protocol) dismissConfirmations() {
	for i := 0; i < maxConfirmDismiss; i++ {
		el, ok := firstOf(p.adapter, upsellDismissSelectors)
		if !ok {
			return
		}
		if err := el.Click(); err != nil {
			return
		}
		if err := p.wait(); err != nil {
			return
		}
	}
}

// startSweep runs the upsell dismissal in the background for the
// duration of the real run: confirmation dialogs can appear
// asynchronously after the main loop has moved on.
func (p *Protocol) startSweep() (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if el, ok := firstOf(p.adapter, upsellDismissSelectors); ok {
					_ = el.Click()
				}
			}
		}
	}()
	return func() { close(done) }
}

func firstOf(adapter page.Adapter, selectors []string) (page.Element, bool) {
	for _, sel := range selectors {
		if el, ok := adapter.First(sel); ok {
			return el, true
		}
	}
	return nil, false
}

// buttonByText finds a visible button whose text contains the given
// needle, case-insensitively.
func buttonByText(adapter page.Adapter, needle string) (page.Element, bool) {
	els, err := adapter.Query("button")
	if err != nil {
		return nil, false
	}
	for _, el := range els {
		if el.IsVisible() && strings.Contains(normalizeLabel(el.Text()), needle) {
			return el, true
		}
	}
	return nil, false
}

func matchAnswer(m map[string]string, label string) (string, bool) {
	if m == nil {
		return "", false
	}
	want := normalizeLabel(label)
	if answer, ok := m[label]; ok {
		return answer, true
	}
	for question, answer := range m {
		if labelsMatchNormalized(normalizeLabel(question), want) {
			return answer, true
		}
	}
	return "", false
}

func matchAnswerList(m map[string][]string, label string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	want := normalizeLabel(label)
	if answer, ok := m[label]; ok {
		return answer, true
	}
	for question, answer := range m {
		if labelsMatchNormalized(normalizeLabel(question), want) {
			return answer, true
		}
	}
	return nil, false
}

func matchOption(options []string, answer string) (string, bool) {
	for _, opt := range options {
		if labelsMatch(opt, answer) {
			return opt, true
		}
	}
	return "", false
}

func labelsMatch(a, b string) bool {
	return labelsMatchNormalized(normalizeLabel(a), normalizeLabel(b))
}

func labelsMatchNormalized(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
