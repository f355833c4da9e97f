package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-autoapply/internal/ai"
	"go-autoapply/internal/discovery"
	"go-autoapply/internal/errs"
	"go-autoapply/internal/ledger"
	"go-autoapply/internal/page"
)

func noWait() error { return nil }

type fakeRecorder struct {
	records []ledger.AppliedRecord
}

func (r *fakeRecorder) Append(rec ledger.AppliedRecord) (bool, error) {
	r.records = append(r.records, rec)
	return true, nil
}

type answerClient struct {
	answers   *ai.AnswerSet
	recorded  ai.QuestionSet
	callCount int
}

func (c *answerClient) ClassifyCompanies(context.Context, []string) (map[string]ai.CompanyType, error) {
	return nil, nil
}

func (c *answerClient) ScoreJobMatch(context.Context, string, string, string) (int, ai.CompanyType, error) {
	return 3, ai.CompanyUnknown, nil
}

func (c *answerClient) AnswerQuestions(_ context.Context, questions ai.QuestionSet, _ string) (*ai.AnswerSet, error) {
	c.callCount++
	c.recorded = questions
	return c.answers, nil
}

func (c *answerClient) FreeForm(context.Context, string) (string, error) {
	return "", nil
}

// twoPageSite scripts a detail view with an apply button opening a
// two-page submission dialog: one free-text question, then the final
// page with the submit action and a pre-checked follow toggle.
type twoPageSite struct {
	adapter *page.FakeAdapter

	dialogOpen     bool
	discardConfirm bool
	confirmation   bool

	dialog     *page.FakeElement
	input      *page.FakeElement
	applyBtn   *page.FakeElement
	dismissBtn *page.FakeElement
	confirmBtn *page.FakeElement
	upsellBtn  *page.FakeElement
	follow     *page.FakeElement

	page1 map[string][]*page.FakeElement
	page2 map[string][]*page.FakeElement
}

func newTwoPageSite() *twoPageSite {
	s := &twoPageSite{
		adapter: page.NewFakeAdapter("https://www.linkedin.com/jobs/search/?currentJobId=123"),
	}

	s.input = &page.FakeElement{Visible: true, Attrs: map[string]string{"type": "text"}}
	group := &page.FakeElement{Visible: true, Children: map[string][]*page.FakeElement{
		"label":           {page.NewFakeElement("Years of experience")},
		"input, textarea": {s.input},
	}}

	nextBtn := page.NewFakeElement("Next")
	submitBtn := page.NewFakeElement("Submit application")
	s.follow = &page.FakeElement{
		Visible: true,
		Checked: true,
		Attrs:   map[string]string{"type": "checkbox", "id": "follow-company-checkbox"},
	}
	s.follow.OnClick = func() { s.follow.Checked = !s.follow.Checked }

	s.page1 = map[string][]*page.FakeElement{
		"button":                        {nextBtn},
		".jobs-easy-apply-form-element": {group},
	}
	s.page2 = map[string][]*page.FakeElement{
		"button":                 {submitBtn},
		"input[type='checkbox']": {s.follow},
	}

	s.dialog = &page.FakeElement{Visible: true, Children: s.page1}
	nextBtn.OnClick = func() { s.dialog.Children = s.page2 }
	submitBtn.OnClick = func() {
		s.dialogOpen = false
		s.confirmation = true
	}

	s.applyBtn = page.NewFakeElement("Easy Apply")
	s.applyBtn.OnClick = func() {
		s.dialogOpen = true
		s.dialog.Children = s.page1
	}

	s.dismissBtn = page.NewFakeElement("Dismiss")
	s.dismissBtn.OnClick = func() {
		s.dialogOpen = false
		s.discardConfirm = true
	}
	s.confirmBtn = page.NewFakeElement("Discard")
	s.confirmBtn.OnClick = func() { s.discardConfirm = false }
	s.upsellBtn = page.NewFakeElement("Dismiss")
	s.upsellBtn.OnClick = func() { s.confirmation = false }

	s.adapter.QueryFunc = func(selector string) []*page.FakeElement {
		switch selector {
		case ".jobs-apply-button--top-card button":
			return []*page.FakeElement{s.applyBtn}
		case "div.jobs-easy-apply-modal":
			if s.dialogOpen {
				return []*page.FakeElement{s.dialog}
			}
		case "div[role='dialog'] button[aria-label='Dismiss']":
			if s.dialogOpen {
				return []*page.FakeElement{s.dismissBtn}
			}
		case "button[data-control-name='discard_application_confirm_btn']":
			if s.discardConfirm {
				return []*page.FakeElement{s.confirmBtn}
			}
		case "h2, h3, [role='heading']":
			if s.confirmation {
				return []*page.FakeElement{page.NewFakeElement("Application sent!")}
			}
		case "div[data-test-modal-id='post-apply-modal'] button[aria-label='Dismiss']":
			if s.confirmation {
				return []*page.FakeElement{s.upsellBtn}
			}
		}
		return nil
	}
	return s
}

func testItem() discovery.Item {
	return discovery.Item{Title: "Backend Engineer", Company: "Acme", ID: "123"}
}

func TestRun_TwoPassSubmission(t *testing.T) {
	site := newTwoPageSite()
	client := &answerClient{answers: &ai.AnswerSet{
		FreeText: map[string]string{"Years of experience": "3"},
	}}
	recorder := &fakeRecorder{}

	p := New(site.adapter, client, recorder, "profile", noWait)
	err := p.Run(context.Background(), testItem(), "Remote")
	require.NoError(t, err)

	//dry run recorded exactly the one question on page 1
	require.Equal(t, 1, client.callCount)
	assert.Equal(t, []string{"Years of experience"}, client.recorded.FreeText)
	assert.Empty(t, client.recorded.SingleChoice)
	assert.Empty(t, client.recorded.MultiChoice)

	//placeholder was discarded before the real pass
	assert.Equal(t, 1, site.dismissBtn.Clicks)
	assert.Equal(t, 1, site.confirmBtn.Clicks)

	//real run replaced the placeholder with the fetched answer
	assert.Equal(t, "3", site.input.Value)

	//follow toggle cleared before submit
	assert.False(t, site.follow.Checked)

	//exactly one ledger record, with the answers snapshotted
	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, "Backend Engineer", rec.Title)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "Remote", rec.Location)
	assert.Contains(t, rec.FormSnapshot, "Years of experience")

	//post-submit confirmation was dismissed
	assert.Equal(t, 1, site.upsellBtn.Clicks)
}

func TestRun_NoQuestionsSubmitsDirectly(t *testing.T) {
	site := newTwoPageSite()
	//single-page dialog with nothing but the submit action
	site.dialog.Children = site.page2
	site.applyBtn.OnClick = func() {
		site.dialogOpen = true
		site.dialog.Children = site.page2
	}

	client := &answerClient{}
	recorder := &fakeRecorder{}

	p := New(site.adapter, client, recorder, "profile", noWait)
	err := p.Run(context.Background(), testItem(), "Remote")
	require.NoError(t, err)

	//no discard, no answer fetch: straight to the real run
	assert.Zero(t, client.callCount)
	assert.Zero(t, site.dismissBtn.Clicks)
	require.Len(t, recorder.records, 1)
}

func TestRun_ValidationBlocksDryRun(t *testing.T) {
	site := newTwoPageSite()
	site.page1[".artdeco-inline-feedback--error"] = []*page.FakeElement{
		page.NewFakeElement("Please enter a valid answer"),
	}

	p := New(site.adapter, &answerClient{}, &fakeRecorder{}, "profile", noWait)
	err := p.Run(context.Background(), testItem(), "Remote")

	var blocked *errs.ValidationBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "dry run", blocked.Phase)
}

func TestRun_DialogNeverAppears(t *testing.T) {
	site := newTwoPageSite()
	site.applyBtn.OnClick = nil //click lands, dialog never opens

	p := New(site.adapter, &answerClient{}, &fakeRecorder{}, "profile", noWait)
	err := p.Run(context.Background(), testItem(), "Remote")

	var notFound *errs.DialogNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestOpenApply_NoApplyControlIsFatal(t *testing.T) {
	adapter := page.NewFakeAdapter("https://www.linkedin.com/jobs/search/?currentJobId=123")

	p := New(adapter, &answerClient{}, &fakeRecorder{}, "profile", noWait)
	err := p.Run(context.Background(), testItem(), "Remote")

	var notFound *errs.ControlNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "apply action", notFound.What)
}
