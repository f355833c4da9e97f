package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-autoapply/internal/ai"
	"go-autoapply/internal/discovery"
	"go-autoapply/internal/store"
)

// stubClient scripts the two calls the filter makes.
type stubClient struct {
	scores      map[string]int
	scoreErr    error
	classified  map[string]ai.CompanyType
	classifyErr error

	classifyCalls int
}

func (s *stubClient) ClassifyCompanies(_ context.Context, companies []string) (map[string]ai.CompanyType, error) {
	s.classifyCalls++
	if s.classifyErr != nil {
		return nil, s.classifyErr
	}
	return s.classified, nil
}

func (s *stubClient) ScoreJobMatch(_ context.Context, title, _, _ string) (int, ai.CompanyType, error) {
	if s.scoreErr != nil {
		return 0, ai.CompanyUnknown, s.scoreErr
	}
	return s.scores[title], ai.CompanyUnknown, nil
}

func (s *stubClient) AnswerQuestions(context.Context, ai.QuestionSet, string) (*ai.AnswerSet, error) {
	return nil, errors.New("not used")
}

func (s *stubClient) FreeForm(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func items(titles ...string) []discovery.Item {
	out := make([]discovery.Item, 0, len(titles))
	for _, title := range titles {
		out = append(out, discovery.Item{Title: title, Company: title + " Co"})
	}
	return out
}

func TestScoreGate_KeepsAtOrAboveMinimum(t *testing.T) {
	client := &stubClient{scores: map[string]int{"a": 2, "b": 3, "c": 5}}
	prefs := store.DefaultPreferences() //MinMatchScore 3
	f := NewFilter(client, prefs, "profile")

	kept := f.Apply(context.Background(), items("a", "b", "c"))

	titles := []string{}
	for _, item := range kept {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"b", "c"}, titles)
}

func TestScoreGate_FailureYieldsNeutralScore(t *testing.T) {
	client := &stubClient{scoreErr: errors.New("transport down")}

	//neutral 3 passes a minimum of 3
	prefs := store.DefaultPreferences()
	prefs.MinMatchScore = 3
	kept := NewFilter(client, prefs, "profile").Apply(context.Background(), items("a"))
	assert.Len(t, kept, 1)

	//but fails a minimum of 4
	prefs.MinMatchScore = 4
	kept = NewFilter(client, prefs, "profile").Apply(context.Background(), items("a"))
	assert.Empty(t, kept)
}

func TestCompanyTypeGate_SkippedWhenBothCategoriesEnabled(t *testing.T) {
	client := &stubClient{scores: map[string]int{"a": 5}}
	prefs := store.DefaultPreferences()
	f := NewFilter(client, prefs, "profile")

	kept := f.Apply(context.Background(), items("a"))
	assert.Len(t, kept, 1)
	assert.Zero(t, client.classifyCalls, "no classification call when both categories pass")
}

func TestCompanyTypeGate_FiltersDisabledCategory(t *testing.T) {
	client := &stubClient{
		scores: map[string]int{"a": 5, "b": 5, "c": 5},
		classified: map[string]ai.CompanyType{
			"a Co": ai.CompanyProduct,
			"b Co": ai.CompanyService,
			"c Co": ai.CompanyUnknown,
		},
	}
	prefs := store.DefaultPreferences()
	prefs.ApplyServiceCompany = false
	f := NewFilter(client, prefs, "profile")

	kept := f.Apply(context.Background(), items("a", "b", "c"))

	//service is disabled and unknown matches neither enabled category
	assert.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].Title)
}

func TestCompanyTypeGate_FailsOpen(t *testing.T) {
	client := &stubClient{
		scores:      map[string]int{"a": 5, "b": 5},
		classifyErr: errors.New("rate limited"),
	}
	prefs := store.DefaultPreferences()
	prefs.ApplyServiceCompany = false
	f := NewFilter(client, prefs, "profile")

	kept := f.Apply(context.Background(), items("a", "b"))
	assert.Len(t, kept, 2, "classification failure must not drop items")
}

func TestDropIgnored(t *testing.T) {
	client := &stubClient{scores: map[string]int{"a": 5, "b": 5}}
	prefs := store.DefaultPreferences()
	prefs.IgnoredCompanies = []string{"b co"}
	f := NewFilter(client, prefs, "profile")

	kept := f.Apply(context.Background(), items("a", "b"))
	assert.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].Title)
}
