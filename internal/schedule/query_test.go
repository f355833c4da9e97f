package schedule

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobTypeCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Full-time", "F"},
		{"full time", "F"},
		{"Part-time", "P"},
		{"Contract", "C"},
		{"Temporary", "T"},
		{"Internship", "I"},
		{"Volunteer", "V"},
		{"", ""},
		{"Freelance gig", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, jobTypeCode(tt.name), "name=%q", tt.name)
	}
}

func TestWorkplaceCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"On-site", "1"},
		{"onsite", "1"},
		{"Remote", "2"},
		{"Hybrid", "3"},
		{"", ""},
		{"Office", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, workplaceCode(tt.name), "name=%q", tt.name)
	}
}

func TestURL_RendersAllFilters(t *testing.T) {
	q := TargetQuery{
		Keyword:        "golang developer",
		Location:       "Ho Chi Minh",
		JobTypeCode:    "F",
		WorkplaceCode:  "2",
		QuickApplyOnly: true,
	}

	u, err := url.Parse(q.URL())
	require.NoError(t, err)
	params := u.Query()

	assert.Equal(t, "golang developer", params.Get("keywords"))
	assert.Equal(t, "Ho Chi Minh", params.Get("location"))
	assert.Equal(t, "F", params.Get("f_JT"))
	assert.Equal(t, "2", params.Get("f_WT"))
	assert.Equal(t, "true", params.Get("f_AL"))
}

func TestMatches(t *testing.T) {
	q := TargetQuery{
		Keyword:        "golang developer",
		Location:       "Ho Chi Minh",
		QuickApplyOnly: true,
	}

	tests := []struct {
		name     string
		rawURL   string
		expected bool
	}{
		{
			"exact page",
			"https://www.linkedin.com/jobs/search/?keywords=golang+developer&location=Ho+Chi+Minh&f_AL=true",
			true,
		},
		{
			"diacritics and case are ignored",
			"https://www.linkedin.com/jobs/search/?keywords=Golang+Developer&location=H%E1%BB%93+Ch%C3%AD+Minh&f_AL=true",
			true,
		},
		{
			"extra advisory filters are fine",
			"https://www.linkedin.com/jobs/search/?keywords=golang+developer&location=Ho+Chi+Minh&f_AL=true&f_JT=F&f_WT=2",
			true,
		},
		{
			"wrong location is a mismatch",
			"https://www.linkedin.com/jobs/search/?keywords=golang+developer&location=Hanoi&f_AL=true",
			false,
		},
		{
			"missing location is a mismatch",
			"https://www.linkedin.com/jobs/search/?keywords=golang+developer&f_AL=true",
			false,
		},
		{
			"wrong keyword",
			"https://www.linkedin.com/jobs/search/?keywords=java&location=Ho+Chi+Minh&f_AL=true",
			false,
		},
		{
			"quick-apply filter dropped",
			"https://www.linkedin.com/jobs/search/?keywords=golang+developer&location=Ho+Chi+Minh",
			false,
		},
		{
			"wrong path",
			"https://www.linkedin.com/feed/?keywords=golang+developer&location=Ho+Chi+Minh&f_AL=true",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q.Matches(u))
		})
	}
}

func TestMatches_BlankLocationMatchesAny(t *testing.T) {
	q := TargetQuery{Keyword: "backend", QuickApplyOnly: true}
	u, err := url.Parse("https://www.linkedin.com/jobs/search/?keywords=backend&location=Berlin&f_AL=true")
	require.NoError(t, err)
	assert.True(t, q.Matches(u))
}

func TestMatches_NilURL(t *testing.T) {
	q := TargetQuery{Keyword: "backend"}
	assert.False(t, q.Matches(nil))
}
