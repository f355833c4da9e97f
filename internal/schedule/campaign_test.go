package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_LocationTimersPropagate(t *testing.T) {
	cfg := CampaignConfig{
		Title: "golang developer",
		Locations: []Facet{
			{Name: "Can Tho", TimerMinutes: "10"},
			{Name: "Ho Chi Minh", TimerMinutes: "5"},
		},
		JobTypes: []Facet{
			{Name: "Full-time"},
			{Name: "Contract"},
		},
		WorkplaceTypes: []Facet{
			{Name: "Remote"},
		},
	}

	eff := Resolve(cfg)

	//every JobType inherits the sum of location timers
	assert.Len(t, eff.JobTypes, 2)
	for _, jt := range eff.JobTypes {
		assert.Equal(t, 15.0, jt.Minutes)
	}

	//WorkplaceTypes fall back to the location sum because the job types
	//carried no timers of their own
	assert.Len(t, eff.WorkplaceTypes, 1)
	assert.Equal(t, 15.0, eff.WorkplaceTypes[0].Minutes)

	assert.Equal(t, 15.0, eff.Minutes)
}

func TestResolve_OnlyLocationsConfigured(t *testing.T) {
	cfg := CampaignConfig{
		Title: "backend",
		Locations: []Facet{
			{Name: "Remote", TimerMinutes: "7"},
			{Name: "Hanoi", TimerMinutes: "3"},
		},
	}

	eff := Resolve(cfg)

	assert.Equal(t, 10.0, eff.Minutes)
	assert.Empty(t, eff.JobTypes)
	assert.Empty(t, eff.WorkplaceTypes)
	assert.Equal(t, 7.0, eff.Locations[0].Minutes)
	assert.Equal(t, 3.0, eff.Locations[1].Minutes)
}

func TestResolve_JobTypeTimersFeedWorkplaceTypes(t *testing.T) {
	cfg := CampaignConfig{
		Title: "devops",
		JobTypes: []Facet{
			{Name: "Full-time", TimerMinutes: "8"},
			{Name: "Part-time", TimerMinutes: "4"},
		},
		WorkplaceTypes: []Facet{
			{Name: "Hybrid"},
			{Name: "Remote"},
		},
	}

	eff := Resolve(cfg)

	//no locations: job types keep their own timers
	assert.Equal(t, 8.0, eff.JobTypes[0].Minutes)
	assert.Equal(t, 4.0, eff.JobTypes[1].Minutes)

	for _, wp := range eff.WorkplaceTypes {
		assert.Equal(t, 12.0, wp.Minutes)
	}
	assert.Equal(t, 12.0, eff.Minutes)
}

func TestResolve_UnconfiguredCampaignGetsDefault(t *testing.T) {
	eff := Resolve(CampaignConfig{Title: "anything"})
	assert.Equal(t, float64(defaultCampaignMinutes), eff.Minutes)
}

func TestResolve_UnparseableTimersCountAsZero(t *testing.T) {
	cfg := CampaignConfig{
		Title: "qa",
		Locations: []Facet{
			{Name: "Da Nang", TimerMinutes: "ten"},
			{Name: "Hue", TimerMinutes: "6"},
		},
	}

	eff := Resolve(cfg)

	assert.Equal(t, 0.0, eff.Locations[0].Minutes)
	assert.Equal(t, 6.0, eff.Locations[1].Minutes)
	assert.Equal(t, 6.0, eff.Minutes)
}

func TestLevelPresent(t *testing.T) {
	tests := []struct {
		name     string
		facets   []Facet
		expected bool
	}{
		{"empty list", nil, false},
		{"blank members", []Facet{{Name: "  "}}, false},
		{"named member", []Facet{{Name: "Remote"}}, true},
		{"timer only", []Facet{{TimerMinutes: "5"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelPresent(tt.facets))
		})
	}
}
