// Campaign configuration tree and the bottom-up time budget resolver.
// A campaign is one search intent; its facet lists refine the search and
// carry per-facet timers. Users usually only fill in Location timers, so
// the resolver propagates budgets upward to produce a fully-specified tree.

package schedule

import (
	"strconv"
	"strings"
)

// defaultCampaignMinutes keeps a completely unconfigured campaign moving.
const defaultCampaignMinutes = 10

type Facet struct {
	Name         string `yaml:"name" json:"name"`
	TimerMinutes string `yaml:"timer_minutes" json:"timerMinutes"`
}

type CampaignConfig struct {
	Title          string  `yaml:"title" json:"title"`
	TimerMinutes   string  `yaml:"timer_minutes" json:"timerMinutes"`
	Locations      []Facet `yaml:"locations" json:"locations"`
	JobTypes       []Facet `yaml:"job_types" json:"jobTypes"`
	WorkplaceTypes []Facet `yaml:"workplace_types" json:"workplaceTypes"`
}

type EffectiveFacet struct {
	Name    string
	Minutes float64
}

// EffectiveCampaignConfig is a CampaignConfig after timer propagation:
// every level carries a concrete budget even if the user only set leaves.
type EffectiveCampaignConfig struct {
	Title          string
	Minutes        float64
	Locations      []EffectiveFacet
	JobTypes       []EffectiveFacet
	WorkplaceTypes []EffectiveFacet
}

// parseMinutes treats unparseable or negative timers as zero.
func parseMinutes(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// levelPresent reports whether a facet level was configured at all:
// at least one member with a non-blank name or a non-blank timer.
func levelPresent(facets []Facet) bool {
	for _, f := range facets {
		if strings.TrimSpace(f.Name) != "" || strings.TrimSpace(f.TimerMinutes) != "" {
			return true
		}
	}
	return false
}

func ownSum(facets []Facet) float64 {
	var sum float64
	for _, f := range facets {
		sum += parseMinutes(f.TimerMinutes)
	}
	return sum
}

// Resolve propagates timers bottom-up: Location → JobType → WorkplaceType →
// Campaign. An inherited level carries the aggregate (own-timer sum) of the
// nearest more-specific configured level; it does not re-multiply it.
// Pure function, no side effects.
func Resolve(c CampaignConfig) EffectiveCampaignConfig {
	eff := EffectiveCampaignConfig{Title: c.Title}

	locPresent := levelPresent(c.Locations)
	jtPresent := levelPresent(c.JobTypes)
	wpPresent := levelPresent(c.WorkplaceTypes)

	locSum := ownSum(c.Locations)
	jtOwn := ownSum(c.JobTypes)
	wpOwn := ownSum(c.WorkplaceTypes)

	for _, f := range c.Locations {
		eff.Locations = append(eff.Locations, EffectiveFacet{
			Name:    strings.TrimSpace(f.Name),
			Minutes: parseMinutes(f.TimerMinutes),
		})
	}

	//JobTypes inherit the location sum when locations are configured
	for _, f := range c.JobTypes {
		minutes := parseMinutes(f.TimerMinutes)
		if locPresent {
			minutes = locSum
		}
		eff.JobTypes = append(eff.JobTypes, EffectiveFacet{
			Name:    strings.TrimSpace(f.Name),
			Minutes: minutes,
		})
	}

	//jtAgg is what WorkplaceTypes inherit: the job-type level's own timers
	//if it had any, otherwise the location sum it inherited itself
	jtAgg := jtOwn
	if jtAgg == 0 {
		jtAgg = locSum
	}

	for _, f := range c.WorkplaceTypes {
		minutes := parseMinutes(f.TimerMinutes)
		if jtPresent || locPresent {
			minutes = jtAgg
		}
		eff.WorkplaceTypes = append(eff.WorkplaceTypes, EffectiveFacet{
			Name:    strings.TrimSpace(f.Name),
			Minutes: minutes,
		})
	}

	//Campaign budget: aggregate of the most specific configured level
	switch {
	case locPresent:
		eff.Minutes = locSum
	case jtPresent:
		eff.Minutes = jtOwn
	case wpPresent:
		eff.Minutes = wpOwn
	default:
		eff.Minutes = parseMinutes(c.TimerMinutes)
		if eff.Minutes == 0 {
			eff.Minutes = defaultCampaignMinutes
		}
	}

	return eff
}
