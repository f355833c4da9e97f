// SegmentScheduler owns the persisted cursor into the iteration space
// (campaign × workplace-type × job-type × location) and arms each
// segment's time budget. Nesting order is fixed: location is the
// innermost, fastest-cycling index.

package schedule

import (
	"log"
	"strings"
	"time"

	"go-autoapply/internal/errs"
	"go-autoapply/internal/store"
)

// Cursor is the sole unit of persisted progress. Created on start,
// mutated on every segment transition and on pause/resume, destroyed on
// stop or full-cycle completion.
type Cursor struct {
	Running           bool             `json:"running"`
	Paused            bool             `json:"paused"`
	CampaignIndex     int              `json:"campaignIndex"`
	WorkplaceIndex    int              `json:"workplaceIndex"`
	TypeIndex         int              `json:"typeIndex"`
	LocationIndex     int              `json:"locationIndex"`
	SegmentStartTime  time.Time        `json:"segmentStartTime"`
	SegmentDurationMs int64            `json:"segmentDurationMs"`
	Campaigns         []CampaignConfig `json:"campaigns"`
}

type Scheduler struct {
	store     store.Store
	loopMode  bool
	now       func() time.Time
	cursor    *Cursor
	effective []EffectiveCampaignConfig
}

func NewScheduler(s store.Store, loopMode bool) *Scheduler {
	return &Scheduler{store: s, loopMode: loopMode, now: time.Now}
}

// ValidateCampaigns enforces the start precondition: every campaign needs
// at least one named location with a parseable positive timer, the one
// mandatory leaf of the configuration tree. Named members of any facet
// list must not be blank.
func ValidateCampaigns(campaigns []CampaignConfig) error {
	if len(campaigns) == 0 {
		return &errs.ConfigurationError{Reason: "no campaigns configured"}
	}
	for _, c := range campaigns {
		if strings.TrimSpace(c.Title) == "" {
			return &errs.ConfigurationError{Reason: "campaign title must not be blank"}
		}
		hasValidLocation := false
		for _, loc := range c.Locations {
			if strings.TrimSpace(loc.Name) == "" {
				if strings.TrimSpace(loc.TimerMinutes) != "" {
					return &errs.ConfigurationError{Campaign: c.Title, Reason: "location with a timer must have a name"}
				}
				continue
			}
			if parseMinutes(loc.TimerMinutes) <= 0 {
				return &errs.ConfigurationError{Campaign: c.Title, Reason: "location " + loc.Name + " needs a positive timer"}
			}
			hasValidLocation = true
		}
		if !hasValidLocation {
			return &errs.ConfigurationError{Campaign: c.Title, Reason: "at least one named location with a positive timer is required"}
		}
		for _, f := range append(append([]Facet{}, c.JobTypes...), c.WorkplaceTypes...) {
			if strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.TimerMinutes) != "" {
				return &errs.ConfigurationError{Campaign: c.Title, Reason: "facet with a timer must have a name"}
			}
		}
	}
	return nil
}

// StartNew validates, resets the cursor to the first segment, and persists.
// Configuration errors are fatal-to-start: no cursor is created.
func (s *Scheduler) StartNew(campaigns []CampaignConfig) error {
	if err := ValidateCampaigns(campaigns); err != nil {
		return err
	}

	s.resolveAll(campaigns)
	s.cursor = &Cursor{
		Running:   true,
		Campaigns: campaigns,
	}
	s.armSegment()
	return s.persist()
}

// Load restores a previously persisted cursor. Returns false when no run
// was in progress.
func (s *Scheduler) Load() (bool, error) {
	var c Cursor
	found, err := s.store.Get(store.KeyCursor, &c)
	if err != nil || !found || !c.Running {
		return false, err
	}
	s.cursor = &c
	s.resolveAll(c.Campaigns)
	log.Printf("⏯️ Resumed cursor: campaign=%d workplace=%d type=%d location=%d",
		c.CampaignIndex, c.WorkplaceIndex, c.TypeIndex, c.LocationIndex)
	return true, nil
}

func (s *Scheduler) resolveAll(campaigns []CampaignConfig) {
	s.effective = s.effective[:0]
	for _, c := range campaigns {
		s.effective = append(s.effective, Resolve(c))
	}
}

// facetCount treats an empty facet list as a single synthetic
// "unconstrained" entry during iteration.
func facetCount(facets []EffectiveFacet) int {
	if len(facets) == 0 {
		return 1
	}
	return len(facets)
}

func facetName(facets []EffectiveFacet, i int) string {
	if i >= len(facets) {
		return ""
	}
	return facets[i].Name
}

// Advance moves to the next segment: innermost index (location) first,
// cascading resets outward on overflow. Returns true when the whole
// iteration space is exhausted and loop mode is off.
func (s *Scheduler) Advance() (done bool, err error) {
	c := s.cursor
	eff := s.effective[c.CampaignIndex]

	//explicit cascade, no recursion
	c.LocationIndex++
	if c.LocationIndex >= facetCount(eff.Locations) {
		c.LocationIndex = 0
		c.TypeIndex++
	}
	if c.TypeIndex >= facetCount(eff.JobTypes) {
		c.TypeIndex = 0
		c.WorkplaceIndex++
	}
	if c.WorkplaceIndex >= facetCount(eff.WorkplaceTypes) {
		c.WorkplaceIndex = 0
		c.CampaignIndex++
	}
	if c.CampaignIndex >= len(s.effective) {
		if !s.loopMode {
			log.Println("🏁 All segments exhausted.")
			return true, s.Stop()
		}
		log.Println("🔁 Loop mode: re-seeding cursor to the first segment.")
		c.CampaignIndex = 0
	}

	s.armSegment()
	return false, s.persist()
}

// armSegment stamps the segment start and computes its duration: the
// current location's budget, or the campaign budget when the location
// level is the synthetic unconstrained entry.
func (s *Scheduler) armSegment() {
	c := s.cursor
	eff := s.effective[c.CampaignIndex]

	minutes := eff.Minutes
	if c.LocationIndex < len(eff.Locations) {
		minutes = eff.Locations[c.LocationIndex].Minutes
	}

	c.SegmentStartTime = s.now()
	c.SegmentDurationMs = int64(minutes * float64(time.Minute/time.Millisecond))
}

// CurrentQuery builds the canonical query for the active combination.
func (s *Scheduler) CurrentQuery() TargetQuery {
	c := s.cursor
	eff := s.effective[c.CampaignIndex]
	return TargetQuery{
		Keyword:        eff.Title,
		Location:       facetName(eff.Locations, c.LocationIndex),
		JobTypeCode:    jobTypeCode(facetName(eff.JobTypes, c.TypeIndex)),
		WorkplaceCode:  workplaceCode(facetName(eff.WorkplaceTypes, c.WorkplaceIndex)),
		QuickApplyOnly: true,
	}
}

// Remaining reports the segment's unexpired budget; <=0 means the
// segment is over and Advance must run.
func (s *Scheduler) Remaining() time.Duration {
	c := s.cursor
	elapsed := s.now().Sub(c.SegmentStartTime)
	return time.Duration(c.SegmentDurationMs)*time.Millisecond - elapsed
}

// Pause freezes wall-clock consumption of the current segment: the
// remaining time becomes the new duration and the start is reset to now.
func (s *Scheduler) Pause() error {
	c := s.cursor
	if c == nil || c.Paused {
		return nil
	}
	remaining := s.Remaining()
	if remaining < 0 {
		remaining = 0
	}
	c.SegmentDurationMs = remaining.Milliseconds()
	c.SegmentStartTime = s.now()
	c.Paused = true
	return s.persist()
}

// Unpause restarts the deadline from a fresh start with the frozen
// remainder.
func (s *Scheduler) Unpause() error {
	c := s.cursor
	if c == nil || !c.Paused {
		return nil
	}
	c.SegmentStartTime = s.now()
	c.Paused = false
	return s.persist()
}

// Stop destroys the cursor; the next start begins from scratch.
func (s *Scheduler) Stop() error {
	s.cursor = nil
	return s.store.Remove(store.KeyCursor)
}

func (s *Scheduler) Cursor() *Cursor { return s.cursor }

// persist is always the last action of a transition: a crash between
// decision and write resumes at the prior segment, which beats losing
// progress.
func (s *Scheduler) persist() error {
	return s.store.Set(store.KeyCursor, s.cursor)
}
