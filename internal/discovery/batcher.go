// ItemDiscoveryBatcher walks the results surface and collects every
// matchable listing into a deduplicated, display-ordered batch.
// Listings render lazily, so collection is scroll-probe-repeat until the
// page stops producing new items.

package discovery

import (
	"log"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"go-autoapply/internal/page"
)

const (
	maxProbeCycles   = 50
	staleProbeLimit  = 15
	scrollStepPx     = 600
	minPreferredHits = 10
)

// Prioritized container selectors, most specific first. The first one
// yielding more than minPreferredHits wins; otherwise the first
// non-empty one is used.
var containerSelectors = []string{
	"li[data-occludable-job-id]",
	"div.job-card-container",
	"li.jobs-search-results__list-item",
	"li.scaffold-layout__list-item",
}

var titleSelectors = []string{
	"a.job-card-container__link strong",
	"a.job-card-list__title",
	".job-card-list__title--link",
	"a[href*='/jobs/view/'] strong",
}

var companySelectors = []string{
	".artdeco-entity-lockup__subtitle",
	".job-card-container__primary-description",
	".job-card-container__company-name",
}

var idAttributes = []string{"data-occludable-job-id", "data-job-id"}

// Item is one discovered listing. Ephemeral: not persisted beyond the
// current segment's in-memory batch.
type Item struct {
	Anchor  page.Element
	Title   string
	Company string
	ID      string
	Top     float64
}

type Batcher struct {
	adapter page.Adapter

	//wait is the injected cancelable delay point; it returns an error
	//when the user stopped the run
	wait func() error
}

func NewBatcher(adapter page.Adapter, wait func() error) *Batcher {
	return &Batcher{adapter: adapter, wait: wait}
}

// Collect scrolls until no new unique items show up for staleProbeLimit
// consecutive probes, the probe cap is hit, or the bottom is reached;
// then extracts title/company per item and sorts by on-screen position.
func (b *Batcher) Collect() ([]Item, error) {
	seen := mapset.NewThreadUnsafeSet[string]()
	var elements []page.Element

	stale := 0
	for cycle := 0; cycle < maxProbeCycles; cycle++ {
		added := 0
		for _, el := range b.queryContainers() {
			html := el.OuterHTML()
			if html == "" {
				continue
			}
			//serialized markup as dedup key: items are not mutated
			//between probes
			if seen.Add(html) {
				elements = append(elements, el)
				added++
			}
		}

		if added == 0 {
			stale++
		} else {
			stale = 0
		}
		if stale >= staleProbeLimit {
			break
		}
		if b.adapter.AtBottom() {
			break
		}

		if err := b.adapter.ScrollBy(scrollStepPx); err != nil {
			log.Printf("⚠️ Scroll failed: %v", err)
		}
		if err := b.wait(); err != nil {
			return nil, err
		}
	}

	//extraction pass: scroll each item into view to defeat lazy
	//rendering, then read the identifying fields
	var items []Item
	for _, el := range elements {
		_ = el.ScrollIntoView()

		title := firstText(el, titleSelectors)
		company := firstText(el, companySelectors)
		if title == "" || company == "" {
			continue
		}

		items = append(items, Item{
			Anchor:  el,
			Title:   title,
			Company: company,
			ID:      firstAttr(el, idAttributes),
			Top:     el.Top(),
		})
	}

	//approximate the display order at time of collection
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Top < items[j].Top
	})

	log.Printf("📄 Collected %d items (%d containers probed)", len(items), len(elements))
	return items, nil
}

func (b *Batcher) queryContainers() []page.Element {
	var fallback []page.Element
	for _, sel := range containerSelectors {
		els, err := b.adapter.Query(sel)
		if err != nil {
			continue
		}
		if len(els) > minPreferredHits {
			return els
		}
		if fallback == nil && len(els) > 0 {
			fallback = els
		}
	}
	return fallback
}

func firstText(scope page.Element, selectors []string) string {
	for _, sel := range selectors {
		els, err := scope.Query(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if text := el.Text(); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstAttr(scope page.Element, attrs []string) string {
	for _, attr := range attrs {
		if v := scope.Attr(attr); v != "" {
			return v
		}
	}
	return ""
}
