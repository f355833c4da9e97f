// RelevanceFilter narrows a discovered batch before any dialog is
// opened. Two optional AI-backed gates: company-type classification and
// per-item match scoring. Both keep candidates on infrastructure
// failure.

package relevance

import (
	"context"
	"log"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"go-autoapply/internal/ai"
	"go-autoapply/internal/discovery"
	"go-autoapply/internal/store"
)

// neutralScore stands in when a scoring call fails: passes the default
// minimum of 3, fails a stricter one.
const neutralScore = 3

type Filter struct {
	client  ai.Client
	prefs   store.Preferences
	profile string
}

func NewFilter(client ai.Client, prefs store.Preferences, profile string) *Filter {
	return &Filter{client: client, prefs: prefs, profile: profile}
}

// Apply runs the ignore list, the company-type gate, and the match-score
// gate, in that order.
func (f *Filter) Apply(ctx context.Context, items []discovery.Item) []discovery.Item {
	items = f.dropIgnored(items)
	items = f.companyTypeGate(ctx, items)
	return f.scoreGate(ctx, items)
}

func (f *Filter) dropIgnored(items []discovery.Item) []discovery.Item {
	if len(f.prefs.IgnoredCompanies) == 0 {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if f.isIgnored(item.Company) {
			log.Printf("🚫 Skipping ignored company: %s", item.Company)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func (f *Filter) isIgnored(company string) bool {
	c := strings.ToLower(strings.TrimSpace(company))
	for _, ignored := range f.prefs.IgnoredCompanies {
		if ignored = strings.ToLower(strings.TrimSpace(ignored)); ignored != "" && strings.Contains(c, ignored) {
			return true
		}
	}
	return false
}

// companyTypeGate classifies the unique company names in one batched
// call. With both categories enabled (the default) the gate is skipped
// entirely. Classification failures fail open: the batch passes through
// unfiltered.
func (f *Filter) companyTypeGate(ctx context.Context, items []discovery.Item) []discovery.Item {
	if f.prefs.ApplyProductCompany && f.prefs.ApplyServiceCompany {
		return items
	}
	if len(items) == 0 {
		return items
	}

	companies := mapset.NewThreadUnsafeSet[string]()
	for _, item := range items {
		companies.Add(item.Company)
	}

	classified, err := f.client.ClassifyCompanies(ctx, companies.ToSlice())
	if err != nil {
		log.Printf("⚠️ Company classification failed, passing batch through: %v", err)
		return items
	}

	kept := items[:0]
	for _, item := range items {
		switch classified[item.Company] {
		case ai.CompanyProduct:
			if f.prefs.ApplyProductCompany {
				kept = append(kept, item)
			}
		case ai.CompanyService:
			if f.prefs.ApplyServiceCompany {
				kept = append(kept, item)
			}
		default:
			//matches neither enabled category
		}
	}
	log.Printf("🏷️ Company-type gate: %d/%d items kept", len(kept), len(items))
	return kept
}

// scoreGate rates every item against the profile. A transport or parse
// failure yields the neutral score rather than exclusion.
func (f *Filter) scoreGate(ctx context.Context, items []discovery.Item) []discovery.Item {
	kept := items[:0]
	for _, item := range items {
		score := f.scoreFor(ctx, item)
		if score < f.prefs.MinMatchScore {
			log.Printf("⚠️ Low score (%d): %s @ %s", score, item.Title, item.Company)
			continue
		}
		log.Printf("✅ Score %d/5: %s @ %s", score, item.Title, item.Company)
		kept = append(kept, item)
	}
	return kept
}

func (f *Filter) scoreFor(ctx context.Context, item discovery.Item) int {
	score, _, err := f.client.ScoreJobMatch(ctx, item.Title, item.Company, f.profile)
	if err != nil {
		log.Printf("⚠️ Scoring failed for %s, using neutral score: %v", item.Title, err)
		return neutralScore
	}
	return score
}
