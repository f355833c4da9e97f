// Target query building and page matching for a segment.
// Free-text facet names are mapped to the site's fixed filter vocabulary;
// unrecognized names simply mean "no filter" for that facet.

package schedule

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const searchBase = "https://www.linkedin.com/jobs/search/"

// TargetQuery is the canonical query for one facet combination.
type TargetQuery struct {
	Keyword        string
	Location       string
	JobTypeCode    string
	WorkplaceCode  string
	QuickApplyOnly bool
}

// normalizeText strips diacritics and lowercases, so "Hồ Chí Minh" and
// "ho chi minh" compare equal.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// jobTypeCode maps a free-text job type name to the site's filter code by
// case-insensitive substring match. Unknown names yield no filter.
func jobTypeCode(name string) string {
	n := normalizeText(name)
	switch {
	case n == "":
		return ""
	case strings.Contains(n, "full"):
		return "F"
	case strings.Contains(n, "part"):
		return "P"
	case strings.Contains(n, "contract"):
		return "C"
	case strings.Contains(n, "temp"):
		return "T"
	case strings.Contains(n, "intern"):
		return "I"
	case strings.Contains(n, "volunt"):
		return "V"
	}
	return ""
}

// workplaceCode maps a workplace type name to the site's filter code.
func workplaceCode(name string) string {
	n := normalizeText(name)
	switch {
	case n == "":
		return ""
	case strings.Contains(n, "on-site") || strings.Contains(n, "onsite") || strings.Contains(n, "on site"):
		return "1"
	case strings.Contains(n, "remote"):
		return "2"
	case strings.Contains(n, "hybrid"):
		return "3"
	}
	return ""
}

// URL renders the full search URL for navigation.
// The quick-apply filter is always on: everything else is out of scope
// for an in-page submission dialog.
func (q TargetQuery) URL() string {
	params := url.Values{}
	params.Set("keywords", q.Keyword)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.JobTypeCode != "" {
		params.Set("f_JT", q.JobTypeCode)
	}
	if q.WorkplaceCode != "" {
		params.Set("f_WT", q.WorkplaceCode)
	}
	if q.QuickApplyOnly {
		params.Set("f_AL", "true")
	}
	return searchBase + "?" + params.Encode()
}

// Matches reports whether the loaded page already shows this segment's
// search. Path, keyword, location and the quick-apply flag are compared
// case-insensitively; job-type and workplace codes are advisory filters,
// not part of page identity.
//
// An empty expected location matches any page location. A non-empty one
// must match.
func (q TargetQuery) Matches(current *url.URL) bool {
	if current == nil {
		return false
	}

	base, err := url.Parse(searchBase)
	if err != nil {
		return false
	}
	if !strings.EqualFold(strings.TrimSuffix(current.Path, "/"), strings.TrimSuffix(base.Path, "/")) {
		return false
	}

	params := current.Query()
	if normalizeText(params.Get("keywords")) != normalizeText(q.Keyword) {
		return false
	}
	if q.Location != "" && normalizeText(params.Get("location")) != normalizeText(q.Location) {
		return false
	}

	wantQuick := ""
	if q.QuickApplyOnly {
		wantQuick = "true"
	}
	return strings.EqualFold(params.Get("f_AL"), wantQuick)
}
