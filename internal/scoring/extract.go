package scoring

import (
	"net/url"
	"strings"

	"macrowatch/internal/services/webfetch"
)

// Path segments that mark a link as something other than a news article.
var rejectedSegments = map[string]struct{}{
	"video":     {},
	"videos":    {},
	"live":      {},
	"live-news": {},
	"pictures":  {},
	"picture":   {},
	"gallery":   {},
	"graphics":  {},
	"podcasts":  {},
	"authors":   {},
	"tags":      {},
}

// Regional sections that cannot cover a domestic release.
var mismatchedRegions = map[string]struct{}{
	"africa":       {},
	"asia":         {},
	"asia-pacific": {},
	"europe":       {},
	"middle-east":  {},
	"china":        {},
	"india":        {},
	"japan":        {},
	"uk":           {},
}

// ExtractCandidateURLs pulls article links out of a search results page.
// Only same-origin links survive; URLs are normalized (fragment and query
// stripped) before deduplication, and links pointing at video, live,
// picture, or mismatched regional sections are rejected. At most limit
// URLs are returned, in document order.
func ExtractCandidateURLs(page webfetch.Page, searchURL string, limit int) []string {
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, link := range page.Links {
		ref, err := url.Parse(link.Href)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if !strings.EqualFold(resolved.Host, base.Host) {
			continue
		}
		if !articlePath(resolved.Path) {
			continue
		}

		resolved.Fragment = ""
		resolved.RawQuery = ""
		normalized := strings.TrimSuffix(resolved.String(), "/")
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		out = append(out, normalized)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func articlePath(path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return false
	}
	for _, segment := range segments {
		segment = strings.ToLower(segment)
		if _, bad := rejectedSegments[segment]; bad {
			return false
		}
		if _, bad := mismatchedRegions[segment]; bad {
			return false
		}
	}
	return true
}

// sectionOf returns the leading path segment of an article URL, lowercased.
// Used by the scoring rules to judge the publication section.
func sectionOf(articleURL string) string {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	return strings.ToLower(segments[0])
}
