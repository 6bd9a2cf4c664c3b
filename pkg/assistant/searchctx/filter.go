// Package searchctx turns raw multi-source search output into a compact,
// trustworthy context block: it filters and scores hits, cross-verifies
// numeric claims across sources, and summarizes extracted facts.
package searchctx

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/neuraltwin/assistant-engine/pkg/helpers"
)

// SourceType tags where a search hit came from.
type SourceType string

const (
	SourceWeb  SourceType = "web"
	SourceSNS  SourceType = "sns"
	SourceNews SourceType = "news"
)

// RawResult is one hit as returned by a search provider.
type RawResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// SourceResults is the per-provider batch handed to the filter.
type SourceResults struct {
	Type    SourceType  `json:"type"`
	Results []RawResult `json:"results"`
}

// FilteredResult is a deduplicated, relevance-scored hit.
type FilteredResult struct {
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	URL            string     `json:"url"`
	Source         SourceType `json:"source"`
	RelevanceScore float64    `json:"relevanceScore"`
}

const (
	maxFilteredResults = 6
	minSnippetRunes    = 20
	maxContextChars    = 2000
)

// Relevance scoring weights.
const (
	baseRelevance         = 0.5
	titleKeywordBonus     = 0.15
	snippetKeywordBonus   = 0.10
	webSourceBonus        = 0.05
	lowValueDomainPenalty = 0.20
	longSnippetBonus      = 0.05
)

var spamPattern = regexp.MustCompile(`(?i)(affiliate|/ad/|utm_campaign=pp|link\.coupang|bit\.ly|smartstore\.naver\.com/best|쿠팡파트너스)`)

// Social platforms and app stores rarely carry citable retail numbers.
var lowValueDomains = []string{
	"instagram.com", "facebook.com", "tiktok.com", "twitter.com", "x.com",
	"play.google.com", "apps.apple.com",
}

// Filter dedupes hits by normalized URL, drops spam and thin snippets, scores
// relevance against the query, and keeps the top hits. Input order is the
// tie-break for equal scores.
func Filter(query string, sources []SourceResults) []FilteredResult {
	keywords := QueryKeywords(query)

	seen := map[string]bool{}
	var filtered []FilteredResult
	for _, source := range sources {
		for _, raw := range source.Results {
			key := normalizeURL(raw.URL)
			if key == "" || seen[key] {
				continue
			}
			if spamPattern.MatchString(raw.URL) {
				continue
			}
			if len([]rune(strings.TrimSpace(raw.Snippet))) < minSnippetRunes {
				continue
			}
			seen[key] = true
			filtered = append(filtered, FilteredResult{
				Title:          raw.Title,
				Snippet:        raw.Snippet,
				URL:            raw.URL,
				Source:         source.Type,
				RelevanceScore: scoreRelevance(raw, source.Type, keywords),
			})
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RelevanceScore > filtered[j].RelevanceScore
	})
	if len(filtered) > maxFilteredResults {
		filtered = filtered[:maxFilteredResults]
	}
	return filtered
}

func scoreRelevance(raw RawResult, source SourceType, keywords []string) float64 {
	score := baseRelevance
	lowerTitle := strings.ToLower(raw.Title)
	lowerSnippet := strings.ToLower(raw.Snippet)

	for _, kw := range keywords {
		if strings.Contains(lowerTitle, kw) {
			score += titleKeywordBonus
		}
		if strings.Contains(lowerSnippet, kw) {
			score += snippetKeywordBonus
		}
	}
	if source == SourceWeb {
		score += webSourceBonus
	}
	if isLowValueDomain(raw.URL) {
		score -= lowValueDomainPenalty
	}
	if snippetLen := len([]rune(raw.Snippet)); snippetLen > 100 {
		score += longSnippetBonus
		if snippetLen > 200 {
			score += longSnippetBonus
		}
	}
	return helpers.Clamp(score, 0, 1)
}

// QueryKeywords tokenizes the query into matchable keywords: tokens of length
// ≥2 with a Korean character, or Latin tokens of length ≥3.
func QueryKeywords(query string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var keywords []string
	for _, token := range tokens {
		runes := []rune(token)
		if containsHangul(token) {
			if len(runes) >= 2 {
				keywords = append(keywords, token)
			}
		} else if len(runes) >= 3 {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// normalizeURL reduces a URL to hostname+path for dedup: no scheme, no query,
// no fragment, no trailing slash.
func normalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	path := strings.TrimRight(parsed.Path, "/")
	return host + path
}

func isLowValueDomain(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	for _, domain := range lowValueDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

var sourceHeaders = []struct {
	source SourceType
	header string
}{
	{SourceWeb, "[웹 검색]"},
	{SourceNews, "[뉴스]"},
	{SourceSNS, "[SNS]"},
}

// RenderContext renders the filtered hits into the budgeted search-context
// block, grouped by source type with each line citing its URL. Lines that
// would push the block past the character budget are dropped.
func RenderContext(results []FilteredResult) string {
	var b strings.Builder
	used := 0

	write := func(s string) {
		b.WriteString(s)
		used += len([]rune(s))
	}

	for _, group := range sourceHeaders {
		wroteHeader := false
		for _, r := range results {
			if r.Source != group.source {
				continue
			}
			line := fmt.Sprintf("- %s: %s (%s)\n", r.Title, r.Snippet, r.URL)
			header := ""
			if !wroteHeader {
				header = group.header + "\n"
			}
			if used+len([]rune(header))+len([]rune(line)) > maxContextChars {
				continue
			}
			if header != "" {
				write(header)
				wroteHeader = true
			}
			write(line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
