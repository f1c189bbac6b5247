// Package detect runs pattern detectors over extracted document content.
package detect

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"regdoc/internal/extract"
)

// Hit is a single detector match with its page and surrounding snippet.
type Hit struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
	Kind    string `json:"kind"`
}

// Signals aggregates detector findings for one document.
type Signals struct {
	HasPII             bool  `json:"has_pii"`
	HasUnsafePattern   bool  `json:"has_unsafe_pattern"`
	HasInternalMarkers bool  `json:"has_internal_markers"`
	PIIHits            []Hit `json:"pii_hits,omitempty"`
	UnsafeHits         []Hit `json:"unsafe_hits,omitempty"`
	InternalHits       []Hit `json:"internal_hits,omitempty"`
}

type piiPattern struct {
	kind string
	re   *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`)},
}

var unsafeKeywords = []string{
	"explosive", "detonator", "weapon schematics", "bioweapon",
	"how to harm", "untraceable poison",
}

var internalMarkers = []string{
	"confidential", "internal use only", "do not distribute",
	"proprietary", "trade secret", "nda",
}

const snippetRadius = 40

// RegexDetector scans page text with the built-in pattern sets.
type RegexDetector struct{}

// NewRegexDetector creates a detector with the default pattern sets.
func NewRegexDetector() *RegexDetector {
	return &RegexDetector{}
}

// Detect scans every page and returns aggregated signals. Pages are
// visited in ascending order so hit ordering is deterministic.
func (d *RegexDetector) Detect(ctx context.Context, content *extract.Content) (*Signals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signals := &Signals{}

	pageNums := make([]int, 0, len(content.Pages))
	for n := range content.Pages {
		pageNums = append(pageNums, n)
	}
	sort.Ints(pageNums)

	for _, page := range pageNums {
		text := content.Pages[page]
		lower := strings.ToLower(text)

		for _, p := range piiPatterns {
			for _, loc := range p.re.FindAllStringIndex(text, -1) {
				signals.PIIHits = append(signals.PIIHits, Hit{
					Page:    page,
					Snippet: snippet(text, loc[0], loc[1]),
					Kind:    p.kind,
				})
			}
		}
		for _, kw := range unsafeKeywords {
			if idx := strings.Index(lower, kw); idx >= 0 {
				signals.UnsafeHits = append(signals.UnsafeHits, Hit{
					Page:    page,
					Snippet: snippet(text, idx, idx+len(kw)),
					Kind:    "unsafe_keyword",
				})
			}
		}
		for _, marker := range internalMarkers {
			if idx := strings.Index(lower, marker); idx >= 0 {
				signals.InternalHits = append(signals.InternalHits, Hit{
					Page:    page,
					Snippet: snippet(text, idx, idx+len(marker)),
					Kind:    "internal_marker",
				})
			}
		}
	}

	signals.HasPII = len(signals.PIIHits) > 0
	signals.HasUnsafePattern = len(signals.UnsafeHits) > 0
	signals.HasInternalMarkers = len(signals.InternalHits) > 0

	return signals, nil
}

func snippet(text string, start, end int) string {
	from := start - snippetRadius
	if from < 0 {
		from = 0
	}
	to := end + snippetRadius
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(text[from:to])
}
