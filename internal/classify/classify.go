// Package classify decides a sensitivity category for one document.
//
// Two independent analyzers score the document and their outputs are
// reconciled: on disagreement the more restrictive category wins, and the
// disagreement itself becomes a review trigger.
package classify

import (
	"context"
	"fmt"

	"regdoc/internal/detect"
	"regdoc/internal/extract"
)

// Category is a sensitivity label, ordered from least to most restrictive.
type Category string

const (
	CategoryPublic          Category = "Public"
	CategoryConfidential    Category = "Confidential"
	CategoryHighlySensitive Category = "Highly Sensitive"
	CategoryUnsafe          Category = "Unsafe"
)

var categoryRank = map[Category]int{
	CategoryPublic:          1,
	CategoryConfidential:    2,
	CategoryHighlySensitive: 3,
	CategoryUnsafe:          4,
}

// MostRestrictive resolves a category conflict in favor of the higher rank.
func MostRestrictive(a, b Category) Category {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if categoryRank[b] > categoryRank[a] {
		return b
	}
	return a
}

// Citation points at the evidence behind a decision.
type Citation struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Analysis is the output of one analyzer.
type Analysis struct {
	Engine      string   `json:"engine"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags,omitempty"`
}

// Agreement compares the two analyzer outputs.
type Agreement struct {
	Score         float64  `json:"score"`
	Disagreements []string `json:"disagreements,omitempty"`
}

// Result is the classification payload stored on a completed document.
type Result struct {
	FinalCategory   Category   `json:"final_category"`
	SecondaryTags   []string   `json:"secondary_tags"`
	Confidence      float64    `json:"confidence"`
	Explanation     string     `json:"explanation"`
	PageCount       int        `json:"page_count"`
	Citations       []Citation `json:"citations"`
	RequiresReview  bool       `json:"requires_review"`
	ReviewTriggers  []string   `json:"review_triggers,omitempty"`
	Agreement       Agreement  `json:"agreement"`
	PrimaryAnalysis Analysis   `json:"primary_analysis"`
	Secondary       *Analysis  `json:"secondary_analysis,omitempty"`
}

// Analyzer scores a document independently of the other analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, content *extract.Content, signals *detect.Signals) (Analysis, error)
}

// Review thresholds. Below these the result is flagged for a human.
const (
	minConfidence    = 0.8
	minAgreement     = 0.7
	maxConfidenceGap = 0.2
	maxCitations     = 10
)

// RuleClassifier reconciles a primary and a secondary analyzer.
type RuleClassifier struct {
	primary   Analyzer
	secondary Analyzer
}

// NewRuleClassifier wires the default analyzer pair: the detector-driven
// severity ladder as primary and the keyword-density scorer as secondary.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		primary:   &SeverityLadder{},
		secondary: &DensityScorer{},
	}
}

// NewClassifierWith builds a classifier from explicit analyzers.
func NewClassifierWith(primary, secondary Analyzer) *RuleClassifier {
	return &RuleClassifier{primary: primary, secondary: secondary}
}

// Classify produces the final decision for one document. A secondary
// analyzer failure degrades to a primary-only decision flagged for
// review; a primary failure fails the document.
func (c *RuleClassifier) Classify(ctx context.Context, content *extract.Content, signals *detect.Signals) (*Result, error) {
	primary, err := c.primary.Analyze(ctx, content, signals)
	if err != nil {
		return nil, fmt.Errorf("primary analysis: %w", err)
	}

	var secondary *Analysis
	agreement := Agreement{Score: 0, Disagreements: []string{"secondary_error"}}
	if sec, secErr := c.secondary.Analyze(ctx, content, signals); secErr == nil {
		secondary = &sec
		agreement = compareAnalyses(primary, sec)
	}

	final := primary.Category
	confidence := primary.Confidence
	explanation := primary.Explanation
	tags := primary.Tags
	if secondary != nil {
		final = MostRestrictive(primary.Category, secondary.Category)
		if final == secondary.Category && final != primary.Category {
			confidence = secondary.Confidence
			explanation = secondary.Explanation
			if len(secondary.Tags) > 0 {
				tags = secondary.Tags
			}
		}
	}

	triggers := reviewTriggers(confidence, signals, agreement)

	return &Result{
		FinalCategory:   final,
		SecondaryTags:   tags,
		Confidence:      confidence,
		Explanation:     explanation,
		PageCount:       content.PageCount,
		Citations:       collectCitations(signals),
		RequiresReview:  len(triggers) > 0,
		ReviewTriggers:  triggers,
		Agreement:       agreement,
		PrimaryAnalysis: primary,
		Secondary:       secondary,
	}, nil
}

// compareAnalyses scores agreement between the two analyzers: category
// match and confidence gap, averaged.
func compareAnalyses(primary, secondary Analysis) Agreement {
	var a Agreement
	var components []float64

	if primary.Category == secondary.Category {
		components = append(components, 1.0)
	} else {
		components = append(components, 0.0)
		a.Disagreements = append(a.Disagreements,
			fmt.Sprintf("category: primary=%s, secondary=%s", primary.Category, secondary.Category))
	}

	gap := primary.Confidence - secondary.Confidence
	if gap < 0 {
		gap = -gap
	}
	if gap < maxConfidenceGap {
		components = append(components, 1.0)
	} else {
		components = append(components, 0.5)
		a.Disagreements = append(a.Disagreements, fmt.Sprintf("confidence_gap: %.2f", gap))
	}

	var sum float64
	for _, c := range components {
		sum += c
	}
	a.Score = sum / float64(len(components))
	return a
}

func reviewTriggers(confidence float64, signals *detect.Signals, agreement Agreement) []string {
	var triggers []string
	if confidence < minConfidence {
		triggers = append(triggers, "low_confidence")
	}
	if signals.HasUnsafePattern {
		triggers = append(triggers, "unsafe_detector")
	}
	if agreement.Score < minAgreement || len(agreement.Disagreements) > 0 {
		triggers = append(triggers, "analyzer_disagreement")
	}
	return triggers
}

// collectCitations turns detector hits into deduplicated citations,
// most severe source first, capped at maxCitations.
func collectCitations(signals *detect.Signals) []Citation {
	type sourcedHits struct {
		source string
		hits   []detect.Hit
	}
	groups := []sourcedHits{
		{"unsafe_scan", signals.UnsafeHits},
		{"pii_scan", signals.PIIHits},
		{"confidentiality_scan", signals.InternalHits},
	}

	seen := make(map[string]bool)
	var citations []Citation
	for _, g := range groups {
		for _, hit := range g.hits {
			key := fmt.Sprintf("%d|%s|%s", hit.Page, g.source, hit.Snippet)
			if seen[key] {
				continue
			}
			seen[key] = true
			citations = append(citations, Citation{
				Page:    hit.Page,
				Snippet: hit.Snippet,
				Source:  g.source,
			})
			if len(citations) >= maxCitations {
				return citations
			}
		}
	}
	return citations
}
