package classify

import (
	"context"
	"strings"

	"regdoc/internal/detect"
	"regdoc/internal/extract"
)

// SeverityLadder maps detector signals directly onto the category ladder.
// The most severe signal present decides the category.
type SeverityLadder struct{}

func (a *SeverityLadder) Analyze(ctx context.Context, content *extract.Content, signals *detect.Signals) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	out := Analysis{Engine: "severity_ladder"}
	switch {
	case signals.HasUnsafePattern:
		out.Category = CategoryUnsafe
		out.Confidence = 0.9
		out.Explanation = "Unsafe keywords detected."
		out.Tags = []string{"Safety-Risk"}
	case signals.HasPII:
		out.Category = CategoryHighlySensitive
		out.Confidence = 0.85
		out.Explanation = "PII patterns detected."
		out.Tags = []string{"PII"}
	case signals.HasInternalMarkers:
		out.Category = CategoryConfidential
		out.Confidence = 0.8
		out.Explanation = "Internal markers detected."
		out.Tags = []string{"Internal"}
	default:
		out.Category = CategoryPublic
		out.Confidence = 0.75
		out.Explanation = "No sensitive markers found."
	}
	return out, nil
}

// DensityScorer is the second opinion: instead of a strict ladder it
// weighs hit density against document length, so a single stray marker
// in a long document scores lower than the same marker in a memo.
type DensityScorer struct{}

func (a *DensityScorer) Analyze(ctx context.Context, content *extract.Content, signals *detect.Signals) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	var textLen int
	for _, page := range content.Pages {
		textLen += len(strings.TrimSpace(page))
	}
	if textLen == 0 {
		textLen = 1
	}

	// Hits per thousand characters, weighted by severity.
	weighted := 4.0*float64(len(signals.UnsafeHits)) +
		3.0*float64(len(signals.PIIHits)) +
		2.0*float64(len(signals.InternalHits))
	density := weighted * 1000 / float64(textLen)

	out := Analysis{Engine: "density_scorer"}
	switch {
	case len(signals.UnsafeHits) > 0:
		out.Category = CategoryUnsafe
		out.Explanation = "Unsafe content present regardless of density."
		out.Tags = []string{"Safety-Risk"}
	case len(signals.PIIHits) > 1 || (len(signals.PIIHits) == 1 && density >= 1):
		out.Category = CategoryHighlySensitive
		out.Explanation = "Repeated or concentrated PII."
		out.Tags = []string{"PII"}
	case len(signals.InternalHits) > 0 && density >= 0.5:
		out.Category = CategoryConfidential
		out.Explanation = "Concentrated internal markers."
		out.Tags = []string{"Internal"}
	case signals.HasPII || signals.HasInternalMarkers:
		out.Category = CategoryConfidential
		out.Explanation = "Sparse sensitive markers in a long document."
		out.Tags = []string{"Internal"}
	default:
		out.Category = CategoryPublic
		out.Explanation = "No sensitive markers found."
	}

	out.Confidence = 0.7 + min(0.25, density/10)
	return out, nil
}
