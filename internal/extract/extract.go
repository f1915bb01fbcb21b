// Package extract converts uploaded documents into plain text and pulls
// structured financial indicators out of that text.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/model"
)

// Extractor converts a raw document payload into plain text. OCR and rich
// binary parsing live behind this boundary; the pipeline only sees text.
type Extractor interface {
	ExtractText(ctx context.Context, doc model.RawDocument) (string, error)
}

// NewExtractor returns the default extractor. Only plain-text payloads are
// handled in-process; binary formats require an external conversion service
// and surface a descriptive error the documents stage can log and skip.
func NewExtractor() Extractor {
	return &textExtractor{}
}

type textExtractor struct{}

func (e *textExtractor) ExtractText(_ context.Context, doc model.RawDocument) (string, error) {
	switch doc.Format {
	case model.FormatText:
		if !utf8.Valid(doc.Content) {
			return "", eris.Errorf("extract: %s is not valid UTF-8 text", doc.Filename)
		}
		return string(doc.Content), nil
	case model.FormatPDF, model.FormatDOCX, model.FormatImage:
		// Binary conversion is delegated to an external service; without one
		// configured the document carries no extractable text.
		return "", eris.Errorf("extract: no converter available for %s document %s", doc.Format, doc.Filename)
	default:
		return "", eris.Errorf("extract: unsupported format %q for %s", doc.Format, doc.Filename)
	}
}

// Sample returns the first n runes of text, with an ellipsis when truncated.
func Sample(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := text[:n]
	// Avoid splitting a multi-byte rune.
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

// Confidence scores how much signal a document's text and extracted
// indicators carry, in [0,1]. Longer text, more populated indicator fields
// and more financial vocabulary all raise it.
func Confidence(text string, indicators []model.FinancialIndicators) float64 {
	score := 0.0

	switch {
	case len(text) > 2000:
		score += 0.3
	case len(text) > 1000:
		score += 0.2
	default:
		score += 0.1
	}

	if len(indicators) > 0 {
		ind := indicators[0]
		fields := []*float64{ind.Revenue, ind.GrossProfit, ind.NetProfit, ind.TotalAssets, ind.Equity}
		present := 0
		for _, f := range fields {
			if f != nil {
				present++
			}
		}
		score += float64(present) / float64(len(fields)) * 0.6
	}

	folded := Fold(text)
	keywords := []string{"receita", "lucro", "ativo", "passivo", "patrimonio", "balanco"}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			hits++
		}
	}
	kwScore := float64(hits) / float64(len(keywords)) * 0.1
	if kwScore > 0.1 {
		kwScore = 0.1
	}
	score += kwScore

	if score > 1.0 {
		score = 1.0
	}
	return score
}
