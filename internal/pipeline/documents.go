package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/docindex"
	"github.com/sells-group/credit-cli/internal/extract"
	"github.com/sells-group/credit-cli/internal/model"
)

// ragQuestions maps retrieval questions over the indexed document text to
// the indicator field each answers. Retrieval hits take precedence over the
// regex scan for the same field.
var ragQuestions = []struct {
	question string
	assign   func(*model.FinancialIndicators, float64)
	get      func(*model.FinancialIndicators) *float64
}{
	{"qual foi a receita liquida ou faturamento liquido do periodo",
		func(f *model.FinancialIndicators, v float64) { f.Revenue = &v },
		func(f *model.FinancialIndicators) *float64 { return f.Revenue }},
	{"qual foi o lucro bruto da empresa",
		func(f *model.FinancialIndicators, v float64) { f.GrossProfit = &v },
		func(f *model.FinancialIndicators) *float64 { return f.GrossProfit }},
	{"qual foi o lucro operacional ou ebit",
		func(f *model.FinancialIndicators, v float64) { f.OperatingProfit = &v },
		func(f *model.FinancialIndicators) *float64 { return f.OperatingProfit }},
	{"qual foi o lucro liquido do periodo",
		func(f *model.FinancialIndicators, v float64) { f.NetProfit = &v },
		func(f *model.FinancialIndicators) *float64 { return f.NetProfit }},
	{"qual e o valor do ativo total da empresa",
		func(f *model.FinancialIndicators, v float64) { f.TotalAssets = &v },
		func(f *model.FinancialIndicators) *float64 { return f.TotalAssets }},
	{"qual e o valor do ativo circulante",
		func(f *model.FinancialIndicators, v float64) { f.CurrentAssets = &v },
		func(f *model.FinancialIndicators) *float64 { return f.CurrentAssets }},
	{"qual e o valor do passivo total",
		func(f *model.FinancialIndicators, v float64) { f.TotalLiabilities = &v },
		func(f *model.FinancialIndicators) *float64 { return f.TotalLiabilities }},
	{"qual e o valor do passivo circulante",
		func(f *model.FinancialIndicators, v float64) { f.CurrentLiabilities = &v },
		func(f *model.FinancialIndicators) *float64 { return f.CurrentLiabilities }},
	{"qual e o patrimonio liquido da empresa",
		func(f *model.FinancialIndicators, v float64) { f.Equity = &v },
		func(f *model.FinancialIndicators) *float64 { return f.Equity }},
}

// analyzeDocuments extracts text from each uploaded document, classifies it,
// indexes it for retrieval, and collects indicator snapshots. Documents that
// cannot be processed are logged and skipped; the stage only fails on context
// cancellation.
func (p *Pipeline) analyzeDocuments(ctx context.Context, st *model.AnalysisState) error {
	st.AddNote(model.StageDocumentAnalysis, "Starting analysis of %d document(s)", len(st.Documents))

	if len(st.Documents) == 0 {
		st.AddNote(model.StageDocumentAnalysis, "No documents provided for analysis")
		return nil
	}

	index := docindex.New(p.cfg.Index.ChunkSize, p.cfg.Index.ChunkOverlap, p.cfg.Index.SimilarityThreshold)

	for _, doc := range st.Documents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		analysis := p.analyzeDocument(ctx, doc, index)
		if analysis == nil {
			st.AddNote(model.StageDocumentAnalysis, "Skipped document %s: no text extracted", doc.Filename)
			continue
		}
		st.DocumentAnalyses = append(st.DocumentAnalyses, *analysis)
	}

	st.AddNote(model.StageDocumentAnalysis, "Analysis complete: %d document(s) processed", len(st.DocumentAnalyses))
	return nil
}

func (p *Pipeline) analyzeDocument(ctx context.Context, doc model.RawDocument, index *docindex.Index) *model.DocumentAnalysis {
	text, err := p.extractor.ExtractText(ctx, doc)
	if err != nil {
		zap.L().Warn("text extraction failed",
			zap.String("filename", doc.Filename),
			zap.String("format", string(doc.Format)),
			zap.Error(err))
		return nil
	}
	if len(text) == 0 {
		return nil
	}

	docType := extract.ClassifyType(text)

	// Retrieval queries must rank chunks of the current document only.
	index.Clear()
	index.Add(text, map[string]string{
		"filename":      doc.Filename,
		"document_type": string(docType),
	})

	indicators := extractIndicators(text, docType, index, p.cfg.Index.TopK)

	var snapshots []model.FinancialIndicators
	if indicators != nil {
		snapshots = append(snapshots, *indicators)
	}

	var notes []string
	if len(text) < 500 {
		notes = append(notes, "Short document; information may be limited")
	}
	if indicators == nil {
		notes = append(notes, "No financial indicators extracted automatically")
	}

	analysis := &model.DocumentAnalysis{
		Filename:   doc.Filename,
		Type:       docType,
		Indicators: snapshots,
		TextSample: extract.Sample(text, 500),
		Confidence: extract.Confidence(text, snapshots),
		Notes:      notes,
	}

	zap.L().Info("document analyzed",
		zap.String("filename", doc.Filename),
		zap.String("type", string(docType)),
		zap.Int("indicator_sets", len(snapshots)))
	return analysis
}

// extractIndicators combines the retrieval path with the regex scan: each
// field is answered by the top retrieved chunk first, falling back to the
// regex match, then ratios are derived over the merged snapshot.
func extractIndicators(text string, docType model.DocumentType, index *docindex.Index, topK int) *model.FinancialIndicators {
	regex := extract.Indicators(text, docType)

	merged := &model.FinancialIndicators{Period: extract.ExtractPeriod(text)}
	found := false

	for _, q := range ragQuestions {
		chunks := index.Query(q.question, topK)
		if len(chunks) > 0 {
			if v, ok := extract.FirstNumber(chunks[0].Text); ok {
				q.assign(merged, v)
				found = true
				continue
			}
		}
		if regex != nil {
			if v := q.get(regex); v != nil {
				q.assign(merged, *v)
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	extract.DeriveRatios(merged)
	return merged
}
