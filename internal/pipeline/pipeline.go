// Package pipeline runs the credit analysis flow for one request: public
// data gathering, document analysis, scoring, and a quality gate that can
// send the state back for a bounded number of re-scoring passes.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/config"
	"github.com/sells-group/credit-cli/internal/extract"
	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/resilience"
	"github.com/sells-group/credit-cli/pkg/anthropic"
	"github.com/sells-group/credit-cli/pkg/registry"
	"github.com/sells-group/credit-cli/pkg/tavily"
)

type nowFunc func() time.Time

// Pipeline orchestrates the analysis stages. A single Pipeline is safe for
// concurrent Run calls; every run owns an independent AnalysisState and
// retrieval index, so no state is shared across requests.
type Pipeline struct {
	cfg       *config.Config
	registry  registry.Client
	search    tavily.Client
	llm       anthropic.Client
	extractor extract.Extractor
	lexicon   Lexicon
	now       nowFunc
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithExtractor overrides the document text extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithLexicon overrides the web-mention keyword lexicon.
func WithLexicon(lex Lexicon) Option {
	return func(p *Pipeline) { p.lexicon = lex }
}

// WithClock overrides the time source used for longevity scoring.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New assembles a Pipeline from its external collaborators.
func New(cfg *config.Config, reg registry.Client, search tavily.Client, llm anthropic.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		registry:  reg,
		search:    search,
		llm:       llm,
		extractor: extract.NewExtractor(),
		lexicon:   DefaultLexicon(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full pipeline for one request and always returns a scored
// state on success, even when the final quality verdict is Rejected. On
// timeout it returns a nil state and a timeout error; a stage that exhausts
// its local retry budget returns the partial state alongside the error so
// callers can inspect the processing log.
func (p *Pipeline) Run(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisState, error) {
	if timeout := p.cfg.Pipeline.TimeoutSecs; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	st := model.NewAnalysisState(uuid.NewString(), req.TaxID, req.Documents, p.cfg.Pipeline.MaxRetries)
	log := zap.L().With(zap.String("request_id", st.RequestID), zap.String("tax_id", st.TaxID))
	log.Info("pipeline started", zap.Int("documents", len(req.Documents)))

	stageCfg := resilience.StageRetryConfig(p.cfg.Pipeline.StageRetries)

	st.Stage = model.StageGathering
	if err := resilience.Do(ctx, stageCfg, func(ctx context.Context) error {
		return p.gather(ctx, st)
	}); err != nil {
		return p.fail(ctx, st, "gathering", err)
	}

	st.Stage = model.StageDocumentAnalysis
	if err := resilience.Do(ctx, stageCfg, func(ctx context.Context) error {
		return p.analyzeDocuments(ctx, st)
	}); err != nil {
		return p.fail(ctx, st, "document analysis", err)
	}

	// Scoring and validating loop: a Rejected report sends the state back
	// for a fresh assessment until the retry ceiling, then the last result
	// stands. The loop runs at most MaxRetries+1 scoring passes.
	feedback := ""
	for {
		st.Stage = model.StageScoring
		if err := resilience.Do(ctx, stageCfg, func(ctx context.Context) error {
			return p.score(ctx, st, feedback)
		}); err != nil {
			return p.fail(ctx, st, "scoring", err)
		}

		st.Stage = model.StageValidating
		report := p.validate(ctx, st)
		if ctx.Err() != nil {
			return nil, p.timeoutErr(st)
		}
		st.Quality = report

		if report == nil || report.Status == model.QualityApproved {
			break
		}

		if !st.CanRetry() {
			st.AddNote(model.StageValidating, "Retry ceiling reached (%d); returning last assessment with rejected report", st.MaxRetries)
			log.Warn("quality gate still rejecting at retry ceiling", zap.Int("retries", st.RetryCount))
			break
		}

		st.RetryCount++
		feedback = report.Feedback
		st.Stage = model.StageRetrying
		st.AddNote(model.StageRetrying, "Quality gate rejected (attempt %d/%d). Feedback: %s",
			st.RetryCount, st.MaxRetries, feedback)
		st.Quality = nil
		log.Info("re-scoring after quality rejection", zap.Int("retry", st.RetryCount))
	}

	st.Stage = model.StageComplete
	st.AddNote(model.StageComplete, "Pipeline finished with recommendation %s", st.Assessment.Recommendation)
	log.Info("pipeline complete",
		zap.String("recommendation", string(st.Assessment.Recommendation)),
		zap.Float64("overall_score", st.Assessment.OverallScore),
		zap.Int("retries", st.RetryCount))
	return st, nil
}

// score computes a fresh RiskAssessment from the gathered evidence. The
// previous assessment is superseded, never mutated.
func (p *Pipeline) score(ctx context.Context, st *model.AnalysisState, feedback string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	finScore, finPos, finNeg := scoreFinancialHealth(st.DocumentAnalyses)
	nonFinScore, nonFinPos, nonFinNeg := scoreNonFinancial(st.Company, st.SearchResults, p.lexicon, p.now)
	overall := combineScores(finScore, nonFinScore)

	assessment := &model.RiskAssessment{
		FinancialScore:    finScore,
		NonFinancialScore: nonFinScore,
		OverallScore:      overall,
		PositiveFactors:   append(finPos, nonFinPos...),
		NegativeFactors:   append(finNeg, nonFinNeg...),
		Recommendation:    resolveRecommendation(finScore, nonFinScore, overall),
		Confidence:        assessmentConfidence(st),
	}
	assessment.Narrative = p.generateNarrative(ctx, st, assessment, feedback)

	st.Assessment = assessment
	st.AddNote(model.StageScoring, "Assessment computed: financial %.1f, non-financial %.1f, overall %.1f, recommendation %s",
		finScore, nonFinScore, overall, assessment.Recommendation)
	return ctx.Err()
}

func (p *Pipeline) fail(ctx context.Context, st *model.AnalysisState, stage string, err error) (*model.AnalysisState, error) {
	if ctx.Err() == context.DeadlineExceeded {
		return nil, p.timeoutErr(st)
	}
	st.Stage = model.StageFailed
	st.AddNote(model.StageFailed, "Stage %s failed after retries: %v", stage, err)
	zap.L().Error("pipeline failed",
		zap.String("request_id", st.RequestID),
		zap.String("stage", stage),
		zap.Error(err))
	return st, eris.Wrapf(err, "pipeline: %s stage failed", stage)
}

func (p *Pipeline) timeoutErr(st *model.AnalysisState) error {
	zap.L().Error("pipeline timed out",
		zap.String("request_id", st.RequestID),
		zap.Int("timeout_secs", p.cfg.Pipeline.TimeoutSecs))
	return eris.Errorf("pipeline: analysis timed out after %ds", p.cfg.Pipeline.TimeoutSecs)
}
