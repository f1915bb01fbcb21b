package model

import (
	"fmt"
	"time"
)

// Stage identifies a pipeline stage for logging and status tracking.
type Stage string

const (
	StageGathering        Stage = "gathering"
	StageDocumentAnalysis Stage = "document_analysis"
	StageScoring          Stage = "scoring"
	StageValidating       Stage = "validating"
	StageRetrying         Stage = "retrying"
	StageComplete         Stage = "complete"
	StageFailed           Stage = "failed"
)

// AnalysisState is the single mutable record threaded through the pipeline.
// The orchestrator owns its lifecycle; each stage writes only its own fields
// and appends to the processing log.
type AnalysisState struct {
	RequestID        string             `json:"request_id"`
	TaxID            string             `json:"tax_id"`
	Documents        []RawDocument      `json:"-"`
	Company          *CompanyRecord     `json:"company,omitempty"`
	SearchResults    []SearchResult     `json:"search_results"`
	DocumentAnalyses []DocumentAnalysis `json:"document_analyses"`
	Assessment       *RiskAssessment    `json:"assessment,omitempty"`
	Quality          *QualityReport     `json:"quality,omitempty"`
	RetryCount       int                `json:"retry_count"`
	MaxRetries       int                `json:"max_retries"`
	Log              []string           `json:"processing_log"`
	Stage            Stage              `json:"stage"`
	CreatedAt        time.Time          `json:"created_at"`
}

// NewAnalysisState builds the initial state for a request.
func NewAnalysisState(requestID, taxID string, docs []RawDocument, maxRetries int) *AnalysisState {
	return &AnalysisState{
		RequestID:  requestID,
		TaxID:      taxID,
		Documents:  docs,
		MaxRetries: maxRetries,
		Stage:      StageGathering,
		CreatedAt:  time.Now(),
	}
}

// AddNote appends a stage-attributed note to the processing log.
func (s *AnalysisState) AddNote(stage Stage, format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf("[%s] %s", stage, fmt.Sprintf(format, args...)))
}

// CanRetry reports whether the pipeline-level retry budget allows another
// scoring pass.
func (s *AnalysisState) CanRetry() bool {
	return s.RetryCount < s.MaxRetries
}

// IndicatorCount returns the total number of extracted indicator snapshots
// across all document analyses.
func (s *AnalysisState) IndicatorCount() int {
	n := 0
	for _, da := range s.DocumentAnalyses {
		n += len(da.Indicators)
	}
	return n
}
