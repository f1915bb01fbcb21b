package model

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// AnalysisRequest is a validated inbound analysis request.
type AnalysisRequest struct {
	TaxID     string
	Documents []RawDocument
}

// UploadLimits bounds inbound documents.
type UploadLimits struct {
	MaxFileBytes int64
	AllowedExts  []string
}

// NormalizeTaxID strips non-digit characters and validates that exactly 14
// digits remain.
func NormalizeTaxID(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if len(id) != 14 {
		return "", eris.Errorf("request: tax id must have 14 digits, got %d", len(id))
	}
	return id, nil
}

// NewRequest validates inputs and builds an AnalysisRequest. Malformed tax
// identifiers and disallowed files are rejected here, before the pipeline
// ever sees them.
func NewRequest(rawTaxID string, docs []RawDocument, limits UploadLimits) (*AnalysisRequest, error) {
	taxID, err := NormalizeTaxID(rawTaxID)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		ext := strings.ToLower(filepath.Ext(docs[i].Filename))
		if !extAllowed(ext, limits.AllowedExts) {
			return nil, eris.Errorf("request: file type not allowed: %s", docs[i].Filename)
		}
		if limits.MaxFileBytes > 0 && int64(len(docs[i].Content)) > limits.MaxFileBytes {
			return nil, eris.Errorf("request: file too large: %s (%d bytes)", docs[i].Filename, len(docs[i].Content))
		}
		docs[i].Format = formatForExt(ext)
	}

	return &AnalysisRequest{TaxID: taxID, Documents: docs}, nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// formatForExt resolves the payload variant once at ingestion so downstream
// stages never re-inspect raw bytes.
func formatForExt(ext string) DocumentFormat {
	switch ext {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".png", ".jpg", ".jpeg", ".tiff":
		return FormatImage
	default:
		return FormatText
	}
}
