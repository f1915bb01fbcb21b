package model

// DocumentFormat is the payload variant of an uploaded document, resolved
// once at ingestion from the filename extension.
type DocumentFormat string

const (
	FormatPDF   DocumentFormat = "pdf"
	FormatDOCX  DocumentFormat = "docx"
	FormatImage DocumentFormat = "image"
	FormatText  DocumentFormat = "text"
)

// RawDocument is an uploaded file awaiting analysis.
type RawDocument struct {
	Filename string         `json:"filename"`
	Format   DocumentFormat `json:"format"`
	Content  []byte         `json:"-"`
}

// DocumentType classifies the financial statement a document contains.
type DocumentType string

const (
	DocTypeBalanceSheet    DocumentType = "balance_sheet"
	DocTypeIncomeStatement DocumentType = "income_statement"
	DocTypeCashFlow        DocumentType = "cash_flow"
	DocTypeOther           DocumentType = "other"
)

// DocumentAnalysis is the outcome of analyzing one uploaded document.
type DocumentAnalysis struct {
	Filename   string                `json:"filename"`
	Type       DocumentType          `json:"type"`
	Indicators []FinancialIndicators `json:"indicators"`
	TextSample string                `json:"text_sample"`
	Confidence float64               `json:"confidence"`
	Notes      []string              `json:"notes,omitempty"`
}
