package domain

type DocumentType string

const (
	DocAadhaar           DocumentType = "AADHAAR"
	DocBankPassbook      DocumentType = "BANK_PASSBOOK"
	DocIncomeCertificate DocumentType = "INCOME_CERTIFICATE"
	DocLandRecord        DocumentType = "LAND_RECORD"
	DocRationCard        DocumentType = "RATION_CARD"
	DocCasteCertificate  DocumentType = "CASTE_CERTIFICATE"
	DocBPLCertificate    DocumentType = "BPL_CERTIFICATE"
)

func ValidDocumentType(t string) bool {
	switch DocumentType(t) {
	case DocAadhaar, DocBankPassbook, DocIncomeCertificate, DocLandRecord,
		DocRationCard, DocCasteCertificate, DocBPLCertificate:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocExtracted DocumentStatus = "extracted"
	DocError     DocumentStatus = "error"
)

// Document is one user-supplied file plus its OCR extraction outcome.
// Failed upload or extraction attempts are kept in the list with status
// "error" so the user sees them instead of silently losing them.
type Document struct {
	ID              string         `json:"id"`
	Type            DocumentType   `json:"type"`
	FileName        string         `json:"file_name"`
	ExtractedFields map[string]any `json:"extracted_fields,omitempty"`
	Confidence      float64        `json:"confidence,omitempty"`
	Status          DocumentStatus `json:"status"`
	ErrorMessage    string         `json:"error_message,omitempty"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

type ValidationIssue struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ValidationResult is the cross-document consistency verdict, produced only
// when at least two documents extracted successfully.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Message string            `json:"message,omitempty"`
	Issues  []ValidationIssue `json:"issues,omitempty"`
}

// FormResult references the generated, auto-filled application artifact.
type FormResult struct {
	ApplicationReference string `json:"application_reference"`
	Message              string `json:"message,omitempty"`
	FileName             string `json:"file_name"`
	DownloadURL          string `json:"download_url,omitempty"`
}

// GrievanceResult references the generated appeal letter, produced when
// eligibility failed.
type GrievanceResult struct {
	GrievanceReference string `json:"grievance_reference"`
	FileName           string `json:"file_name"`
	DownloadURL        string `json:"download_url,omitempty"`
}
