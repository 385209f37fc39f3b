package domain

import (
	"context"
	"io"
)

type ErrorKind string

const (
	// ErrorKindConnectivity means the scheme service could not be reached
	// at all (connection refused, DNS failure, timeout).
	ErrorKindConnectivity ErrorKind = "connectivity"
	// ErrorKindRejected means the service answered with a structured,
	// application-level failure.
	ErrorKindRejected ErrorKind = "rejected"
)

// ServiceError is the uniform failure shape for every remote operation.
// The message is surfaced verbatim to the user, so connectivity failures
// must say so explicitly rather than echoing a transport error code.
type ServiceError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// OCRResult holds the structured fields extracted from one document.
// ExtractedData values may be nested one level (e.g. an address object).
type OCRResult struct {
	ExtractedData map[string]any `json:"extracted_data"`
	Confidence    float64        `json:"confidence,omitempty"`
}

// DocumentPayload is one extracted document submitted for cross-validation.
type DocumentPayload struct {
	DocumentType  DocumentType   `json:"document_type"`
	ExtractedData map[string]any `json:"extracted_data"`
}

// Applicant carries the merged applicant fields for form generation.
// Address stays a free-form object so OCR-extracted structures pass
// through untouched.
type Applicant struct {
	Name          string         `json:"name"`
	FatherName    string         `json:"father_name"`
	DOB           string         `json:"dob"`
	Gender        string         `json:"gender"`
	Age           string         `json:"age"`
	Category      string         `json:"category"`
	Phone         string         `json:"phone"`
	AadhaarNumber string         `json:"aadhaar_number"`
	Address       map[string]any `json:"address"`
	Occupation    string         `json:"occupation"`
	Income        string         `json:"income"`
	LandHolding   string         `json:"land_holding"`
}

// FormDocuments carries extracted document fields forwarded verbatim.
type FormDocuments struct {
	Bank map[string]any `json:"bank"`
}

// FormPayload is the outbound form-generation request body.
type FormPayload struct {
	SchemeName        string        `json:"scheme_name"`
	Applicant         Applicant     `json:"applicant"`
	Documents         FormDocuments `json:"documents"`
	RequiredDocuments []string      `json:"required_documents"`
}

// GrievancePayload is the outbound grievance-generation request body.
type GrievancePayload struct {
	ApplicantName   string `json:"applicant_name"`
	SchemeName      string `json:"scheme_name"`
	RejectionReason string `json:"rejection_reason"`
	Address         string `json:"address"`
}

// ServiceClient is the typed wrapper around the external scheme service.
// Every method returns either a typed success value or a *ServiceError.
type ServiceClient interface {
	Ping(ctx context.Context) error
	ExtractIntent(ctx context.Context, text string, sessionID string) (*Intent, error)
	MatchSchemes(ctx context.Context, query string, attributes map[string]any, topK int) ([]Scheme, error)
	ValidateEligibility(ctx context.Context, schemeID string, profile map[string]any) (*EligibilityResult, error)
	UploadDocument(ctx context.Context, fileName string, file io.Reader, docType DocumentType, userID string) (string, error)
	ExtractOCR(ctx context.Context, documentID string) (*OCRResult, error)
	ValidateDocuments(ctx context.Context, userID string, docs []DocumentPayload) (*ValidationResult, error)
	GenerateForm(ctx context.Context, payload *FormPayload) (*FormResult, error)
	GenerateGrievance(ctx context.Context, payload *GrievancePayload) (*GrievanceResult, error)
	DownloadURL(fileName string) string
}

// SessionStore holds active sessions for the duration of a journey.
type SessionStore interface {
	Create() *Session
	Get(id string) (*Session, error)
	Save(s *Session)
	Delete(id string)
}
