package client

import (
	"context"
	"io"

	"github.com/sevasetu/assistant/internal/domain"
)

// MockClient is a configurable scheme service client for testing and for
// running the orchestrator without a live service. Set the response fields
// to control what each method returns.
type MockClient struct {
	PingError                   error
	ExtractIntentResponse       *domain.Intent
	ExtractIntentError          error
	MatchSchemesResponse        []domain.Scheme
	MatchSchemesError           error
	ValidateEligibilityResponse *domain.EligibilityResult
	ValidateEligibilityError    error
	UploadDocumentResponse      string
	UploadDocumentError         error
	ExtractOCRResponse          *domain.OCRResult
	ExtractOCRError             error
	ValidateDocumentsResponse   *domain.ValidationResult
	ValidateDocumentsError      error
	GenerateFormResponse        *domain.FormResult
	GenerateFormError           error
	GenerateGrievanceResponse   *domain.GrievanceResult
	GenerateGrievanceError      error

	// Gate, when non-nil, blocks every remote method until a value is sent
	// on it. Used to hold a transition in flight during tests.
	Gate chan struct{}

	// Call tracking for assertions
	ExtractIntentCalls       []string
	MatchSchemesCalls        []MatchSchemesCall
	ValidateEligibilityCalls []ValidateEligibilityCall
	UploadDocumentCalls      []UploadDocumentCall
	ExtractOCRCalls          []string
	ValidateDocumentsCalls   [][]domain.DocumentPayload
	GenerateFormCalls        []*domain.FormPayload
	GenerateGrievanceCalls   []*domain.GrievancePayload
}

type MatchSchemesCall struct {
	Query      string
	Attributes map[string]any
	TopK       int
}

type ValidateEligibilityCall struct {
	SchemeID string
	Profile  map[string]any
}

type UploadDocumentCall struct {
	FileName string
	Type     domain.DocumentType
	UserID   string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ExtractIntentResponse: &domain.Intent{
			Summary:     "Farmer seeking income support",
			SchemeType:  "agriculture",
			IntentLabel: "financial_assistance",
			KeyAttributes: map[string]any{
				"occupation":   "farmer",
				"land_holding": 1.5,
				"income":       150000,
				"state":        "Madhya Pradesh",
			},
		},
		MatchSchemesResponse: []domain.Scheme{
			{
				SchemeID:          "pm-kisan",
				Name:              "PM-KISAN Samman Nidhi",
				ShortName:         "PM-KISAN",
				Category:          "Agriculture",
				Benefits:          "₹6,000 per year in three instalments",
				RequiredDocuments: []string{"AADHAAR", "BANK_PASSBOOK", "LAND_RECORD"},
				Score:             0.92,
			},
		},
		ValidateEligibilityResponse: &domain.EligibilityResult{
			IsEligible: true,
			RuleResults: []domain.RuleResult{
				{Rule: "Must be a farmer", Status: domain.RulePass},
			},
			Explanation: "All criteria satisfied",
		},
		UploadDocumentResponse: "doc-mock-1",
		ExtractOCRResponse: &domain.OCRResult{
			ExtractedData: map[string]any{"name": "Ram Kumar"},
			Confidence:    0.9,
		},
		ValidateDocumentsResponse: &domain.ValidationResult{
			IsValid: true,
			Message: "All documents are consistent",
		},
		GenerateFormResponse: &domain.FormResult{
			ApplicationReference: "SEVA-MOCK-0001",
			Message:              "Application form generated",
			FileName:             "application_mock.pdf",
		},
		GenerateGrievanceResponse: &domain.GrievanceResult{
			GrievanceReference: "GRV-MOCK-0001",
			FileName:           "grievance_mock.pdf",
		},
	}
}

func (m *MockClient) wait() {
	if m.Gate != nil {
		<-m.Gate
	}
}

func (m *MockClient) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockClient) ExtractIntent(ctx context.Context, text string, sessionID string) (*domain.Intent, error) {
	m.ExtractIntentCalls = append(m.ExtractIntentCalls, text)
	m.wait()
	if m.ExtractIntentError != nil {
		return nil, m.ExtractIntentError
	}
	return m.ExtractIntentResponse, nil
}

func (m *MockClient) MatchSchemes(ctx context.Context, query string, attributes map[string]any, topK int) ([]domain.Scheme, error) {
	m.MatchSchemesCalls = append(m.MatchSchemesCalls, MatchSchemesCall{Query: query, Attributes: attributes, TopK: topK})
	m.wait()
	if m.MatchSchemesError != nil {
		return nil, m.MatchSchemesError
	}
	return m.MatchSchemesResponse, nil
}

func (m *MockClient) ValidateEligibility(ctx context.Context, schemeID string, profile map[string]any) (*domain.EligibilityResult, error) {
	m.ValidateEligibilityCalls = append(m.ValidateEligibilityCalls, ValidateEligibilityCall{SchemeID: schemeID, Profile: profile})
	m.wait()
	if m.ValidateEligibilityError != nil {
		return nil, m.ValidateEligibilityError
	}
	return m.ValidateEligibilityResponse, nil
}

func (m *MockClient) UploadDocument(ctx context.Context, fileName string, file io.Reader, docType domain.DocumentType, userID string) (string, error) {
	m.UploadDocumentCalls = append(m.UploadDocumentCalls, UploadDocumentCall{FileName: fileName, Type: docType, UserID: userID})
	m.wait()
	if m.UploadDocumentError != nil {
		return "", m.UploadDocumentError
	}
	return m.UploadDocumentResponse, nil
}

func (m *MockClient) ExtractOCR(ctx context.Context, documentID string) (*domain.OCRResult, error) {
	m.ExtractOCRCalls = append(m.ExtractOCRCalls, documentID)
	m.wait()
	if m.ExtractOCRError != nil {
		return nil, m.ExtractOCRError
	}
	return m.ExtractOCRResponse, nil
}

func (m *MockClient) ValidateDocuments(ctx context.Context, userID string, docs []domain.DocumentPayload) (*domain.ValidationResult, error) {
	m.ValidateDocumentsCalls = append(m.ValidateDocumentsCalls, docs)
	m.wait()
	if m.ValidateDocumentsError != nil {
		return nil, m.ValidateDocumentsError
	}
	return m.ValidateDocumentsResponse, nil
}

func (m *MockClient) GenerateForm(ctx context.Context, payload *domain.FormPayload) (*domain.FormResult, error) {
	m.GenerateFormCalls = append(m.GenerateFormCalls, payload)
	m.wait()
	if m.GenerateFormError != nil {
		return nil, m.GenerateFormError
	}
	return m.GenerateFormResponse, nil
}

func (m *MockClient) GenerateGrievance(ctx context.Context, payload *domain.GrievancePayload) (*domain.GrievanceResult, error) {
	m.GenerateGrievanceCalls = append(m.GenerateGrievanceCalls, payload)
	m.wait()
	if m.GenerateGrievanceError != nil {
		return nil, m.GenerateGrievanceError
	}
	return m.GenerateGrievanceResponse, nil
}

func (m *MockClient) DownloadURL(fileName string) string {
	return "http://localhost:8000/download/form/" + fileName
}
