package service

import (
	"testing"

	"github.com/sevasetu/assistant/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCoerceProfile(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]string
		key   string
		want  any
		omits bool
	}{
		{name: "integer string becomes number", in: map[string]string{"income": "150000"}, key: "income", want: float64(150000)},
		{name: "decimal string becomes number", in: map[string]string{"land_holding": "1.5"}, key: "land_holding", want: 1.5},
		{name: "padded number parses after trim", in: map[string]string{"age": " 42 "}, key: "age", want: float64(42)},
		{name: "category stays text", in: map[string]string{"category": "OBC"}, key: "category", want: "OBC"},
		{name: "mixed token stays text", in: map[string]string{"plot": "12B"}, key: "plot", want: "12B"},
		{name: "NaN stays text", in: map[string]string{"age": "NaN"}, key: "age", want: "NaN"},
		{name: "infinity stays text", in: map[string]string{"income": "+Inf"}, key: "income", want: "+Inf"},
		{name: "empty value omitted", in: map[string]string{"gender": ""}, key: "gender", omits: true},
		{name: "whitespace value omitted", in: map[string]string{"gender": "  "}, key: "gender", omits: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := CoerceProfile(tt.in)
			v, ok := out[tt.key]
			if tt.omits {
				assert.False(t, ok, "expected %s to be omitted", tt.key)
				return
			}
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestPrefillProfile(t *testing.T) {
	profile := map[string]string{"occupation": "weaver", "phone": "9876543210"}
	attrs := map[string]any{
		"income":       150000,
		"land_holding": 1.5,
		"state":        "Madhya Pradesh",
		"occupation":   "farmer",
		"scheme_type":  "agriculture", // not a profile field
	}

	merged := PrefillProfile(profile, attrs)

	assert.Equal(t, "farmer", merged["occupation"], "extracted attribute overwrites the field")
	assert.Equal(t, "150000", merged["income"], "integers render without exponent")
	assert.Equal(t, "1.5", merged["land_holding"])
	assert.Equal(t, "Madhya Pradesh", merged["state"])
	assert.Equal(t, "9876543210", merged["phone"], "fields absent from attrs survive")
	assert.NotContains(t, merged, "scheme_type")

	// The input map is never mutated.
	assert.Equal(t, "weaver", profile["occupation"])
}

func TestPrefillProfile_SkipsEmptyAttributes(t *testing.T) {
	merged := PrefillProfile(map[string]string{"state": "Bihar"}, map[string]any{"state": "", "age": nil})
	assert.Equal(t, "Bihar", merged["state"])
	assert.NotContains(t, merged, "age")
}

func TestDocumentLabel(t *testing.T) {
	assert.Equal(t, "BANK PASSBOOK", DocumentLabel("BANK_PASSBOOK"))
	assert.Equal(t, "AADHAAR", DocumentLabel("AADHAAR"))
	// Already-spaced labels pass through unchanged.
	assert.Equal(t, "BANK PASSBOOK", DocumentLabel(DocumentLabel("BANK_PASSBOOK")))

	labels := RequiredDocumentLabels([]string{"AADHAAR", "LAND_RECORD"})
	assert.Equal(t, []string{"AADHAAR", "LAND RECORD"}, labels)
}

func TestBuildFormPayload_AadhaarWinsOverProfile(t *testing.T) {
	scheme := &domain.Scheme{
		Name:              "PM-KISAN Samman Nidhi",
		RequiredDocuments: []string{"AADHAAR", "BANK_PASSBOOK"},
	}
	profile := map[string]string{
		"name":       "Typed Name",
		"gender":     "female",
		"age":        "35",
		"occupation": "farmer",
	}
	docs := []domain.Document{
		{
			Type:   domain.DocAadhaar,
			Status: domain.DocExtracted,
			ExtractedFields: map[string]any{
				"name":           "Ram Kumar",
				"father_name":    "Shyam Kumar",
				"dob":            "01/01/1988",
				"aadhaar_number": "1234 5678 9012",
				"address":        map[string]any{"district": "Bhopal", "state": "Madhya Pradesh"},
			},
		},
		{
			Type:            domain.DocBankPassbook,
			Status:          domain.DocExtracted,
			ExtractedFields: map[string]any{"account_number": "000111222333", "ifsc": "SBIN0001234"},
		},
	}

	p := BuildFormPayload(scheme, profile, docs)

	assert.Equal(t, "PM-KISAN Samman Nidhi", p.SchemeName)
	assert.Equal(t, "Ram Kumar", p.Applicant.Name, "document-extracted name wins")
	assert.Equal(t, "Shyam Kumar", p.Applicant.FatherName)
	assert.Equal(t, "1234 5678 9012", p.Applicant.AadhaarNumber)
	assert.Equal(t, "female", p.Applicant.Gender, "profile fills what the document lacks")
	assert.Equal(t, "35", p.Applicant.Age)
	assert.Equal(t, "Bhopal", p.Applicant.Address["district"])
	assert.Equal(t, "000111222333", p.Documents.Bank["account_number"])
	assert.Equal(t, []string{"AADHAAR", "BANK PASSBOOK"}, p.RequiredDocuments)
}

func TestBuildFormPayload_Fallbacks(t *testing.T) {
	p := BuildFormPayload(nil, map[string]string{}, nil)

	assert.Equal(t, "Government Scheme", p.SchemeName)
	assert.Equal(t, "Applicant Name", p.Applicant.Name)
	assert.NotNil(t, p.Applicant.Address)
	assert.Empty(t, p.Applicant.Address)
	assert.NotNil(t, p.Documents.Bank)
	assert.Equal(t, []string{}, p.RequiredDocuments)
}

func TestBuildFormPayload_IgnoresFailedDocuments(t *testing.T) {
	docs := []domain.Document{
		{
			Type:         domain.DocAadhaar,
			Status:       domain.DocError,
			ErrorMessage: "blurred scan",
			ExtractedFields: map[string]any{
				"name": "Should Not Appear",
			},
		},
	}
	p := BuildFormPayload(nil, map[string]string{"name": "Typed Name"}, docs)

	assert.Equal(t, "Typed Name", p.Applicant.Name, "a failed document never contributes fields")
}

func TestBuildGrievancePayload(t *testing.T) {
	scheme := &domain.Scheme{Name: "PM-KISAN Samman Nidhi"}
	elig := &domain.EligibilityResult{IsEligible: false, Explanation: "Income exceeds the scheme limit"}
	profile := map[string]string{"name": "Ram Kumar", "state": "Madhya Pradesh"}

	p := BuildGrievancePayload(profile, scheme, elig)

	assert.Equal(t, "Ram Kumar", p.ApplicantName)
	assert.Equal(t, "PM-KISAN Samman Nidhi", p.SchemeName)
	assert.Equal(t, "Income exceeds the scheme limit", p.RejectionReason)
	assert.Equal(t, "Madhya Pradesh", p.Address)
}

func TestBuildGrievancePayload_Fallbacks(t *testing.T) {
	p := BuildGrievancePayload(nil, nil, &domain.EligibilityResult{})

	assert.Equal(t, "Applicant", p.ApplicantName)
	assert.Equal(t, "Government Scheme", p.SchemeName)
	assert.Equal(t, "Application not approved", p.RejectionReason)
	assert.Equal(t, "", p.Address)
}
