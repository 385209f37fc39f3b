package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/sevasetu/assistant/internal/domain"
)

// prefillFields are the profile fields that intent extraction may pre-fill.
// Fields absent from the extracted attributes are left untouched.
var prefillFields = []string{
	"age", "occupation", "income", "category",
	"gender", "state", "residence", "land_holding",
}

// PrefillProfile returns a copy of profile with non-empty extracted
// attributes written over the corresponding fields. The merge is
// left-biased on presence: an attribute missing from attrs never clears a
// value the user already entered.
func PrefillProfile(profile map[string]string, attrs map[string]any) map[string]string {
	merged := make(map[string]string, len(profile)+len(prefillFields))
	for k, v := range profile {
		merged[k] = v
	}
	for _, field := range prefillFields {
		v, ok := attrs[field]
		if !ok {
			continue
		}
		if s := attrString(v); s != "" {
			merged[field] = s
		}
	}
	return merged
}

// CoerceProfile builds the outbound eligibility payload. Empty values are
// omitted; a value is sent as a number if and only if the entire trimmed
// string parses as one, otherwise it is sent as text. This is the observed
// upstream heuristic: "OBC" stays text, "150000" becomes 150000. Numeric-
// looking enumerations (postal codes) would coerce too; that risk is
// accepted rather than special-cased. Non-finite parses ("Inf", "NaN")
// stay text, since JSON cannot carry them.
func CoerceProfile(profile map[string]string) map[string]any {
	out := make(map[string]any, len(profile))
	for k, v := range profile {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			out[k] = n
		} else {
			out[k] = v
		}
	}
	return out
}

// DocumentLabel turns a required-document code into its display label by
// replacing underscores with spaces. Codes outside the known enumeration
// pass through unchanged apart from the same substitution.
func DocumentLabel(code string) string {
	return strings.ReplaceAll(code, "_", " ")
}

// RequiredDocumentLabels maps scheme document codes to display labels.
func RequiredDocumentLabels(codes []string) []string {
	labels := make([]string, 0, len(codes))
	for _, c := range codes {
		labels = append(labels, DocumentLabel(c))
	}
	return labels
}

// BuildFormPayload assembles the form-generation request from the selected
// scheme, the user profile, and the processed documents. Precedence when
// sources conflict: Aadhaar-extracted fields win over profile fields, which
// win over static fallbacks. Bank-passbook fields pass through verbatim.
func BuildFormPayload(scheme *domain.Scheme, profile map[string]string, docs []domain.Document) *domain.FormPayload {
	aadhaar := extractedFields(docs, domain.DocAadhaar)
	bank := extractedFields(docs, domain.DocBankPassbook)

	schemeName := "Government Scheme"
	required := []string{}
	if scheme != nil {
		if scheme.Name != "" {
			schemeName = scheme.Name
		}
		required = RequiredDocumentLabels(scheme.RequiredDocuments)
	}

	return &domain.FormPayload{
		SchemeName: schemeName,
		Applicant: domain.Applicant{
			Name:          firstNonEmpty(stringField(aadhaar, "name"), profile["name"], "Applicant Name"),
			FatherName:    stringField(aadhaar, "father_name"),
			DOB:           stringField(aadhaar, "dob"),
			Gender:        firstNonEmpty(stringField(aadhaar, "gender"), profile["gender"]),
			Age:           profile["age"],
			Category:      profile["category"],
			Phone:         profile["phone"],
			AadhaarNumber: stringField(aadhaar, "aadhaar_number"),
			Address:       objectField(aadhaar, "address"),
			Occupation:    profile["occupation"],
			Income:        profile["income"],
			LandHolding:   profile["land_holding"],
		},
		Documents:         domain.FormDocuments{Bank: bank},
		RequiredDocuments: required,
	}
}

// BuildGrievancePayload assembles the grievance request from profile and
// eligibility data only; document extraction never feeds a grievance.
func BuildGrievancePayload(profile map[string]string, scheme *domain.Scheme, elig *domain.EligibilityResult) *domain.GrievancePayload {
	schemeName := ""
	if scheme != nil {
		schemeName = scheme.Name
	}
	reason := ""
	if elig != nil {
		reason = elig.Explanation
	}
	return &domain.GrievancePayload{
		ApplicantName:   firstNonEmpty(profile["name"], "Applicant"),
		SchemeName:      firstNonEmpty(schemeName, "Government Scheme"),
		RejectionReason: firstNonEmpty(reason, "Application not approved"),
		Address:         profile["state"],
	}
}

// extractedFields returns the OCR fields of the first successfully
// extracted document of the given type, or an empty map.
func extractedFields(docs []domain.Document, t domain.DocumentType) map[string]any {
	for _, d := range docs {
		if d.Type == t && d.Status == domain.DocExtracted && d.ExtractedFields != nil {
			return d.ExtractedFields
		}
	}
	return map[string]any{}
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return attrString(v)
}

func objectField(m map[string]any, key string) map[string]any {
	if obj, ok := m[key].(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// attrString renders an extracted attribute value as a profile string.
// JSON numbers arrive as float64 and must not pick up an exponent.
func attrString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return ""
	}
}
