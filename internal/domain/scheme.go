package domain

// Intent is the structured result of intent extraction over the user's
// free-text description.
type Intent struct {
	Summary       string         `json:"summary"`
	SchemeType    string         `json:"scheme_type,omitempty"`
	IntentLabel   string         `json:"intent,omitempty"`
	KeyAttributes map[string]any `json:"key_attributes,omitempty"`
}

// Scheme is a government welfare program candidate returned by semantic
// matching, ranked by score.
type Scheme struct {
	SchemeID          string   `json:"scheme_id"`
	Name              string   `json:"name"`
	ShortName         string   `json:"short_name,omitempty"`
	Category          string   `json:"category,omitempty"`
	Description       string   `json:"description,omitempty"`
	Benefits          string   `json:"benefits,omitempty"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
	OfficialWebsite   string   `json:"official_website,omitempty"`
	Score             float64  `json:"score,omitempty"`
}

type RuleStatus string

const (
	RulePass    RuleStatus = "pass"
	RuleFail    RuleStatus = "fail"
	RuleUnknown RuleStatus = "unknown"
)

// RuleResult is one evaluated eligibility criterion.
type RuleResult struct {
	Rule        string     `json:"rule"`
	Status      RuleStatus `json:"status"`
	ActualValue string     `json:"actual_value,omitempty"`
}

// Alternative is a scheme the user may qualify for instead, with the
// fraction of its rules the profile satisfied.
type Alternative struct {
	SchemeID   string  `json:"scheme_id,omitempty"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Benefits   string  `json:"benefits,omitempty"`
	MatchRatio float64 `json:"match_ratio"`
}

// EligibilityResult is the rule-based verdict for the selected scheme.
type EligibilityResult struct {
	IsEligible   bool          `json:"is_eligible"`
	RuleResults  []RuleResult  `json:"rule_results,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
}
