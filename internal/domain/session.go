package domain

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageInput       Stage = "input"
	StageSchemes     Stage = "schemes"
	StageEligibility Stage = "eligibility"
	StageDocuments   Stage = "documents"
	StageForm        Stage = "form"
)

func ValidStage(s string) bool {
	switch Stage(s) {
	case StageInput, StageSchemes, StageEligibility, StageDocuments, StageForm:
		return true
	}
	return false
}

// validTransitions lists, per stage, the stages a session may move to.
// Backward moves (eligibility -> schemes, form -> input) cover the
// "view other schemes" and "start new application" operations.
var validTransitions = map[Stage][]Stage{
	StageInput:       {StageSchemes},
	StageSchemes:     {StageEligibility, StageInput},
	StageEligibility: {StageDocuments, StageSchemes},
	StageDocuments:   {StageForm},
	StageForm:        {StageInput},
}

var stageDescriptions = map[Stage]string{
	StageInput:       "Tell us about yourself and what you need",
	StageSchemes:     "Finding matching government schemes",
	StageEligibility: "Checking your eligibility",
	StageDocuments:   "Upload your documents",
	StageForm:        "Application ready!",
}

// Describe returns the human-readable description of a stage.
func (s Stage) Describe() string {
	return stageDescriptions[s]
}

// NextStages returns the stages reachable from s.
func (s Stage) NextStages() []Stage {
	return validTransitions[s]
}

// Transition records one stage change for the session history.
type Transition struct {
	From   Stage     `json:"from,omitempty"`
	To     Stage     `json:"to"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// Session is the single mutable aggregate for one user journey. All fields
// beyond ID and Stage start empty and accumulate as transitions succeed.
type Session struct {
	ID               uuid.UUID          `json:"id"`
	Stage            Stage              `json:"stage"`
	RawInput         string             `json:"raw_input,omitempty"`
	Intent           *Intent            `json:"intent,omitempty"`
	CandidateSchemes []Scheme           `json:"candidate_schemes,omitempty"`
	SelectedScheme   *Scheme            `json:"selected_scheme,omitempty"`
	Profile          map[string]string  `json:"profile,omitempty"`
	Eligibility      *EligibilityResult `json:"eligibility_result,omitempty"`
	Documents        []Document         `json:"documents,omitempty"`
	Validation       *ValidationResult  `json:"validation_result,omitempty"`
	Form             *FormResult        `json:"form_result,omitempty"`
	Grievance        *GrievanceResult   `json:"grievance_result,omitempty"`
	LastError        string             `json:"last_error,omitempty"`
	History          []Transition       `json:"history,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func NewSession() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New(),
		Stage:     StageInput,
		Profile:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.History = append(s.History, Transition{To: StageInput, Reason: "session created", At: now})
	return s
}

// CanAdvance reports whether a move from the current stage to the given
// stage is permitted by the transition table.
func (s *Session) CanAdvance(to Stage) bool {
	for _, next := range validTransitions[s.Stage] {
		if next == to {
			return true
		}
	}
	return false
}

// Advance moves the session to the given stage and records the change in
// the history. It returns false, without mutating anything, when the
// transition table does not allow the move.
func (s *Session) Advance(to Stage, reason string) bool {
	if !s.CanAdvance(to) {
		return false
	}
	now := time.Now()
	s.History = append(s.History, Transition{From: s.Stage, To: to, Reason: reason, At: now})
	s.Stage = to
	s.UpdatedAt = now
	return true
}

// Touch bumps the modification timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Reset returns the session to its initial state, keeping only the ID and
// creation time. Every accumulated field is dropped; carrying data across
// unrelated journeys is a privacy hazard.
func (s *Session) Reset(reason string) {
	now := time.Now()
	s.History = append(s.History, Transition{From: s.Stage, To: StageInput, Reason: reason, At: now})
	s.Stage = StageInput
	s.RawInput = ""
	s.Intent = nil
	s.CandidateSchemes = nil
	s.SelectedScheme = nil
	s.Profile = map[string]string{}
	s.Eligibility = nil
	s.Documents = nil
	s.Validation = nil
	s.Form = nil
	s.Grievance = nil
	s.LastError = ""
	s.UpdatedAt = now
}

// Clone returns a copy whose map and slice fields are independent of the
// original. Nested result values stay shared; they are replaced wholesale
// by transitions, never mutated in place.
func (s *Session) Clone() *Session {
	c := *s
	c.Profile = make(map[string]string, len(s.Profile))
	for k, v := range s.Profile {
		c.Profile[k] = v
	}
	c.CandidateSchemes = append([]Scheme(nil), s.CandidateSchemes...)
	c.Documents = append([]Document(nil), s.Documents...)
	c.History = append([]Transition(nil), s.History...)
	return &c
}

// Status is a read-only projection of a session for rendering layers.
type Status struct {
	SessionID        uuid.UUID       `json:"session_id"`
	CurrentStage     Stage           `json:"current_stage"`
	StageDescription string          `json:"stage_description"`
	NextValidStages  []Stage         `json:"next_valid_stages"`
	DataCollected    map[string]bool `json:"data_collected"`
	History          []Transition    `json:"history"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

const statusHistoryTail = 5

// GetStatus projects the session into a rendering-friendly summary.
func (s *Session) GetStatus() *Status {
	history := s.History
	if len(history) > statusHistoryTail {
		history = history[len(history)-statusHistoryTail:]
	}
	return &Status{
		SessionID:        s.ID,
		CurrentStage:     s.Stage,
		StageDescription: s.Stage.Describe(),
		NextValidStages:  s.Stage.NextStages(),
		DataCollected: map[string]bool{
			"raw_input":         s.RawInput != "",
			"intent":            s.Intent != nil,
			"candidate_schemes": len(s.CandidateSchemes) > 0,
			"selected_scheme":   s.SelectedScheme != nil,
			"profile":           len(s.Profile) > 0,
			"eligibility":       s.Eligibility != nil,
			"documents":         len(s.Documents) > 0,
			"validation":        s.Validation != nil,
			"form":              s.Form != nil,
			"grievance":         s.Grievance != nil,
		},
		History:   history,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
