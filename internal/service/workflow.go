package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sevasetu/assistant/internal/domain"
	"github.com/sevasetu/assistant/internal/store"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransitionInFlight  = errors.New("another transition is in progress for this session")
	ErrEmptyInput          = errors.New("input text is empty")
	ErrWrongStage          = errors.New("operation is not valid in the current stage")
	ErrNoSchemeSelected    = errors.New("no scheme selected")
	ErrSchemeNotCandidate  = errors.New("scheme is not among the matched candidates")
	ErrNotIneligible       = errors.New("grievance is only available after a failed eligibility check")
	ErrNoDocuments         = errors.New("no documents have been processed")
	ErrMissingDocumentType = errors.New("document type is required")
	ErrMissingFile         = errors.New("a document file is required")
)

// WorkflowService is the stage transition engine. Each operation validates
// its preconditions against the session, performs the remote calls in
// order, and merges results only when every call succeeded, so a failed
// attempt leaves the session in its last-known-good state and is safe to
// retry. One transition per session may be in flight at a time.
type WorkflowService struct {
	sessions domain.SessionStore
	client   domain.ServiceClient
	topK     int
	logger   *zap.Logger

	inflight sync.Map // session id -> struct{}
}

func NewWorkflowService(sessions domain.SessionStore, client domain.ServiceClient, topK int, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{sessions: sessions, client: client, topK: topK, logger: logger}
}

// begin claims the session's in-flight slot.
func (s *WorkflowService) begin(id string) error {
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return ErrTransitionInFlight
	}
	return nil
}

func (s *WorkflowService) end(id string) {
	s.inflight.Delete(id)
}

// fail records the failure in the session's current-error slot without
// touching stage or any merged field, then returns the error.
func (s *WorkflowService) fail(sess *domain.Session, err error) error {
	sess.LastError = err.Error()
	sess.Touch()
	s.sessions.Save(sess)
	return err
}

func (s *WorkflowService) Create() *domain.Session {
	sess := s.sessions.Create()
	s.logger.Info("session created", zap.String("session_id", sess.ID.String()))
	return sess
}

func (s *WorkflowService) Get(id string) (*domain.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *WorkflowService) Status(id string) (*domain.Status, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.GetStatus(), nil
}

func (s *WorkflowService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.sessions.Delete(id)
	return nil
}

// SubmitInput runs intent extraction then scheme matching over the user's
// free-text need. On success the intent and ranked candidates replace any
// prior search wholesale and extracted attributes pre-fill the profile.
// The raw input is kept even when the remote calls fail, so the user can
// retry without retyping.
func (s *WorkflowService) SubmitInput(ctx context.Context, id, text string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.Stage != domain.StageInput && sess.Stage != domain.StageSchemes {
		return nil, s.fail(sess, ErrWrongStage)
	}
	if strings.TrimSpace(text) == "" {
		return nil, s.fail(sess, ErrEmptyInput)
	}
	sess.RawInput = text

	intent, err := s.client.ExtractIntent(ctx, text, sess.ID.String())
	if err != nil {
		s.logger.Warn("intent extraction failed", zap.String("session_id", id), zap.Error(err))
		return nil, s.fail(sess, err)
	}

	query := intent.Summary
	if query == "" {
		query = text
	}
	schemes, err := s.client.MatchSchemes(ctx, query, intent.KeyAttributes, s.topK)
	if err != nil {
		// Discard the extracted intent: a retry re-runs the whole transition.
		s.logger.Warn("scheme matching failed", zap.String("session_id", id), zap.Error(err))
		return nil, s.fail(sess, err)
	}

	sess.Intent = intent
	sess.CandidateSchemes = schemes
	sess.Profile = PrefillProfile(sess.Profile, intent.KeyAttributes)
	if sess.Stage == domain.StageInput {
		sess.Advance(domain.StageSchemes, "schemes matched for user input")
	} else {
		sess.Touch()
	}
	s.sessions.Save(sess)

	s.logger.Info("schemes matched",
		zap.String("session_id", id),
		zap.Int("count", len(schemes)))
	return sess, nil
}

// SelectScheme picks one of the matched candidates and moves to the
// eligibility check.
func (s *WorkflowService) SelectScheme(id, schemeID string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.Stage != domain.StageSchemes {
		return nil, s.fail(sess, ErrWrongStage)
	}

	var chosen *domain.Scheme
	for i := range sess.CandidateSchemes {
		if sess.CandidateSchemes[i].SchemeID == schemeID {
			chosen = &sess.CandidateSchemes[i]
			break
		}
	}
	if chosen == nil {
		return nil, s.fail(sess, ErrSchemeNotCandidate)
	}

	selected := *chosen
	sess.SelectedScheme = &selected
	sess.Advance(domain.StageEligibility, "scheme selected: "+selected.SchemeID)
	s.sessions.Save(sess)
	return sess, nil
}

// UpdateProfile merges user-entered profile fields into the session. An
// empty value removes the field.
func (s *WorkflowService) UpdateProfile(id string, fields map[string]string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	if sess.Profile == nil {
		sess.Profile = map[string]string{}
	}
	for k, v := range fields {
		if v == "" {
			delete(sess.Profile, k)
			continue
		}
		sess.Profile[k] = v
	}
	sess.Touch()
	s.sessions.Save(sess)
	return sess, nil
}

// SubmitEligibility coerces the profile and asks the service to evaluate
// the selected scheme's rules. An eligible verdict advances to documents;
// an ineligible one keeps the session at the eligibility stage so the user
// can generate a grievance or view other schemes.
func (s *WorkflowService) SubmitEligibility(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.SelectedScheme == nil {
		return nil, s.fail(sess, ErrNoSchemeSelected)
	}
	// The selected scheme survives advancing, so the stage gate is what
	// keeps a later re-submission from overwriting the verdict.
	if sess.Stage != domain.StageEligibility {
		return nil, s.fail(sess, ErrWrongStage)
	}

	profile := CoerceProfile(sess.Profile)
	result, err := s.client.ValidateEligibility(ctx, sess.SelectedScheme.SchemeID, profile)
	if err != nil {
		s.logger.Warn("eligibility validation failed", zap.String("session_id", id), zap.Error(err))
		return nil, s.fail(sess, err)
	}

	sess.Eligibility = result
	if result.IsEligible {
		sess.Advance(domain.StageDocuments, "eligible, requesting documents")
	} else {
		sess.Touch()
	}
	s.sessions.Save(sess)

	s.logger.Info("eligibility evaluated",
		zap.String("session_id", id),
		zap.String("scheme_id", sess.SelectedScheme.SchemeID),
		zap.Bool("eligible", result.IsEligible))
	return sess, nil
}

// GenerateGrievance produces an appeal letter after a failed eligibility
// check. The session stays at the eligibility stage.
func (s *WorkflowService) GenerateGrievance(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.Eligibility == nil || sess.Eligibility.IsEligible {
		return nil, s.fail(sess, ErrNotIneligible)
	}

	payload := BuildGrievancePayload(sess.Profile, sess.SelectedScheme, sess.Eligibility)
	result, err := s.client.GenerateGrievance(ctx, payload)
	if err != nil {
		s.logger.Warn("grievance generation failed", zap.String("session_id", id), zap.Error(err))
		return nil, s.fail(sess, err)
	}

	sess.Grievance = result
	sess.Touch()
	s.sessions.Save(sess)

	s.logger.Info("grievance generated",
		zap.String("session_id", id),
		zap.String("reference", result.GrievanceReference))
	return sess, nil
}

// ViewOtherSchemes abandons the selected scheme and its eligibility result
// and returns to the candidate list.
func (s *WorkflowService) ViewOtherSchemes(id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if !sess.Advance(domain.StageSchemes, "viewing other schemes") {
		return nil, s.fail(sess, ErrWrongStage)
	}
	sess.SelectedScheme = nil
	sess.Eligibility = nil
	s.sessions.Save(sess)
	return sess, nil
}

// ProcessDocument uploads one file and extracts its fields, strictly in
// that order since extraction needs the upload's document id. A failure at
// either step is recorded as a document entry with status "error" rather
// than raised: the user sees the mixed list and may proceed with the
// successful subset.
func (s *WorkflowService) ProcessDocument(ctx context.Context, id, docType, fileName string, file io.Reader) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.Stage != domain.StageDocuments {
		return nil, s.fail(sess, ErrWrongStage)
	}
	if docType == "" {
		return nil, s.fail(sess, ErrMissingDocumentType)
	}
	if fileName == "" || file == nil {
		return nil, s.fail(sess, ErrMissingFile)
	}
	if !domain.ValidDocumentType(docType) {
		// Unknown types are forwarded as-is; only the known set feeds
		// field derivation later.
		s.logger.Warn("unrecognized document type", zap.String("session_id", id), zap.String("type", docType))
	}

	t := domain.DocumentType(docType)
	docID, err := s.client.UploadDocument(ctx, fileName, file, t, sess.ID.String())
	if err != nil {
		return s.recordDocumentFailure(sess, uuid.NewString(), t, fileName, err), nil
	}

	ocr, err := s.client.ExtractOCR(ctx, docID)
	if err != nil {
		return s.recordDocumentFailure(sess, docID, t, fileName, err), nil
	}

	sess.Documents = append(sess.Documents, domain.Document{
		ID:              docID,
		Type:            t,
		FileName:        fileName,
		ExtractedFields: ocr.ExtractedData,
		Confidence:      ocr.Confidence,
		Status:          domain.DocExtracted,
	})
	sess.Touch()
	s.sessions.Save(sess)

	s.logger.Info("document extracted",
		zap.String("session_id", id),
		zap.String("document_id", docID),
		zap.String("type", docType))
	return sess, nil
}

func (s *WorkflowService) recordDocumentFailure(sess *domain.Session, docID string, t domain.DocumentType, fileName string, cause error) *domain.Session {
	s.logger.Warn("document processing failed",
		zap.String("session_id", sess.ID.String()),
		zap.String("type", string(t)),
		zap.Error(cause))
	sess.Documents = append(sess.Documents, domain.Document{
		ID:           docID,
		Type:         t,
		FileName:     fileName,
		Status:       domain.DocError,
		ErrorMessage: cause.Error(),
	})
	sess.Touch()
	s.sessions.Save(sess)
	return sess
}

// ValidateAndGenerate cross-validates the extracted documents (when at
// least two extracted successfully), derives the form payload, and asks
// the service to generate the filled application. Nothing merges unless
// form generation succeeds.
func (s *WorkflowService) ValidateAndGenerate(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.LastError = ""
	if sess.Stage != domain.StageDocuments {
		return nil, s.fail(sess, ErrWrongStage)
	}
	if len(sess.Documents) == 0 {
		return nil, s.fail(sess, ErrNoDocuments)
	}

	var extracted []domain.DocumentPayload
	for _, d := range sess.Documents {
		if d.Status == domain.DocExtracted {
			extracted = append(extracted, domain.DocumentPayload{
				DocumentType:  d.Type,
				ExtractedData: d.ExtractedFields,
			})
		}
	}

	var validation *domain.ValidationResult
	if len(extracted) >= 2 {
		validation, err = s.client.ValidateDocuments(ctx, sess.ID.String(), extracted)
		if err != nil {
			s.logger.Warn("document validation failed", zap.String("session_id", id), zap.Error(err))
			return nil, s.fail(sess, err)
		}
	}

	payload := BuildFormPayload(sess.SelectedScheme, sess.Profile, sess.Documents)
	form, err := s.client.GenerateForm(ctx, payload)
	if err != nil {
		// Discard the validation result: a retry re-runs the whole transition.
		s.logger.Warn("form generation failed", zap.String("session_id", id), zap.Error(err))
		return nil, s.fail(sess, err)
	}

	sess.Validation = validation
	sess.Form = form
	sess.Advance(domain.StageForm, "application form generated")
	s.sessions.Save(sess)

	s.logger.Info("application generated",
		zap.String("session_id", id),
		zap.String("reference", form.ApplicationReference))
	return sess, nil
}

// Restart resets the session to a fresh journey at the input stage. Every
// accumulated field is cleared; nothing carries over.
func (s *WorkflowService) Restart(id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.begin(id); err != nil {
		return nil, err
	}
	defer s.end(id)

	sess.Reset("start new application")
	s.sessions.Save(sess)
	s.logger.Info("session restarted", zap.String("session_id", id))
	return sess, nil
}

// DismissError clears the current-error slot.
func (s *WorkflowService) DismissError(id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.LastError = ""
	sess.Touch()
	s.sessions.Save(sess)
	return sess, nil
}
