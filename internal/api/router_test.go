package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sevasetu/assistant/internal/client"
	"github.com/sevasetu/assistant/internal/domain"
	"github.com/sevasetu/assistant/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *client.MockClient) {
	t.Helper()
	mock := client.NewMockClient()
	app := NewApp(store.NewSessionStore(time.Hour), mock, zap.NewNop())
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv, mock
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestFullJourney(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + id

	// Free-text input matches schemes.
	resp, body := doJSON(t, http.MethodPost, base+"/input", map[string]string{
		"text": "I am a farmer with 1.5 hectares in MP",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "schemes", body["stage"])
	require.NotEmpty(t, body["candidate_schemes"])

	// Pick the top candidate.
	resp, body = doJSON(t, http.MethodPost, base+"/scheme", map[string]string{"scheme_id": "pm-kisan"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "eligibility", body["stage"])

	// Fill in a couple of profile fields.
	resp, _ = doJSON(t, http.MethodPut, base+"/profile", map[string]string{"age": "35", "category": "OBC"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Eligible verdict moves to documents.
	resp, body = doJSON(t, http.MethodPost, base+"/eligibility", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "documents", body["stage"])

	// Upload one document.
	resp, body = uploadDocument(t, base, "AADHAAR", "aadhaar.jpg", "image-bytes")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docs := body["documents"].([]any)
	require.Len(t, docs, 1)
	assert.Equal(t, "extracted", docs[0].(map[string]any)["status"])

	// Finalize generates the form.
	resp, body = doJSON(t, http.MethodPost, base+"/finalize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "form", body["stage"])
	form := body["form_result"].(map[string]any)
	assert.NotEmpty(t, form["application_reference"])

	// Status projection reflects the finished journey.
	resp, body = doJSON(t, http.MethodGet, base+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "form", body["current_stage"])
	collected := body["data_collected"].(map[string]any)
	assert.Equal(t, true, collected["form"])

	// Restart wipes the journey.
	resp, body = doJSON(t, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "input", body["stage"])
	assert.Nil(t, body["form_result"])
}

func uploadDocument(t *testing.T, base, docType, fileName, content string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("document_type", docType))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, base+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp, decoded
}

func TestIneligibleJourneyOffersGrievance(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.ValidateEligibilityResponse = &domain.EligibilityResult{
		IsEligible:  false,
		Explanation: "Income exceeds the scheme limit",
	}

	id := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + id
	_, _ = doJSON(t, http.MethodPost, base+"/input", map[string]string{"text": "farmer"})
	_, _ = doJSON(t, http.MethodPost, base+"/scheme", map[string]string{"scheme_id": "pm-kisan"})

	resp, body := doJSON(t, http.MethodPost, base+"/eligibility", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "eligibility", body["stage"], "an ineligible verdict does not advance")

	resp, body = doJSON(t, http.MethodPost, base+"/grievance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	grievance := body["grievance_result"].(map[string]any)
	assert.NotEmpty(t, grievance["grievance_reference"])

	// Back to the candidate list drops the selection.
	resp, body = doJSON(t, http.MethodPost, base+"/schemes/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "schemes", body["stage"])
	assert.Nil(t, body["selected_scheme"])
	assert.Nil(t, body["eligibility_result"])
}

func TestErrorStatusMapping(t *testing.T) {
	srv, mock := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + id

	// Malformed session id.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid session id", body["error"])

	// Unknown session.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/sessions/b4b9f1de-5a49-4b95-a9b0-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Precondition failure.
	resp, _ = doJSON(t, http.MethodPost, base+"/input", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Remote failure surfaces as a bad gateway with the service's message.
	mock.ExtractIntentError = &domain.ServiceError{
		Kind:    domain.ErrorKindConnectivity,
		Message: "cannot reach the scheme service at http://localhost:8000, ensure it is running",
	}
	resp, body = doJSON(t, http.MethodPost, base+"/input", map[string]string{"text": "farmer"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "cannot reach")

	// The failure lands in the session's error slot and can be dismissed.
	resp, body = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["last_error"], "cannot reach")

	resp, body = doJSON(t, http.MethodDelete, base+"/error", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["last_error"])
}

func TestDocumentUploadWithoutFile(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)
	base := srv.URL + "/v1/sessions/" + id
	_, _ = doJSON(t, http.MethodPost, base+"/input", map[string]string{"text": "farmer"})
	_, _ = doJSON(t, http.MethodPost, base+"/scheme", map[string]string{"scheme_id": "pm-kisan"})
	_, _ = doJSON(t, http.MethodPost, base+"/eligibility", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", "AADHAAR"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, base+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createSession(t, srv)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/sessions/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, mock := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	mock.PingError = &domain.ServiceError{Kind: domain.ErrorKindConnectivity, Message: "down"}
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	_ = createSession(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, body["request_count"], float64(1))
	assert.NotEmpty(t, body["go_version"])
}
