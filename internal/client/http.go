package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sevasetu/assistant/internal/domain"
)

// HTTPClient talks to the scheme service over its JSON API. Transport
// failures (including timeouts) surface as connectivity errors whose
// message says the service is unreachable; non-2xx responses surface as
// application-level rejections carrying the service's own message.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) connectivityError(err error) *domain.ServiceError {
	return &domain.ServiceError{
		Kind:    domain.ErrorKindConnectivity,
		Message: fmt.Sprintf("cannot reach the scheme service at %s, ensure it is running (%v)", c.baseURL, err),
	}
}

func rejectionError(status int, body []byte) *domain.ServiceError {
	// The service reports failures as {"detail": "..."}.
	var payload struct {
		Detail string `json:"detail"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Detail
	}
	if msg == "" {
		msg = fmt.Sprintf("scheme service error: status %d", status)
	}
	return &domain.ServiceError{Kind: domain.ErrorKindRejected, Message: msg}
}

// do sends a JSON request and decodes the JSON response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request for %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.connectivityError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.connectivityError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rejectionError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response for %s: %w", path, err)
		}
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

func (c *HTTPClient) ExtractIntent(ctx context.Context, text string, sessionID string) (*domain.Intent, error) {
	reqBody := struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id,omitempty"`
	}{Text: text, SessionID: sessionID}

	var result struct {
		ExtractedIntent domain.Intent `json:"extracted_intent"`
	}
	if err := c.do(ctx, http.MethodPost, "/intent", reqBody, &result); err != nil {
		return nil, err
	}
	return &result.ExtractedIntent, nil
}

func (c *HTTPClient) MatchSchemes(ctx context.Context, query string, attributes map[string]any, topK int) ([]domain.Scheme, error) {
	reqBody := struct {
		Query      string         `json:"query"`
		Attributes map[string]any `json:"attributes,omitempty"`
		TopK       int            `json:"top_k"`
	}{Query: query, Attributes: attributes, TopK: topK}

	var result struct {
		Schemes []domain.Scheme `json:"schemes"`
	}
	if err := c.do(ctx, http.MethodPost, "/scheme-match", reqBody, &result); err != nil {
		return nil, err
	}
	return result.Schemes, nil
}

func (c *HTTPClient) ValidateEligibility(ctx context.Context, schemeID string, profile map[string]any) (*domain.EligibilityResult, error) {
	reqBody := struct {
		SchemeID    string         `json:"scheme_id"`
		UserProfile map[string]any `json:"user_profile"`
	}{SchemeID: schemeID, UserProfile: profile}

	var result domain.EligibilityResult
	if err := c.do(ctx, http.MethodPost, "/validate-eligibility", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, fileName string, file io.Reader, docType domain.DocumentType, userID string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("create multipart file field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.WriteField("document_type", string(docType)); err != nil {
		return "", fmt.Errorf("write document_type field: %w", err)
	}
	if err := mw.WriteField("user_id", userID); err != nil {
		return "", fmt.Errorf("write user_id field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-documents", &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.connectivityError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.connectivityError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", rejectionError(resp.StatusCode, respBody)
	}

	var result struct {
		DocumentID string `json:"document_id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal upload response: %w", err)
	}
	return result.DocumentID, nil
}

func (c *HTTPClient) ExtractOCR(ctx context.Context, documentID string) (*domain.OCRResult, error) {
	var result domain.OCRResult
	if err := c.do(ctx, http.MethodPost, "/extract-ocr/"+documentID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ValidateDocuments(ctx context.Context, userID string, docs []domain.DocumentPayload) (*domain.ValidationResult, error) {
	reqBody := struct {
		UserID    string                   `json:"user_id"`
		Documents []domain.DocumentPayload `json:"documents"`
	}{UserID: userID, Documents: docs}

	var result domain.ValidationResult
	if err := c.do(ctx, http.MethodPost, "/validate-documents", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GenerateForm(ctx context.Context, payload *domain.FormPayload) (*domain.FormResult, error) {
	var result domain.FormResult
	if err := c.do(ctx, http.MethodPost, "/generate-form", payload, &result); err != nil {
		return nil, err
	}
	if result.DownloadURL == "" && result.FileName != "" {
		result.DownloadURL = c.DownloadURL(result.FileName)
	}
	return &result, nil
}

func (c *HTTPClient) GenerateGrievance(ctx context.Context, payload *domain.GrievancePayload) (*domain.GrievanceResult, error) {
	var result domain.GrievanceResult
	if err := c.do(ctx, http.MethodPost, "/generate-grievance", payload, &result); err != nil {
		return nil, err
	}
	if result.DownloadURL == "" && result.FileName != "" {
		result.DownloadURL = c.DownloadURL(result.FileName)
	}
	return &result, nil
}

// DownloadURL builds the URL of a generated artifact. Pure string
// assembly, no network call.
func (c *HTTPClient) DownloadURL(fileName string) string {
	return c.baseURL + "/download/form/" + fileName
}
