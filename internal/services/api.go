// API service for making raw HTTP-JSON requests to the CRM
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/arredohq/arredo/internal/shared"
	"golang.org/x/oauth2"
)

// APIService provides methods for making raw HTTP requests to the CRM.
//
// Every request carries `Authorization: Bearer <token>` and `X-Tenant-Id`
// headers when a token source is configured; without one the headers are
// simply omitted (the server rejects protected endpoints on its own).
// Non-2xx responses are returned as errors carrying the status code.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	tenantID   string
}

// NewAPIService creates a new API service instance for the CRM.
func NewAPIService(baseURL, tenantID string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		tenantID:   tenantID,
	}
}

// SetTokenSource installs the token source used for the Authorization header.
// Passing nil reverts the client to unauthenticated requests.
func (a *APIService) SetTokenSource(ts oauth2.TokenSource) {
	a.tokens = ts
}

// BaseURL returns the configured CRM base URL.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a parsed API response.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
	Success    bool // set for empty or non-JSON 2xx bodies (e.g. DELETE acks)
}

// Decode unmarshals the JSON body into target.
func (r *APIResponse) Decode(target any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (a *APIService) authorize(req *http.Request) error {
	if a.tokens == nil {
		return nil
	}

	token, err := a.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if token.AccessToken == "" {
		return nil
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	if a.tenantID != "" {
		req.Header.Set("X-Tenant-Id", a.tenantID)
	}
	return nil
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	if err := a.authorize(req); err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil && len(body) > 0 {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	} else {
		apiResp.Success = true
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return a.do(req)
}

// Post performs a request with a JSON body. A nil payload sends an empty body.
// The method defaults to POST; PUT and DELETE reuse this path the same way
// the web client funnels every mutation through one helper.
func (a *APIService) Post(ctx context.Context, path string, payload any, method string) (*APIResponse, error) {
	if method == "" {
		method = http.MethodPost
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return a.do(req)
}

// PostForm performs a multipart/form-data request. fields are plain form
// values; files maps a field name to a filename and content reader. Used for
// section image uploads and the generate-design prompt.
func (a *APIService) PostForm(ctx context.Context, path, method string, fields map[string]string, files map[string]FormFile) (*APIResponse, error) {
	if method == "" {
		method = http.MethodPost
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	for name, file := range files {
		part, err := writer.CreateFormFile(name, file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", name, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, fmt.Errorf("failed to copy form file %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	return a.do(req)
}

// FormFile is one file attachment in a multipart request.
type FormFile struct {
	Name   string
	Reader io.Reader
}
