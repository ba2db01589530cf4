package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arredohq/arredo/internal/shared"
	"golang.org/x/oauth2"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/api", "tenant-1", customClient)

			if srv.baseURL != "http://example.com/api" {
				t.Errorf("expected baseURL 'http://example.com/api', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
			if srv.tenantID != "tenant-1" {
				t.Errorf("expected tenant 'tenant-1', got %s", srv.tenantID)
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", "", nil)

			if srv.baseURL != "http://localhost:8080/api" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			srv := NewAPIService("http://example.com/api/", "", nil)

			if srv.baseURL != "http://example.com/api" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", "", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Headers", func(t *testing.T) {
		t.Run("Bearer And Tenant Sent With Token Source", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
					t.Errorf("expected Authorization 'Bearer token-123', got %q", got)
				}
				if got := r.Header.Get("X-Tenant-Id"); got != "tenant-1" {
					t.Errorf("expected X-Tenant-Id 'tenant-1', got %q", got)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "tenant-1", nil)
			srv.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "token-123"}))

			if _, err := srv.Get(context.Background(), "/test"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Headers Omitted Without Token Source", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "" {
					t.Errorf("expected no Authorization header, got %q", got)
				}
				if got := r.Header.Get("X-Tenant-Id"); got != "" {
					t.Errorf("expected no X-Tenant-Id header, got %q", got)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "tenant-1", nil)

			if _, err := srv.Get(context.Background(), "/test"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Token Source Error Wraps ErrNotAuthenticated", func(t *testing.T) {
			srv := NewAPIService("http://example.com", "", nil)
			srv.SetTokenSource(failingTokenSource{})

			_, err := srv.Get(context.Background(), "/test")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.JSONData == nil {
				t.Error("expected JSONData to be populated")
			}
		})

		t.Run("Empty Body Marks Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON response")
			}
			if !resp.Success {
				t.Error("expected Success set for empty 2xx body")
			}
		})

		t.Run("Non-2xx Returns ErrAPIRequest With Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			_, err := srv.Get(context.Background(), "/test")

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "403") {
				t.Errorf("expected status code in error, got %v", err)
			}
		})

		t.Run("Connection Failure", func(t *testing.T) {
			srv := NewAPIService("http://127.0.0.1:1", "", nil)

			if _, err := srv.Get(context.Background(), "/test"); err == nil {
				t.Error("expected an error")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Marshals Payload And Sets Content Type", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected JSON content type, got %q", ct)
				}
				body, _ := io.ReadAll(r.Body)
				if !strings.Contains(string(body), `"name":"Test"`) {
					t.Errorf("expected payload in body, got %s", body)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			_, err := srv.Post(context.Background(), "/items", map[string]string{"name": "Test"}, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Nil Payload Sends Empty Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %s", body)
				}
				if ct := r.Header.Get("Content-Type"); ct != "" {
					t.Errorf("expected no content type, got %q", ct)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, "", nil)
			if _, err := srv.Post(context.Background(), "/items", nil, ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Reuses Path For PUT And DELETE", func(t *testing.T) {
			for _, method := range []string{http.MethodPut, http.MethodDelete} {
				method := method
				t.Run(method, func(t *testing.T) {
					server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						if r.Method != method {
							t.Errorf("expected %s method, got %s", method, r.Method)
						}
						w.WriteHeader(http.StatusOK)
					}))
					defer server.Close()

					srv := NewAPIService(server.URL, "", nil)
					if _, err := srv.Post(context.Background(), "/items/1", nil, method); err != nil {
						t.Fatalf("expected no error, got %v", err)
					}
				})
			}
		})
	})

	t.Run("PostForm", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "multipart/form-data" {
				t.Errorf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
			}

			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if got := r.FormValue("prompt"); got != "a cozy room" {
				t.Errorf("expected prompt field, got %q", got)
			}

			file, header, err := r.FormFile("image")
			if err != nil {
				t.Fatalf("expected image file: %v", err)
			}
			defer file.Close()
			if header.Filename != "room.jpg" {
				t.Errorf("expected filename room.jpg, got %q", header.Filename)
			}
			content, _ := io.ReadAll(file)
			if string(content) != "jpeg-bytes" {
				t.Errorf("expected file content, got %q", content)
			}

			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, "", nil)
		_, err := srv.PostForm(context.Background(), "/upload", "",
			map[string]string{"prompt": "a cozy room"},
			map[string]FormFile{"image": {Name: "room.jpg", Reader: strings.NewReader("jpeg-bytes")}},
		)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Decode", func(t *testing.T) {
		t.Run("Unmarshals JSON Body", func(t *testing.T) {
			resp := &APIResponse{Body: []byte(`{"id":"p1","name":"Apartment"}`)}

			var target struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := resp.Decode(&target); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if target.ID != "p1" || target.Name != "Apartment" {
				t.Errorf("unexpected decode result: %+v", target)
			}
		})

		t.Run("Empty Body Is A No-Op", func(t *testing.T) {
			resp := &APIResponse{}

			var target map[string]any
			if err := resp.Decode(&target); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Invalid JSON Returns Error", func(t *testing.T) {
			resp := &APIResponse{Body: []byte("not json")}

			var target map[string]any
			if err := resp.Decode(&target); err == nil {
				t.Error("expected an error")
			}
		})
	})
}

// failingTokenSource always errors.
type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("token store empty")
}
