package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/shared"
)

// newTestCRM wires a CRMService against a recording test server.
func newTestCRM(t *testing.T, handler http.HandlerFunc) (*CRMService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCRMService(NewAPIService(server.URL, "tenant-1", nil), "acme", ""), server
}

func TestCRMService(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		t.Run("posts credentials with company slug", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/login" {
					t.Errorf("expected POST /login, got %s %s", r.Method, r.URL.Path)
				}

				var payload map[string]string
				json.NewDecoder(r.Body).Decode(&payload)
				if payload["username"] != "me@example.com" || payload["companySlug"] != "acme" {
					t.Errorf("unexpected payload: %v", payload)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(TokenPair{
					AccessToken:  "access",
					RefreshToken: "refresh",
					User:         models.User{ID: "u1", Email: "me@example.com"},
				})
			})

			pair, err := svc.Login(context.Background(), "me@example.com", "secret")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pair.AccessToken != "access" || pair.User.ID != "u1" {
				t.Errorf("unexpected token pair: %+v", pair)
			}
		})

		t.Run("wraps rejection in ErrAuthFailed", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})

			_, err := svc.Login(context.Background(), "me@example.com", "wrong")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("Projects", func(t *testing.T) {
		t.Run("list", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/projects/my-projects" {
					t.Errorf("expected /projects/my-projects, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]models.Project{{ID: "p1", Name: "Apartment"}})
			})

			projects, err := svc.Projects(context.Background(), false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(projects) != 1 || projects[0].ID != "p1" {
				t.Errorf("unexpected projects: %v", projects)
			}
		})

		t.Run("detailed list uses the detailed path", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/projects/my-projects/detailed" {
					t.Errorf("expected detailed path, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]models.Project{})
			})

			if _, err := svc.Projects(context.Background(), true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("rename hits the update-name path", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/projects/p1/update-name/Loft" {
					t.Errorf("expected POST /projects/p1/update-name/Loft, got %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(http.StatusOK)
			})

			if err := svc.RenameProject(context.Background(), "p1", "Loft"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("remove issues DELETE", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/projects/p1" {
					t.Errorf("expected DELETE /projects/p1, got %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(http.StatusOK)
			})

			if err := svc.RemoveProject(context.Background(), "p1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("missing project wraps ErrProjectNotFound", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			_, err := svc.ProjectByID(context.Background(), "nope")
			if !errors.Is(err, shared.ErrProjectNotFound) {
				t.Errorf("expected ErrProjectNotFound, got %v", err)
			}
		})
	})

	t.Run("Sections", func(t *testing.T) {
		t.Run("fetch by id", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/projects/sections/s1" {
					t.Errorf("expected /projects/sections/s1, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(models.Section{
					ID:     "s1",
					Title:  "Living Room",
					Design: &models.Design{Status: models.StatusProcessing},
				})
			})

			section, err := svc.SectionByID(context.Background(), "s1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !section.Processing() {
				t.Error("expected section processing")
			}
		})

		t.Run("missing section wraps ErrSectionNotFound", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})

			_, err := svc.SectionByID(context.Background(), "nope")
			if !errors.Is(err, shared.ErrSectionNotFound) {
				t.Errorf("expected ErrSectionNotFound, got %v", err)
			}
		})

		t.Run("add uploads section JSON and image", func(t *testing.T) {
			imagePath := filepath.Join(t.TempDir(), "room.jpg")
			if err := os.WriteFile(imagePath, []byte("jpeg-bytes"), 0644); err != nil {
				t.Fatalf("failed to write image fixture: %v", err)
			}

			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/projects/p1/sections" {
					t.Errorf("expected POST /projects/p1/sections, got %s %s", r.Method, r.URL.Path)
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}

				var section models.Section
				if err := json.Unmarshal([]byte(r.FormValue("section")), &section); err != nil {
					t.Fatalf("section field is not JSON: %v", err)
				}
				if section.Title != "Living Room" {
					t.Errorf("expected section title in form, got %q", section.Title)
				}

				if _, header, err := r.FormFile("image"); err != nil {
					t.Errorf("expected image file: %v", err)
				} else if header.Filename != "room.jpg" {
					t.Errorf("expected filename room.jpg, got %q", header.Filename)
				}

				section.ID = "s1"
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(section)
			})

			created, err := svc.AddSection(context.Background(), "p1",
				&models.Section{Title: "Living Room"}, imagePath)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if created.ID != "s1" {
				t.Errorf("expected server-assigned id, got %q", created.ID)
			}
		})

		t.Run("add without image sends no file part", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if _, _, err := r.FormFile("image"); err == nil {
					t.Error("expected no image part")
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(models.Section{ID: "s1"})
			})

			if _, err := svc.AddSection(context.Background(), "p1", &models.Section{Title: "Bare"}, ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("update issues PUT", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut || r.URL.Path != "/projects/sections/s1" {
					t.Errorf("expected PUT /projects/sections/s1, got %s %s", r.Method, r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(models.Section{ID: "s1"})
			})

			if _, err := svc.UpdateSection(context.Background(), "s1", &models.Section{ID: "s1"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("product add and remove", func(t *testing.T) {
			var gotPath, gotMethod string
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotMethod = r.URL.Path, r.Method
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(models.Section{ID: "s1"})
			})

			svc.AddProduct(context.Background(), "s1", models.ProductSelection{ProductID: "prod-1", Quantity: 2})
			if gotMethod != http.MethodPost || gotPath != "/projects/sections/s1/products" {
				t.Errorf("expected POST /projects/sections/s1/products, got %s %s", gotMethod, gotPath)
			}

			svc.RemoveProduct(context.Background(), "s1", "prod-1")
			if gotMethod != http.MethodDelete || gotPath != "/projects/sections/s1/products/prod-1" {
				t.Errorf("expected DELETE of the selection, got %s %s", gotMethod, gotPath)
			}
		})
	})

	t.Run("GenerateDesign", func(t *testing.T) {
		t.Run("posts a prompt form", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/projects/p1/sections/s1/generate-design" {
					t.Errorf("expected generate-design path, got %s", r.URL.Path)
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if got := r.FormValue("prompt"); got != "a cozy room" {
					t.Errorf("expected prompt field, got %q", got)
				}
				w.WriteHeader(http.StatusOK)
			})

			if err := svc.GenerateDesign(context.Background(), "p1", "s1", "a cozy room"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("rejection wraps ErrGenerationFailed", func(t *testing.T) {
			svc, _ := newTestCRM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			})

			err := svc.GenerateDesign(context.Background(), "p1", "s1", "")
			if !errors.Is(err, shared.ErrGenerationFailed) {
				t.Errorf("expected ErrGenerationFailed, got %v", err)
			}
		})
	})

	t.Run("SampleRooms", func(t *testing.T) {
		t.Run("fetches the unauthenticated feed", func(t *testing.T) {
			feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "" {
					t.Errorf("expected unauthenticated request, got Authorization %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]SampleRoom{{ID: "r1", Name: "Studio", ImageURL: "http://img/1.jpg"}})
			}))
			defer feed.Close()

			svc := NewCRMService(NewAPIService("http://localhost:8080/api", "", nil), "acme", feed.URL)

			rooms, err := svc.SampleRooms(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(rooms) != 1 || rooms[0].ID != "r1" {
				t.Errorf("unexpected rooms: %v", rooms)
			}
		})

		t.Run("missing URL is a config error", func(t *testing.T) {
			svc := NewCRMService(NewAPIService("http://localhost:8080/api", "", nil), "acme", "")

			_, err := svc.SampleRooms(context.Background())
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}
