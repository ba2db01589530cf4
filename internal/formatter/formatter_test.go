package formatter

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arredohq/arredo/internal/models"
)

func testProject() *models.Project {
	return &models.Project{
		ID:      "p1",
		Name:    "Harbor Apartment",
		Details: "Two bedroom refit",
		Address: models.Address{Line1: "12 Quay St", Line2: "Oslo"},
		Sections: []models.Section{
			{
				ID:    "s1",
				Title: "Living Room",
				Type:  "Home",
				Products: []models.ProductSelection{
					{ProductID: "prod-1", Name: "Oslo Sofa", Quantity: 1},
					{ProductID: "prod-2", Name: "Bergen Chair", Quantity: 2},
				},
				Design: &models.Design{
					Status:         models.StatusCompleted,
					ResultImageURL: "http://img/render-1.jpg",
				},
			},
			{
				ID:    "s2",
				Title: "Terrace",
				Type:  "Balcony & Terrace",
			},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testProject())
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("expected valid CSV, got %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Section ID" {
		t.Errorf("unexpected header: %v", records[0])
	}

	living := records[1]
	if living[1] != "Living Room" || living[3] != "2" || living[4] != "COMPLETED" || living[5] != "http://img/render-1.jpg" {
		t.Errorf("unexpected living room row: %v", living)
	}

	terrace := records[2]
	if terrace[3] != "0" || terrace[4] != "" {
		t.Errorf("unexpected terrace row: %v", terrace)
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testProject())
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"# Harbor Apartment",
		"**Details**: Two bedroom refit",
		"**Address**: 12 Quay St Oslo",
		"## Living Room",
		"Room type: Home",
		"Rendering: COMPLETED",
		"![Rendering](http://img/render-1.jpg)",
		"1. Oslo Sofa x1",
		"2. Bergen Chair x2",
		"## Terrace",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testProject())
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "Project: Harbor Apartment") {
		t.Errorf("expected project header, got:\n%s", out)
	}
	if !strings.Contains(out, "1. Living Room [Home] - 2 products (COMPLETED)") {
		t.Errorf("expected living room line, got:\n%s", out)
	}
	if !strings.Contains(out, "2. Terrace [Balcony & Terrace] - 0 products (no rendering)") {
		t.Errorf("expected terrace line, got:\n%s", out)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes data and metadata files", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "harbor")

		result, err := WriteExport(testProject(), "csv", base)
		if err != nil {
			t.Fatalf("expected export to succeed, got %v", err)
		}
		if result.DataFile != base+"_sections.csv" {
			t.Errorf("unexpected data file: %s", result.DataFile)
		}

		metadata, err := os.ReadFile(result.MetadataFile)
		if err != nil {
			t.Fatalf("expected metadata file, got %v", err)
		}

		var meta models.Project
		if err := json.Unmarshal(metadata, &meta); err != nil {
			t.Fatalf("expected metadata JSON, got %v", err)
		}
		if meta.Name != "Harbor Apartment" {
			t.Errorf("unexpected metadata: %+v", meta)
		}
		if len(meta.Sections) != 0 {
			t.Error("expected metadata without section payloads")
		}
	})

	t.Run("format extensions", func(t *testing.T) {
		cases := []struct {
			format string
			ext    string
		}{
			{"csv", ".csv"},
			{"markdown", ".md"},
			{"md", ".md"},
			{"txt", ".txt"},
			{"", ".txt"},
		}

		for _, tc := range cases {
			base := filepath.Join(t.TempDir(), "out")
			result, err := WriteExport(testProject(), tc.format, base)
			if err != nil {
				t.Fatalf("expected format %q to succeed, got %v", tc.format, err)
			}
			if !strings.HasSuffix(result.DataFile, tc.ext) {
				t.Errorf("format %q: expected extension %s, got %s", tc.format, tc.ext, result.DataFile)
			}
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		if _, err := WriteExport(testProject(), "xlsx", filepath.Join(t.TempDir(), "out")); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestSaveRendering(t *testing.T) {
	t.Run("downloads the latest rendering", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		section := &models.Section{
			ID:     "s1",
			Design: &models.Design{Status: models.StatusCompleted, ResultImageURL: server.URL + "/render.jpg"},
		}

		path := filepath.Join(t.TempDir(), "render.jpg")
		written, err := SaveRendering(section, path)
		if err != nil {
			t.Fatalf("expected save to succeed, got %v", err)
		}
		if written != path {
			t.Errorf("expected path %s, got %s", path, written)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected image file, got %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected image payload: %q", data)
		}
	})

	t.Run("fails without a rendering image", func(t *testing.T) {
		section := &models.Section{ID: "s1"}
		if _, err := SaveRendering(section, ""); err == nil {
			t.Error("expected error for section without rendering")
		}
	})

	t.Run("server failure propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		section := &models.Section{
			ID:     "s1",
			Design: &models.Design{ResultImageURL: server.URL + "/gone.jpg"},
		}
		if _, err := SaveRendering(section, filepath.Join(t.TempDir(), "out.jpg")); err == nil {
			t.Error("expected download failure")
		}
	})
}
