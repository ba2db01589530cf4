// package formatter exports project data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/arredohq/arredo/internal/models"
)

// ExportToCSV converts a project's sections to CSV with columns: Section ID, Title, Room Type, Products, Status, Result URL
func ExportToCSV(project *models.Project) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section ID", "Title", "Room Type", "Products", "Status", "Result URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, section := range project.Sections {
		status := ""
		resultURL := section.ResultImageURL
		if d := section.LatestDesign(); d != nil {
			status = string(d.Status)
			if d.ResultImageURL != "" {
				resultURL = d.ResultImageURL
			}
		}

		record := []string{
			section.ID,
			section.Title,
			section.Type,
			strconv.Itoa(len(section.Products)),
			status,
			resultURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a project to Markdown with per-section rendering status
func ExportToMarkdown(project *models.Project) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", project.Name))

	if project.Details != "" {
		buf.WriteString(fmt.Sprintf("**Details**: %s\n\n", project.Details))
	}
	if project.Address.Line1 != "" {
		buf.WriteString(fmt.Sprintf("**Address**: %s %s\n\n", project.Address.Line1, project.Address.Line2))
	}

	buf.WriteString(fmt.Sprintf("**Sections**: %d\n\n", len(project.Sections)))

	for _, section := range project.Sections {
		buf.WriteString(fmt.Sprintf("## %s\n\n", section.Title))
		if section.Type != "" {
			buf.WriteString(fmt.Sprintf("Room type: %s\n\n", section.Type))
		}

		if d := section.LatestDesign(); d != nil {
			buf.WriteString(fmt.Sprintf("Rendering: %s\n\n", d.Status))
			if d.ResultImageURL != "" {
				buf.WriteString(fmt.Sprintf("![Rendering](%s)\n\n", d.ResultImageURL))
			}
		}

		for i, product := range section.Products {
			buf.WriteString(fmt.Sprintf("%d. %s x%d\n", i+1, product.Name, product.Quantity))
		}
		if len(section.Products) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a project to plain text format
func ExportToText(project *models.Project) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Project: %s\n", project.Name))
	if project.Details != "" {
		buf.WriteString(fmt.Sprintf("Details: %s\n", project.Details))
	}
	buf.WriteString(fmt.Sprintf("Sections: %d\n\n", len(project.Sections)))

	for i, section := range project.Sections {
		status := "no rendering"
		if d := section.LatestDesign(); d != nil {
			status = string(d.Status)
		}
		buf.WriteString(fmt.Sprintf("%d. %s [%s] - %d products (%s)\n", i+1, section.Title, section.Type, len(section.Products), status))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// SaveRendering downloads a section's latest rendering image next to path.
// Returns the written filename.
func SaveRendering(section *models.Section, path string) (string, error) {
	d := section.LatestDesign()
	if d == nil || (d.ResultImageURL == "" && d.ImageURL == "") {
		return "", fmt.Errorf("section %s has no rendering image", section.ID)
	}

	url := d.ResultImageURL
	if url == "" {
		url = d.ImageURL
	}

	data, err := DownloadImage(url)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = section.ID + "_rendering.jpg"
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}

// ExportResult contains the paths of files created by WriteExport
type ExportResult struct {
	DataFile     string
	MetadataFile string
}

// WriteExport exports a project in the requested format with an accompanying metadata JSON file.
//
// Defaults to the project ID as the base filename & creates {base}_sections.{ext} and {base}_metadata.json
func WriteExport(project *models.Project, format, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = project.ID
	}

	var data []byte
	var ext string
	var err error

	switch format {
	case "csv":
		data, err = ExportToCSV(project)
		ext = ".csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(project)
		ext = ".md"
	case "txt", "text", "":
		data, err = ExportToText(project)
		ext = ".txt"
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate export: %w", err)
	}

	dataFile := baseFilepath + "_sections" + ext
	if err := os.WriteFile(dataFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	meta := *project
	meta.Sections = nil
	metadataJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &ExportResult{
		DataFile:     dataFile,
		MetadataFile: metadataFile,
	}, nil
}
