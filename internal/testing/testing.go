// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/services"
)

// MockService is a test double for [services.Service]. Function fields
// override individual operations; unset operations return zero values.
type MockService struct {
	LoginFn          func(ctx context.Context, usernameOrEmail, password string) (*services.TokenPair, error)
	ProjectsFn       func(ctx context.Context, detailed bool) ([]models.Project, error)
	ProjectByIDFn    func(ctx context.Context, projectID string) (*models.Project, error)
	SectionByIDFn    func(ctx context.Context, sectionID string) (*models.Section, error)
	GenerateDesignFn func(ctx context.Context, projectID, sectionID, prompt string) error
	SearchProductsFn func(ctx context.Context, criteria services.SearchCriteria) (*services.ProductPage, error)
}

func (m *MockService) Login(ctx context.Context, usernameOrEmail, password string) (*services.TokenPair, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, usernameOrEmail, password)
	}
	return &services.TokenPair{}, nil
}

func (m *MockService) Register(ctx context.Context, name, email, password string) (*services.TokenPair, error) {
	return &services.TokenPair{}, nil
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	return &models.User{ID: "user-1", Name: "Mock User", Email: "mock@example.com"}, nil
}

func (m *MockService) Projects(ctx context.Context, detailed bool) ([]models.Project, error) {
	if m.ProjectsFn != nil {
		return m.ProjectsFn(ctx, detailed)
	}
	return []models.Project{}, nil
}

func (m *MockService) ProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	if m.ProjectByIDFn != nil {
		return m.ProjectByIDFn(ctx, projectID)
	}
	return &models.Project{ID: projectID}, nil
}

func (m *MockService) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	return project, nil
}

func (m *MockService) RemoveProject(ctx context.Context, projectID string) error { return nil }

func (m *MockService) RenameProject(ctx context.Context, projectID, name string) error { return nil }

func (m *MockService) ProjectSections(ctx context.Context, projectID string) ([]models.Section, error) {
	return []models.Section{}, nil
}

func (m *MockService) SectionByID(ctx context.Context, sectionID string) (*models.Section, error) {
	if m.SectionByIDFn != nil {
		return m.SectionByIDFn(ctx, sectionID)
	}
	return &models.Section{ID: sectionID}, nil
}

func (m *MockService) AddSection(ctx context.Context, projectID string, section *models.Section, imagePath string) (*models.Section, error) {
	return section, nil
}

func (m *MockService) UpdateSection(ctx context.Context, sectionID string, section *models.Section) (*models.Section, error) {
	return section, nil
}

func (m *MockService) RenameSection(ctx context.Context, sectionID, title string) error { return nil }

func (m *MockService) DeleteSection(ctx context.Context, sectionID string) error { return nil }

func (m *MockService) AddProduct(ctx context.Context, sectionID string, selection models.ProductSelection) (*models.Section, error) {
	return &models.Section{ID: sectionID, Products: []models.ProductSelection{selection}}, nil
}

func (m *MockService) RemoveProduct(ctx context.Context, sectionID, productID string) error {
	return nil
}

func (m *MockService) GenerateDesign(ctx context.Context, projectID, sectionID, prompt string) error {
	if m.GenerateDesignFn != nil {
		return m.GenerateDesignFn(ctx, projectID, sectionID, prompt)
	}
	return nil
}

func (m *MockService) SearchProducts(ctx context.Context, criteria services.SearchCriteria) (*services.ProductPage, error) {
	if m.SearchProductsFn != nil {
		return m.SearchProductsFn(ctx, criteria)
	}
	return &services.ProductPage{}, nil
}

func (m *MockService) ProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (m *MockService) ProductVariants(ctx context.Context, name string) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (m *MockService) SampleRooms(ctx context.Context) ([]services.SampleRoom, error) {
	return []services.SampleRoom{}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
