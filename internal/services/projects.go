// CRM implementation of [Service]
//
// Endpoint paths mirror the CRM's project/section REST surface.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/shared"
)

// CRMService implements [Service] on top of [APIService].
type CRMService struct {
	api            *APIService
	companySlug    string
	sampleRoomsURL string
	products       *ProductCache
}

// NewCRMService creates a CRM client. companySlug scopes login to a tenant
// company; sampleRoomsURL points at the unauthenticated sample-room feed.
func NewCRMService(api *APIService, companySlug, sampleRoomsURL string) *CRMService {
	return &CRMService{
		api:            api,
		companySlug:    companySlug,
		sampleRoomsURL: sampleRoomsURL,
		products:       NewProductCache(),
	}
}

// Login authenticates with username/email and password.
func (s *CRMService) Login(ctx context.Context, usernameOrEmail, password string) (*TokenPair, error) {
	payload := map[string]string{
		"username":    usernameOrEmail,
		"password":    password,
		"companySlug": s.companySlug,
	}

	resp, err := s.api.Post(ctx, "/login", payload, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	var pair TokenPair
	if err := resp.Decode(&pair); err != nil {
		return nil, err
	}

	return &pair, nil
}

// Register creates a new CRM account.
func (s *CRMService) Register(ctx context.Context, name, email, password string) (*TokenPair, error) {
	payload := map[string]string{
		"name":        name,
		"email":       email,
		"password":    password,
		"companySlug": s.companySlug,
	}

	resp, err := s.api.Post(ctx, "/auth/register", payload, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	var pair TokenPair
	if err := resp.Decode(&pair); err != nil {
		return nil, err
	}

	return &pair, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *CRMService) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := s.api.Get(ctx, "/user/me")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Projects retrieves the authenticated user's projects.
func (s *CRMService) Projects(ctx context.Context, detailed bool) ([]models.Project, error) {
	path := "/projects/my-projects"
	if detailed {
		path += "/detailed"
	}

	resp, err := s.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := resp.Decode(&projects); err != nil {
		return nil, err
	}

	return projects, nil
}

// ProjectByID retrieves a single project with its sections.
func (s *CRMService) ProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	resp, err := s.api.Get(ctx, "/projects/"+url.PathEscape(projectID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProjectNotFound, err)
	}

	var project models.Project
	if err := resp.Decode(&project); err != nil {
		return nil, err
	}

	return &project, nil
}

// CreateProject creates a new project owned by the authenticated user.
func (s *CRMService) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	resp, err := s.api.Post(ctx, "/projects", project, "")
	if err != nil {
		return nil, err
	}

	var created models.Project
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}

	return &created, nil
}

// RemoveProject deletes a project.
func (s *CRMService) RemoveProject(ctx context.Context, projectID string) error {
	_, err := s.api.Post(ctx, "/projects/"+url.PathEscape(projectID), nil, http.MethodDelete)
	return err
}

// RenameProject updates a project's name.
func (s *CRMService) RenameProject(ctx context.Context, projectID, name string) error {
	path := fmt.Sprintf("/projects/%s/update-name/%s", url.PathEscape(projectID), url.PathEscape(name))
	_, err := s.api.Post(ctx, path, nil, "")
	return err
}

// ProjectSections retrieves the sections of a project.
func (s *CRMService) ProjectSections(ctx context.Context, projectID string) ([]models.Section, error) {
	resp, err := s.api.Get(ctx, fmt.Sprintf("/projects/%s/sections", url.PathEscape(projectID)))
	if err != nil {
		return nil, err
	}

	var sections []models.Section
	if err := resp.Decode(&sections); err != nil {
		return nil, err
	}

	return sections, nil
}

// SectionByID retrieves the current state of a section.
func (s *CRMService) SectionByID(ctx context.Context, sectionID string) (*models.Section, error) {
	resp, err := s.api.Get(ctx, "/projects/sections/"+url.PathEscape(sectionID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSectionNotFound, err)
	}

	var section models.Section
	if err := resp.Decode(&section); err != nil {
		return nil, err
	}

	return &section, nil
}

// AddSection creates a section under a project, optionally attaching a
// reference photo as a multipart upload.
func (s *CRMService) AddSection(ctx context.Context, projectID string, section *models.Section, imagePath string) (*models.Section, error) {
	sectionJSON, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal section: %w", err)
	}

	fields := map[string]string{"section": string(sectionJSON)}

	files := map[string]FormFile{}
	if imagePath != "" {
		f, err := os.Open(imagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		files["image"] = FormFile{Name: filepath.Base(imagePath), Reader: f}
	}

	path := fmt.Sprintf("/projects/%s/sections", url.PathEscape(projectID))
	resp, err := s.api.PostForm(ctx, path, "", fields, files)
	if err != nil {
		return nil, err
	}

	var created models.Section
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}

	return &created, nil
}

// UpdateSection replaces a section's JSON fields.
func (s *CRMService) UpdateSection(ctx context.Context, sectionID string, section *models.Section) (*models.Section, error) {
	resp, err := s.api.Post(ctx, "/projects/sections/"+url.PathEscape(sectionID), section, http.MethodPut)
	if err != nil {
		return nil, err
	}

	var updated models.Section
	if err := resp.Decode(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// RenameSection updates a section's title.
func (s *CRMService) RenameSection(ctx context.Context, sectionID, title string) error {
	path := fmt.Sprintf("/projects/sections/%s/update-name/%s", url.PathEscape(sectionID), url.PathEscape(title))
	_, err := s.api.Post(ctx, path, nil, "")
	return err
}

// DeleteSection removes a section from its project.
func (s *CRMService) DeleteSection(ctx context.Context, sectionID string) error {
	_, err := s.api.Post(ctx, "/projects/sections/"+url.PathEscape(sectionID), nil, http.MethodDelete)
	return err
}

// AddProduct places a product selection into a section.
func (s *CRMService) AddProduct(ctx context.Context, sectionID string, selection models.ProductSelection) (*models.Section, error) {
	path := fmt.Sprintf("/projects/sections/%s/products", url.PathEscape(sectionID))
	resp, err := s.api.Post(ctx, path, selection, "")
	if err != nil {
		return nil, err
	}

	var updated models.Section
	if err := resp.Decode(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// RemoveProduct removes a product selection from a section.
func (s *CRMService) RemoveProduct(ctx context.Context, sectionID, productID string) error {
	path := fmt.Sprintf("/projects/sections/%s/products/%s", url.PathEscape(sectionID), url.PathEscape(productID))
	_, err := s.api.Post(ctx, path, nil, http.MethodDelete)
	return err
}

// GenerateDesign submits an asynchronous rendering job for a section. The
// prompt travels as a form field; the server acknowledges and processes the
// job in the background.
func (s *CRMService) GenerateDesign(ctx context.Context, projectID, sectionID, prompt string) error {
	path := fmt.Sprintf("/projects/%s/sections/%s/generate-design",
		url.PathEscape(projectID), url.PathEscape(sectionID))

	_, err := s.api.PostForm(ctx, path, "", map[string]string{"prompt": prompt}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrGenerationFailed, err)
	}

	return nil
}

// ProductsByIDs fetches full product records for the given catalog ids.
func (s *CRMService) ProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error) {
	resp, err := s.api.Post(ctx, "/projects/products/by-ids", productIDs, "")
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := resp.Decode(&products); err != nil {
		return nil, err
	}

	return products, nil
}

// ProductVariants fetches the variants that share a product's base name.
func (s *CRMService) ProductVariants(ctx context.Context, name string) ([]models.Product, error) {
	resp, err := s.api.Post(ctx, "/projects/products/variants/"+url.PathEscape(name), nil, "")
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := resp.Decode(&products); err != nil {
		return nil, err
	}

	return products, nil
}

// SampleRooms fetches the curated sample room photos. The feed is served
// from the app host, unauthenticated, outside the CRM API base.
func (s *CRMService) SampleRooms(ctx context.Context) ([]SampleRoom, error) {
	if s.sampleRoomsURL == "" {
		return nil, fmt.Errorf("%w: sample rooms URL not configured", shared.ErrInvalidConfig)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sampleRoomsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var rooms []SampleRoom
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return rooms, nil
}
