// package services defines interface Service for interacting with the CRM HTTP API
package services

import (
	"context"

	"github.com/arredohq/arredo/internal/models"
)

// Service defines the typed operations the arredo client performs against the
// interior-design CRM. The concrete implementation is [CRMService]; tests use
// hand-rolled doubles.
type Service interface {
	// Login authenticates with username/email and password.
	// Returns the token pair issued by the CRM.
	Login(ctx context.Context, usernameOrEmail, password string) (*TokenPair, error)

	// Register creates a new CRM account.
	Register(ctx context.Context, name, email, password string) (*TokenPair, error)

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.User, error)

	// Projects retrieves the authenticated user's projects. With detailed set,
	// sections are included in each project.
	Projects(ctx context.Context, detailed bool) ([]models.Project, error)

	// ProjectByID retrieves a single project with its sections.
	ProjectByID(ctx context.Context, projectID string) (*models.Project, error)

	// CreateProject creates a new project owned by the authenticated user.
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)

	// RemoveProject deletes a project.
	RemoveProject(ctx context.Context, projectID string) error

	// RenameProject updates a project's name.
	RenameProject(ctx context.Context, projectID, name string) error

	// ProjectSections retrieves the sections of a project.
	ProjectSections(ctx context.Context, projectID string) ([]models.Section, error)

	// SectionByID retrieves the current state of a section, including its
	// design history. This is the poll target of the generation tracker.
	SectionByID(ctx context.Context, sectionID string) (*models.Section, error)

	// AddSection creates a section under a project. imagePath optionally
	// attaches a reference photo as a multipart upload.
	AddSection(ctx context.Context, projectID string, section *models.Section, imagePath string) (*models.Section, error)

	// UpdateSection replaces a section's JSON fields.
	UpdateSection(ctx context.Context, sectionID string, section *models.Section) (*models.Section, error)

	// RenameSection updates a section's title.
	RenameSection(ctx context.Context, sectionID, title string) error

	// DeleteSection removes a section from its project.
	DeleteSection(ctx context.Context, sectionID string) error

	// AddProduct places a product selection into a section.
	AddProduct(ctx context.Context, sectionID string, selection models.ProductSelection) (*models.Section, error)

	// RemoveProduct removes a product selection from a section.
	RemoveProduct(ctx context.Context, sectionID, productID string) error

	// GenerateDesign submits an asynchronous rendering job for a section.
	// The server acknowledges immediately; completion is observed by polling
	// SectionByID until the latest design status is terminal.
	GenerateDesign(ctx context.Context, projectID, sectionID, prompt string) error

	// SearchProducts runs a catalog search with the given criteria.
	SearchProducts(ctx context.Context, criteria SearchCriteria) (*ProductPage, error)

	// ProductsByIDs fetches full product records for the given catalog ids.
	ProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error)

	// ProductVariants fetches the variants that share a product's base name.
	ProductVariants(ctx context.Context, name string) ([]models.Product, error)

	// SampleRooms fetches the curated sample room photos offered in place of
	// a user photograph.
	SampleRooms(ctx context.Context) ([]SampleRoom, error)
}

// TokenPair is the credential pair issued by the CRM login endpoint.
type TokenPair struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// SampleRoom is a curated reference photo users can pick instead of
// photographing their own room.
type SampleRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl"`
	RoomType string `json:"roomType,omitempty"`
}
