package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the local cache.
// Implementations include PersistedProduct and SectionSnapshot.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// DesignStatus is the lifecycle state of one generation attempt.
type DesignStatus string

const (
	StatusProcessing DesignStatus = "PROCESSING"
	StatusCompleted  DesignStatus = "COMPLETED"
	StatusFailed     DesignStatus = "FAILED"
	StatusError      DesignStatus = "ERROR"
	StatusMocked     DesignStatus = "MOCKED"
)

// Terminal reports whether the status is final. A terminal design is never
// polled for again once every interested view has unregistered.
func (s DesignStatus) Terminal() bool {
	return s != "" && s != StatusProcessing
}

// Design represents one AI rendering attempt for a section.
type Design struct {
	ID             string       `json:"id,omitempty"`
	Status         DesignStatus `json:"status,omitempty"`
	ResultImageURL string       `json:"resultImageUrl,omitempty"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	ThumbnailURL   string       `json:"thumbnailUrl,omitempty"`
	Created        time.Time    `json:"createdAt,omitempty"`
}

// ProductSelection is a product placed into a section, with the display
// fields denormalized so the section renders without a catalog lookup.
type ProductSelection struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Section pairs one reference photo and room type with selected products and
// the history of generated renderings.
type Section struct {
	ID             string             `json:"id,omitempty"`
	Title          string             `json:"title"`
	Type           string             `json:"type,omitempty"`
	Style          string             `json:"style,omitempty"`
	RootImageURL   string             `json:"rootImageUrl,omitempty"`
	ResultImageURL string             `json:"resultImageUrl,omitempty"`
	ThumbnailURL   string             `json:"thumbnailUrl,omitempty"`
	Products       []ProductSelection `json:"products,omitempty"`
	Design         *Design            `json:"design,omitempty"`
	Designs        []Design           `json:"designs,omitempty"`
}

// LatestDesign returns the authoritative design for current rendering state:
// the server-populated Design field when present, otherwise the most recent
// entry of the Designs history.
func (s *Section) LatestDesign() *Design {
	if s.Design != nil {
		return s.Design
	}
	if len(s.Designs) == 0 {
		return nil
	}
	latest := &s.Designs[0]
	for i := range s.Designs {
		if s.Designs[i].Created.After(latest.Created) {
			latest = &s.Designs[i]
		}
	}
	return latest
}

// Processing reports whether the section has a rendering in flight.
func (s *Section) Processing() bool {
	d := s.LatestDesign()
	return d != nil && d.Status == StatusProcessing
}

// Address is a project delivery/contact address.
type Address struct {
	Line1 string `json:"line1,omitempty"`
	Line2 string `json:"line2,omitempty"`
}

// Project groups sections under one customer engagement.
type Project struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Details      string    `json:"details,omitempty"`
	MobilePhone  string    `json:"mobilePhone,omitempty"`
	Address      Address   `json:"address,omitempty"`
	RootImageURL string    `json:"rootImageUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Sections     []Section `json:"sections,omitempty"`
}

// SectionByID returns the section with the given id, or nil.
func (p *Project) SectionByID(id string) *Section {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i]
		}
	}
	return nil
}

// Product is a catalog item returned by product search.
type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	BaseName   string   `json:"baseName,omitempty"`
	Category   string   `json:"category,omitempty"`
	Collection string   `json:"collection,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Price      float64  `json:"price,omitempty"`
	Rooms      []string `json:"rooms,omitempty"`
	Styles     []string `json:"styles,omitempty"`
}

// User is the authenticated CRM account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
