package models

import (
	"fmt"
	"time"
)

// PersistedProduct is a catalog item cached in the local database.
//
// Products are cached on every search so selections keep rendering when the
// CRM is unreachable.
type PersistedProduct struct {
	id        string
	sequence  int
	product   Product
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedProduct wraps a Product DTO for persistence.
func NewPersistedProduct(sequence int, product Product) *PersistedProduct {
	now := time.Now()
	return &PersistedProduct{
		sequence:  sequence,
		product:   product,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedProduct) ID() string           { return p.id }
func (p *PersistedProduct) SetID(id string)      { p.id = id }
func (p *PersistedProduct) Sequence() int        { return p.sequence }
func (p *PersistedProduct) Product() Product     { return p.product }
func (p *PersistedProduct) ProductID() string    { return p.product.ID }
func (p *PersistedProduct) CreatedAt() time.Time { return p.createdAt }
func (p *PersistedProduct) UpdatedAt() time.Time { return p.updatedAt }

// SetTimestamps restores persisted timestamps when scanning from the database.
func (p *PersistedProduct) SetTimestamps(created, updated time.Time, deleted *time.Time) {
	p.createdAt = created
	p.updatedAt = updated
	p.deletedAt = deleted
}

func (p *PersistedProduct) Touch() { p.updatedAt = time.Now() }

func (p *PersistedProduct) Validate() error {
	if p.id == "" {
		return fmt.Errorf("persisted product has no id")
	}
	if p.product.ID == "" {
		return fmt.Errorf("product has no catalog id")
	}
	if p.product.Name == "" {
		return fmt.Errorf("product has no name")
	}
	return nil
}

// SectionSnapshot is the last state of a section fetched from the CRM,
// stored as the raw JSON payload so renders stay viewable offline.
type SectionSnapshot struct {
	id        string
	sectionID string
	payload   []byte
	status    DesignStatus
	fetchedAt time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewSectionSnapshot records a fetched section payload.
func NewSectionSnapshot(sectionID string, payload []byte, status DesignStatus) *SectionSnapshot {
	now := time.Now()
	return &SectionSnapshot{
		sectionID: sectionID,
		payload:   payload,
		status:    status,
		fetchedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *SectionSnapshot) ID() string           { return s.id }
func (s *SectionSnapshot) SetID(id string)      { s.id = id }
func (s *SectionSnapshot) SectionID() string    { return s.sectionID }
func (s *SectionSnapshot) Payload() []byte      { return s.payload }
func (s *SectionSnapshot) Status() DesignStatus { return s.status }
func (s *SectionSnapshot) FetchedAt() time.Time { return s.fetchedAt }
func (s *SectionSnapshot) CreatedAt() time.Time { return s.createdAt }
func (s *SectionSnapshot) UpdatedAt() time.Time { return s.updatedAt }

// SetTimestamps restores persisted timestamps when scanning from the database.
func (s *SectionSnapshot) SetTimestamps(fetched, created, updated time.Time) {
	s.fetchedAt = fetched
	s.createdAt = created
	s.updatedAt = updated
}

func (s *SectionSnapshot) Validate() error {
	if s.id == "" {
		return fmt.Errorf("section snapshot has no id")
	}
	if s.sectionID == "" {
		return fmt.Errorf("section snapshot has no section id")
	}
	if len(s.payload) == 0 {
		return fmt.Errorf("section snapshot has no payload")
	}
	return nil
}
