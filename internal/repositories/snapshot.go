package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/shared"
)

// SnapshotRepository stores the last fetched state of each section as raw
// JSON, keyed by section id. One row per section; newer fetches replace
// older ones.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save upserts the snapshot for its section.
func (r *SnapshotRepository) Save(snapshot *models.SectionSnapshot) error {
	if snapshot.ID() == "" {
		snapshot.SetID(shared.GenerateID())
	}

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO section_snapshots (id, section_id, payload, status, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(section_id) DO UPDATE SET
			payload = excluded.payload,
			status = excluded.status,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		snapshot.ID(),
		snapshot.SectionID(),
		string(snapshot.Payload()),
		string(snapshot.Status()),
		snapshot.FetchedAt(),
		snapshot.CreatedAt(),
		snapshot.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save section snapshot: %w", err)
	}

	return nil
}

// GetBySectionID retrieves the stored snapshot for a section.
func (r *SnapshotRepository) GetBySectionID(sectionID string) (*models.SectionSnapshot, error) {
	query := `
		SELECT id, section_id, payload, status, fetched_at, created_at, updated_at
		FROM section_snapshots
		WHERE section_id = ?
	`

	var (
		id, secID, payload, status string
		fetchedAt                  time.Time
		createdAt, updatedAt       time.Time
	)

	err := r.db.QueryRow(query, sectionID).Scan(&id, &secID, &payload, &status, &fetchedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached snapshot for %s", shared.ErrSectionNotFound, sectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load section snapshot: %w", err)
	}

	snapshot := models.NewSectionSnapshot(secID, []byte(payload), models.DesignStatus(status))
	snapshot.SetID(id)
	snapshot.SetTimestamps(fetchedAt, createdAt, updatedAt)

	return snapshot, nil
}

// Section decodes the stored payload for a section back into the DTO.
func (r *SnapshotRepository) Section(sectionID string) (*models.Section, error) {
	snapshot, err := r.GetBySectionID(sectionID)
	if err != nil {
		return nil, err
	}

	var section models.Section
	if err := json.Unmarshal(snapshot.Payload(), &section); err != nil {
		return nil, fmt.Errorf("failed to decode cached section: %w", err)
	}

	return &section, nil
}

// Delete removes the snapshot for a section.
func (r *SnapshotRepository) Delete(sectionID string) error {
	_, err := r.db.Exec("DELETE FROM section_snapshots WHERE section_id = ?", sectionID)
	if err != nil {
		return fmt.Errorf("failed to delete section snapshot: %w", err)
	}
	return nil
}

// Count reports how many sections have cached snapshots.
func (r *SnapshotRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM section_snapshots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count section snapshots: %w", err)
	}
	return count, nil
}

// SnapshotRecorder adapts SnapshotRepository to the tracker's Recorder
// interface: every accepted poll result lands in the cache. Optimistic
// snapshots without an id are skipped.
type SnapshotRecorder struct {
	repo *SnapshotRepository
}

// NewSnapshotRecorder creates a recorder writing through repo.
func NewSnapshotRecorder(repo *SnapshotRepository) *SnapshotRecorder {
	return &SnapshotRecorder{repo: repo}
}

// Record stores the section's current state.
func (a *SnapshotRecorder) Record(section models.Section) error {
	if section.ID == "" {
		return nil
	}

	payload, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to encode section: %w", err)
	}

	status := models.DesignStatus("")
	if d := section.LatestDesign(); d != nil {
		status = d.Status
	}

	return a.repo.Save(models.NewSectionSnapshot(section.ID, payload, status))
}
