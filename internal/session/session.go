// package session holds the cross-page working state of a design flow.
//
// The web client kept this as a module-level singleton mutated from every
// page; here it is an explicit object owned by the Runner and shared with the
// TUI and the generation tracker. A mutex guards it because tracker polls
// publish from a background goroutine.
package session

import (
	"sync"

	"github.com/arredohq/arredo/internal/models"
	"github.com/charmbracelet/log"
)

// FlowType selects which navigation table drives the current flow.
type FlowType string

const (
	// FlowNew walks the full section creation path.
	FlowNew FlowType = "new"
	// FlowExisting edits an existing section with side excursions.
	FlowExisting FlowType = "existing"
)

// ModeUpdateSection is the one-shot SectionMode flag meaning "persist pending
// section edits on the next page load".
const ModeUpdateSection = "update-section"

func defaultSection() models.Section {
	return models.Section{Title: "New Section"}
}

func defaultProject() models.Project {
	return models.Project{Name: "New Project"}
}

// Session is the single source of truth for "what project/section is the
// user currently working on" across pages that otherwise share no state.
type Session struct {
	mu     sync.Mutex
	logger *log.Logger

	project          models.Project
	section          models.Section
	flowType         FlowType
	image            string
	originalImage    string
	roomType         *models.RoomType
	selectedProducts []models.ProductSelection
	sectionMode      string
}

// New creates a session initialized to defaults.
func New(logger *log.Logger) *Session {
	s := &Session{logger: logger}
	s.resetLocked()
	return s
}

// resetLocked restores defaults. Callers hold the lock (or own the session
// exclusively, as in New).
func (s *Session) resetLocked() {
	s.project = defaultProject()
	s.section = defaultSection()
	s.flowType = FlowExisting
	s.image = ""
	s.originalImage = ""
	s.roomType = nil
	s.selectedProducts = nil
	s.sectionMode = ""
}

// Reset restores the session to defaults, as at the start of a flow.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// StartNewFlow resets the session and begins the full section creation path.
// The given project/section become current (defaults when nil), the section
// is registered into the project's section list, and SectionMode is armed so
// the section-details page persists the draft.
func (s *Session) StartNewFlow(project *models.Project, section *models.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	if project != nil {
		s.project = *project
	}
	if section != nil {
		s.section = *section
	}
	s.setSectionLocked(s.section, nil)

	s.flowType = FlowNew
	s.sectionMode = ModeUpdateSection
}

// StartExistingFlow resets the session and begins editing an existing
// section. SectionMode is left untouched.
func (s *Session) StartExistingFlow(project models.Project, section models.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.project = project
	s.section = section
	s.flowType = FlowExisting
}

// SetSection installs section as current and reconciles the project's
// section list: the replaced entry (an object whose identity changed after a
// server round-trip) and any entry sharing the new section's id are removed,
// then the new section is appended. Afterwards the list holds exactly one
// entry per logical section id.
func (s *Session) SetSection(section models.Section, replace *models.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSectionLocked(section, replace)
}

func (s *Session) setSectionLocked(section models.Section, replace *models.Section) {
	s.section = section

	kept := s.project.Sections[:0]
	for _, existing := range s.project.Sections {
		if replace != nil && existing.ID == replace.ID && existing.Title == replace.Title {
			continue
		}
		// Id-less drafts match each other, so repeated saves of an
		// unsaved section replace the previous draft.
		if existing.ID == section.ID {
			continue
		}
		kept = append(kept, existing)
	}
	s.project.Sections = append(kept, section)
}

// SetProject replaces the current project wholesale.
func (s *Session) SetProject(project models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = project
}

// Project returns a copy of the current project.
func (s *Session) Project() models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// Section returns a copy of the current section.
func (s *Session) Section() models.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section
}

// Flow returns the active flow type.
func (s *Session) Flow() FlowType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowType
}

// Image returns the pending reference photo path or URL.
func (s *Session) Image() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// RoomType returns the pending room type selection, or nil.
func (s *Session) RoomType() *models.RoomType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomType
}

// SelectedProducts returns the pending product selections.
func (s *Session) SelectedProducts() []models.ProductSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProductSelection, len(s.selectedProducts))
	copy(out, s.selectedProducts)
	return out
}

// TakeSectionMode returns the one-shot SectionMode flag and clears it.
func (s *Session) TakeSectionMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	mode := s.sectionMode
	s.sectionMode = ""
	return mode
}

// Update is a typed partial update threaded between pages. Nil fields are
// untouched; slice fields replace wholesale rather than merging, matching
// how the pages hand data forward.
type Update struct {
	Image            *string
	OriginalImage    *string
	RoomType         *models.RoomType
	SelectedProducts *[]models.ProductSelection
	SectionTitle     *string
	SectionType      *string
	SectionMode      *string
}

// Apply merges the update into the session.
func (s *Session) Apply(upd Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(upd)
}

func (s *Session) applyLocked(upd Update) {
	if upd.Image != nil {
		s.image = *upd.Image
	}
	if upd.OriginalImage != nil {
		s.originalImage = *upd.OriginalImage
	}
	if upd.RoomType != nil {
		s.roomType = upd.RoomType
	}
	if upd.SelectedProducts != nil {
		s.selectedProducts = *upd.SelectedProducts
	}
	if upd.SectionTitle != nil {
		s.section.Title = *upd.SectionTitle
	}
	if upd.SectionType != nil {
		s.section.Type = *upd.SectionType
	}
	if upd.SectionMode != nil {
		s.sectionMode = *upd.SectionMode
	}
}
