package ui

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/session"
	"github.com/arredohq/arredo/internal/tracker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func newTestModel(t *testing.T) (*Model, *tracker.Tracker) {
	t.Helper()

	sess := session.New(log.New(io.Discard))
	trk := tracker.New(nil, sess, tracker.Opts{Interval: time.Hour, Logger: log.New(io.Discard)})
	t.Cleanup(trk.Stop)

	m := NewModel(context.Background(), nil, sess, trk)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, trk
}

func processingSection(id string) models.Section {
	return models.Section{
		ID:     id,
		Title:  "Living Room",
		Design: &models.Design{ID: "d1", Status: models.StatusProcessing},
	}
}

func TestModelTracking(t *testing.T) {
	t.Run("registration follows the detail view", func(t *testing.T) {
		m, trk := newTestModel(t)
		project := models.Project{
			ID:       "p1",
			Name:     "Harbor Apartment",
			Sections: []models.Section{processingSection("s1")},
		}
		m.Update(sectionsFetchedMsg{project: &project})
		if m.view != SectionListView {
			t.Fatalf("expected section list view, got %d", m.view)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != SectionDetailView {
			t.Fatalf("expected section detail view, got %d", m.view)
		}
		if targets := trk.PollTargets(); len(targets) != 1 || targets[0] != "s1" {
			t.Fatalf("expected s1 polled while its view is open, got %v", targets)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != SectionListView {
			t.Fatalf("expected section list view after esc, got %d", m.view)
		}
		if targets := trk.PollTargets(); len(targets) != 0 {
			t.Errorf("expected no poll targets after leaving the view, got %v", targets)
		}
	})

	t.Run("saving a processing section registers it", func(t *testing.T) {
		m, trk := newTestModel(t)

		saved := processingSection("s2")
		m.Update(sectionSavedMsg{section: &saved})

		if targets := trk.PollTargets(); len(targets) != 1 || targets[0] != "s2" {
			t.Errorf("expected s2 polled after save, got %v", targets)
		}
	})

	t.Run("closing the model drops its registrations", func(t *testing.T) {
		m, trk := newTestModel(t)

		saved := processingSection("s3")
		m.Update(sectionSavedMsg{section: &saved})
		m.Close()

		if targets := trk.PollTargets(); len(targets) != 0 {
			t.Errorf("expected no poll targets after close, got %v", targets)
		}
	})
}
