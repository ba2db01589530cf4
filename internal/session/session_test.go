package session

import (
	"io"
	"testing"

	"github.com/arredohq/arredo/internal/models"
	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestSession(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		s := New(testLogger())

		if s.Flow() != FlowExisting {
			t.Errorf("expected default flow %q, got %q", FlowExisting, s.Flow())
		}
		if s.Section().Title != "New Section" {
			t.Errorf("expected default section title 'New Section', got %q", s.Section().Title)
		}
		if s.Project().Name != "New Project" {
			t.Errorf("expected default project name 'New Project', got %q", s.Project().Name)
		}
	})

	t.Run("StartNewFlow", func(t *testing.T) {
		t.Run("with project and section", func(t *testing.T) {
			s := New(testLogger())
			project := models.Project{ID: "p1", Name: "Apartment"}
			section := models.Section{ID: "s1", Title: "Living Room"}

			s.StartNewFlow(&project, &section)

			if s.Flow() != FlowNew {
				t.Errorf("expected flow %q, got %q", FlowNew, s.Flow())
			}
			if s.Section().ID != "s1" {
				t.Errorf("expected section s1, got %q", s.Section().ID)
			}
			got := s.Project()
			if len(got.Sections) != 1 || got.Sections[0].ID != "s1" {
				t.Errorf("expected section registered into project, got %v", got.Sections)
			}
			if mode := s.TakeSectionMode(); mode != ModeUpdateSection {
				t.Errorf("expected section mode %q, got %q", ModeUpdateSection, mode)
			}
		})

		t.Run("with nil arguments uses defaults", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			if s.Section().Title != "New Section" {
				t.Errorf("expected default section, got %q", s.Section().Title)
			}
			if s.Project().Name != "New Project" {
				t.Errorf("expected default project, got %q", s.Project().Name)
			}
		})

		t.Run("clears previous state", func(t *testing.T) {
			s := New(testLogger())
			image := "/tmp/old.jpg"
			s.Apply(Update{Image: &image})

			s.StartNewFlow(nil, nil)

			if s.Image() != "" {
				t.Errorf("expected image cleared, got %q", s.Image())
			}
		})
	})

	t.Run("StartExistingFlow", func(t *testing.T) {
		s := New(testLogger())
		project := models.Project{ID: "p1", Name: "Apartment"}
		section := models.Section{ID: "s1", Title: "Living Room"}

		s.StartExistingFlow(project, section)

		if s.Flow() != FlowExisting {
			t.Errorf("expected flow %q, got %q", FlowExisting, s.Flow())
		}
		if s.Section().ID != "s1" {
			t.Errorf("expected section s1, got %q", s.Section().ID)
		}
		if mode := s.TakeSectionMode(); mode != "" {
			t.Errorf("expected empty section mode, got %q", mode)
		}
	})

	t.Run("TakeSectionMode", func(t *testing.T) {
		s := New(testLogger())
		s.StartNewFlow(nil, nil)

		if mode := s.TakeSectionMode(); mode != ModeUpdateSection {
			t.Errorf("expected %q on first read, got %q", ModeUpdateSection, mode)
		}
		if mode := s.TakeSectionMode(); mode != "" {
			t.Errorf("expected mode cleared after read, got %q", mode)
		}
	})

	t.Run("SetSection", func(t *testing.T) {
		t.Run("replaces the draft entry after a server round-trip", func(t *testing.T) {
			s := New(testLogger())
			draft := models.Section{Title: "Living Room"}
			s.StartNewFlow(&models.Project{ID: "p1"}, &draft)

			saved := models.Section{ID: "s1", Title: "Living Room"}
			s.SetSection(saved, &draft)

			sections := s.Project().Sections
			if len(sections) != 1 {
				t.Fatalf("expected 1 section, got %d", len(sections))
			}
			if sections[0].ID != "s1" {
				t.Errorf("expected saved section, got %q", sections[0].ID)
			}
		})

		t.Run("deduplicates by id", func(t *testing.T) {
			s := New(testLogger())
			s.StartExistingFlow(models.Project{
				ID: "p1",
				Sections: []models.Section{
					{ID: "s1", Title: "Living Room"},
					{ID: "s2", Title: "Kitchen"},
				},
			}, models.Section{ID: "s1", Title: "Living Room"})

			updated := models.Section{ID: "s1", Title: "Living Room v2"}
			s.SetSection(updated, nil)

			sections := s.Project().Sections
			if len(sections) != 2 {
				t.Fatalf("expected 2 sections, got %d", len(sections))
			}

			count := 0
			for _, sec := range sections {
				if sec.ID == "s1" {
					count++
					if sec.Title != "Living Room v2" {
						t.Errorf("expected updated title, got %q", sec.Title)
					}
				}
			}
			if count != 1 {
				t.Errorf("expected exactly one entry for s1, got %d", count)
			}
		})

		t.Run("repeated sets keep one entry per id", func(t *testing.T) {
			s := New(testLogger())
			s.StartExistingFlow(models.Project{ID: "p1"}, models.Section{ID: "s1"})

			for i := 0; i < 5; i++ {
				s.SetSection(models.Section{ID: "s1", Title: "Living Room"}, nil)
			}

			if n := len(s.Project().Sections); n != 1 {
				t.Errorf("expected 1 section after repeated sets, got %d", n)
			}
		})

		t.Run("id-less drafts replace the previous draft", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(&models.Project{
				ID:       "p1",
				Sections: []models.Section{{ID: "s1", Title: "Kitchen"}},
			}, &models.Section{Title: "Living Room"})

			s.SetSection(models.Section{Title: "Living Room v2"}, nil)
			s.SetSection(models.Section{Title: "Living Room v3"}, nil)

			sections := s.Project().Sections
			if len(sections) != 2 {
				t.Fatalf("expected saved section plus one draft, got %d", len(sections))
			}
			if sections[0].ID != "s1" {
				t.Errorf("expected saved section kept, got %q", sections[0].ID)
			}
			if sections[1].Title != "Living Room v3" {
				t.Errorf("expected latest draft, got %q", sections[1].Title)
			}
		})
	})

	t.Run("Apply", func(t *testing.T) {
		t.Run("nil fields leave state untouched", func(t *testing.T) {
			s := New(testLogger())
			image := "/tmp/room.jpg"
			s.Apply(Update{Image: &image})

			s.Apply(Update{})

			if s.Image() != "/tmp/room.jpg" {
				t.Errorf("expected image preserved, got %q", s.Image())
			}
		})

		t.Run("slices replace wholesale", func(t *testing.T) {
			s := New(testLogger())
			first := []models.ProductSelection{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}
			s.Apply(Update{SelectedProducts: &first})

			second := []models.ProductSelection{{ProductID: "c", Quantity: 1}}
			s.Apply(Update{SelectedProducts: &second})

			got := s.SelectedProducts()
			if len(got) != 1 || got[0].ProductID != "c" {
				t.Errorf("expected wholesale replacement, got %v", got)
			}
		})

		t.Run("section title and type", func(t *testing.T) {
			s := New(testLogger())
			title := "Master Bedroom"
			sectionType := "Bedroom"
			s.Apply(Update{SectionTitle: &title, SectionType: &sectionType})

			section := s.Section()
			if section.Title != "Master Bedroom" || section.Type != "Bedroom" {
				t.Errorf("expected title/type applied, got %q/%q", section.Title, section.Type)
			}
		})

		t.Run("room type", func(t *testing.T) {
			s := New(testLogger())
			rt := models.RoomTypeByName("Office")
			if rt == nil {
				t.Fatal("expected built-in room type 'Office'")
			}
			s.Apply(Update{RoomType: rt})

			if got := s.RoomType(); got == nil || got.Name != "Office" {
				t.Errorf("expected room type applied, got %v", got)
			}
		})
	})

	t.Run("Reset", func(t *testing.T) {
		s := New(testLogger())
		image := "/tmp/room.jpg"
		s.Apply(Update{Image: &image})
		s.StartNewFlow(&models.Project{ID: "p1"}, nil)

		s.Reset()

		if s.Flow() != FlowExisting {
			t.Errorf("expected flow reset to %q, got %q", FlowExisting, s.Flow())
		}
		if s.Image() != "" {
			t.Errorf("expected image cleared, got %q", s.Image())
		}
	})
}

func TestFlow(t *testing.T) {
	t.Run("NextPage", func(t *testing.T) {
		t.Run("new flow walks the creation path", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			steps := []struct {
				page string
				want string
			}{
				{PageAny, "/camera"},
				{PageCamera, "/photograph"},
				{PagePhotograph, "/room-type"},
				{PageRoomType, "/products"},
				{PageProducts, "/section-details"},
			}

			for _, step := range steps {
				if got := s.NextPage(step.page, Update{}); got != step.want {
					t.Errorf("NextPage(%q) = %q, want %q", step.page, got, step.want)
				}
			}
		})

		t.Run("existing flow returns to section details", func(t *testing.T) {
			s := New(testLogger())
			s.StartExistingFlow(models.Project{ID: "p1"}, models.Section{ID: "s1"})

			for _, page := range []string{PageAny, PageCamera, PagePhotograph, PageRoomType, PageProducts} {
				if got := s.NextPage(page, Update{}); got != "/section-details" {
					t.Errorf("NextPage(%q) = %q, want /section-details", page, got)
				}
			}
		})

		t.Run("applies the update before resolving", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			image := "/tmp/room.jpg"
			s.NextPage(PageCamera, Update{Image: &image})

			if s.Image() != "/tmp/room.jpg" {
				t.Errorf("expected update applied during navigation, got %q", s.Image())
			}
		})

		t.Run("unmapped page falls back to root", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			if got := s.NextPage("no-such-page", Update{}); got != RootRoute {
				t.Errorf("NextPage(unmapped) = %q, want %q", got, RootRoute)
			}
		})

		t.Run("same inputs resolve to the same route", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			first := s.NextPage(PageRoomType, Update{})
			second := s.NextPage(PageRoomType, Update{})
			if first != second {
				t.Errorf("expected deterministic navigation, got %q then %q", first, second)
			}
		})
	})

	t.Run("BackPage", func(t *testing.T) {
		t.Run("new flow walks backwards", func(t *testing.T) {
			s := New(testLogger())
			s.StartNewFlow(nil, nil)

			steps := []struct {
				page string
				want string
			}{
				{PageSectionDetails, "/products"},
				{PageProducts, "/room-type"},
				{PageRoomType, "/photograph"},
				{PagePhotograph, "/camera"},
			}

			for _, step := range steps {
				if got := s.BackPage(step.page); got != step.want {
					t.Errorf("BackPage(%q) = %q, want %q", step.page, got, step.want)
				}
			}
		})

		t.Run("existing flow returns to section details", func(t *testing.T) {
			s := New(testLogger())
			s.StartExistingFlow(models.Project{ID: "p1"}, models.Section{ID: "s1"})

			if got := s.BackPage(PageProducts); got != "/section-details" {
				t.Errorf("BackPage(%q) = %q, want /section-details", PageProducts, got)
			}
		})

		t.Run("unmapped page falls back to root", func(t *testing.T) {
			s := New(testLogger())
			s.StartExistingFlow(models.Project{ID: "p1"}, models.Section{ID: "s1"})

			if got := s.BackPage(PageCamera); got != RootRoute {
				t.Errorf("BackPage(camera) = %q, want %q", got, RootRoute)
			}
		})
	})
}
