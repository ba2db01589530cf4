package ui

import (
	"context"
	"fmt"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/session"
	"github.com/arredohq/arredo/internal/tracker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProjectListView ViewState = iota
	SectionListView
	CameraView
	PhotographView
	RoomTypeView
	ProductListView
	SectionDetailView
	PromptView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	api         services.Service
	sess        *session.Session
	tracker     *tracker.Tracker
	width       int
	height      int
	projectList list.Model
	projects    []models.Project
	sectionList list.Model
	roomList    list.Model
	productList list.Model
	page        *services.ProductPage
	selected    map[string]models.ProductSelection
	imageInput  textinput.Model
	promptInput textinput.Model
	updates     chan models.Section
	unsubscribe func()
	registered  map[string]struct{}
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

type projectsFetchedMsg struct {
	projects []models.Project
	err      error
}

type sectionsFetchedMsg struct {
	project *models.Project
	err     error
}

type productsFetchedMsg struct {
	page *services.ProductPage
	err  error
}

type sectionSavedMsg struct {
	section *models.Section
	err     error
}

type generateSubmittedMsg struct {
	err error
}

type sectionUpdateMsg models.Section

// NewModel creates a new TUI model with the provided dependencies. The model
// subscribes to the generation tracker so rendering progress for registered
// sections arrives as messages.
func NewModel(ctx context.Context, api services.Service, sess *session.Session, trk *tracker.Tracker) *Model {
	imageInput := textinput.New()
	imageInput.Placeholder = "path/to/room.jpg"
	imageInput.CharLimit = 512

	promptInput := textinput.New()
	promptInput.Placeholder = "a bright scandinavian living room"
	promptInput.CharLimit = 512

	m := &Model{
		ctx:         ctx,
		view:        ProjectListView,
		api:         api,
		sess:        sess,
		tracker:     trk,
		selected:    map[string]models.ProductSelection{},
		imageInput:  imageInput,
		promptInput: promptInput,
		updates:     make(chan models.Section, 16),
		registered:  map[string]struct{}{},
		help:        help.New(),
		keys:        newKeyMap(),
	}

	m.unsubscribe = trk.Subscribe(func(section models.Section) {
		select {
		case m.updates <- section:
		default:
		}
	})

	return m
}

// Init initializes the TUI by fetching the user's projects and arming the
// tracker update listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchProjects(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.projectList, &m.sectionList, &m.roomList, &m.productList} {
			if l.Width() != 0 {
				l.SetSize(msg.Width-4, msg.Height-8)
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ProjectListView:
			return m.handleProjectListKeys(msg)
		case SectionListView:
			return m.handleSectionListKeys(msg)
		case CameraView:
			return m.handleCameraKeys(msg)
		case PhotographView:
			return m.handlePhotographKeys(msg)
		case RoomTypeView:
			return m.handleRoomTypeKeys(msg)
		case ProductListView:
			return m.handleProductListKeys(msg)
		case SectionDetailView:
			return m.handleSectionDetailKeys(msg)
		case PromptView:
			return m.handlePromptKeys(msg)
		}

	case projectsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.projects = msg.projects
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		m.projectList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.projectList.Title = "Projects"
		m.projectList.SetSize(m.width-4, m.height-8)
		return m, nil

	case sectionsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ProjectListView
			return m, nil
		}
		m.sess.SetProject(*msg.project)
		m.rebuildSectionList(*msg.project)
		m.view = SectionListView
		return m, nil

	case productsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SectionDetailView
			return m, nil
		}
		m.page = msg.page
		items := make([]list.Item, len(msg.page.Content))
		for i, p := range msg.page.Content {
			items[i] = productItem{product: p, selected: m.selected}
		}
		m.productList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.productList.Title = "Products"
		m.productList.SetSize(m.width-4, m.height-8)
		return m, nil

	case sectionSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		old := m.sess.Section()
		m.sess.SetSection(*msg.section, &old)
		if msg.section.Processing() {
			m.trackSection(msg.section.ID)
		}
		m.status = "Section saved"
		m.err = nil
		return m, nil

	case generateSubmittedMsg:
		m.view = SectionDetailView
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = "Rendering submitted"
		m.err = nil
		return m, nil

	case sectionUpdateMsg:
		section := models.Section(msg)
		current := m.sess.Section()
		if current.ID == section.ID {
			if d := section.LatestDesign(); d != nil {
				m.status = fmt.Sprintf("Rendering %s", d.Status)
			}
		}
		m.rebuildSectionList(m.sess.Project())
		return m, m.waitForUpdate()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == ProjectListView && len(m.projects) == 0 {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ProjectListView:
		return m.renderProjectList()
	case SectionListView:
		return m.renderSectionList()
	case CameraView:
		return m.renderCamera()
	case PhotographView:
		return m.renderPhotograph()
	case RoomTypeView:
		return m.renderRoomTypes()
	case ProductListView:
		return m.renderProductList()
	case SectionDetailView:
		return m.renderSectionDetail()
	case PromptView:
		return m.renderPrompt()
	default:
		return ""
	}
}

// route translates a flow route into the view that renders it.
func (m *Model) route(route string) ViewState {
	switch route {
	case "/camera":
		return CameraView
	case "/photograph":
		return PhotographView
	case "/room-type":
		return RoomTypeView
	case "/products":
		return ProductListView
	case "/section-details":
		return SectionDetailView
	default:
		return ProjectListView
	}
}

func (m *Model) goForward(currentPage string, upd session.Update) tea.Cmd {
	next := m.sess.NextPage(currentPage, upd)
	m.view = m.route(next)
	return m.enterView()
}

func (m *Model) goBack(currentPage string) {
	m.view = m.route(m.sess.BackPage(currentPage))
}

// trackSection registers a section for polling while its detail view is open.
func (m *Model) trackSection(id string) {
	m.tracker.Register(id)
	m.registered[id] = struct{}{}
}

// releaseSection drops a registration made by this model. Renderings still in
// flight keep polling through the processing set until they finish.
func (m *Model) releaseSection(id string) {
	if _, ok := m.registered[id]; ok {
		m.tracker.Unregister(id)
		delete(m.registered, id)
	}
}

// enterView runs the fetch a view needs on entry.
func (m *Model) enterView() tea.Cmd {
	switch m.view {
	case RoomTypeView:
		items := make([]list.Item, len(models.RoomTypes))
		for i, rt := range models.RoomTypes {
			items[i] = roomTypeItem{roomType: rt}
		}
		m.roomList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.roomList.Title = "Room Types"
		m.roomList.SetSize(m.width-4, m.height-8)
	case ProductListView:
		return m.fetchProducts("")
	case CameraView:
		m.imageInput.SetValue(m.sess.Image())
		return m.imageInput.Focus()
	}
	return nil
}

func (m *Model) handleProjectListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.projectList.SelectedItem(); selected != nil {
			if p, ok := selected.(projectItem); ok {
				return m, m.fetchSections(p.project.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m *Model) handleSectionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ProjectListView
		return m, nil
	case "n":
		project := m.sess.Project()
		m.sess.StartNewFlow(&project, nil)
		m.selected = map[string]models.ProductSelection{}
		return m, m.goForward(session.PageAny, session.Update{})
	case "enter":
		if selected := m.sectionList.SelectedItem(); selected != nil {
			if s, ok := selected.(sectionItem); ok {
				m.sess.StartExistingFlow(m.sess.Project(), s.section)
				m.selected = map[string]models.ProductSelection{}
				for _, sel := range s.section.Products {
					m.selected[sel.ProductID] = sel
				}
				if s.section.Processing() {
					m.trackSection(s.section.ID)
				}
				return m, m.goForward(session.PageAny, session.Update{})
			}
		}
	}

	var cmd tea.Cmd
	m.sectionList, cmd = m.sectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleCameraKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.goBack(session.PageCamera)
		return m, nil
	case "enter":
		path := m.imageInput.Value()
		upd := session.Update{Image: &path, OriginalImage: &path}
		return m, m.goForward(session.PageCamera, upd)
	}

	var cmd tea.Cmd
	m.imageInput, cmd = m.imageInput.Update(msg)
	return m, cmd
}

func (m *Model) handlePhotographKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "n":
		m.goBack(session.PagePhotograph)
		return m, m.enterView()
	case "y", "enter":
		return m, m.goForward(session.PagePhotograph, session.Update{})
	}
	return m, nil
}

func (m *Model) handleRoomTypeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.goBack(session.PageRoomType)
		return m, nil
	case "enter":
		if selected := m.roomList.SelectedItem(); selected != nil {
			if rt, ok := selected.(roomTypeItem); ok {
				roomType := rt.roomType
				upd := session.Update{RoomType: &roomType, SectionType: &roomType.Name}
				return m, m.goForward(session.PageRoomType, upd)
			}
		}
	}

	var cmd tea.Cmd
	m.roomList, cmd = m.roomList.Update(msg)
	return m, cmd
}

func (m *Model) handleProductListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.goBack(session.PageProducts)
		return m, nil
	case " ":
		if selected := m.productList.SelectedItem(); selected != nil {
			if p, ok := selected.(productItem); ok {
				if _, on := m.selected[p.product.ID]; on {
					delete(m.selected, p.product.ID)
				} else {
					m.selected[p.product.ID] = models.ProductSelection{
						ProductID: p.product.ID,
						Name:      p.product.Name,
						Quantity:  1,
						ImageURL:  p.product.ImageURL,
					}
				}
			}
		}
		return m, nil
	case "enter":
		selections := make([]models.ProductSelection, 0, len(m.selected))
		for _, sel := range m.selected {
			selections = append(selections, sel)
		}
		upd := session.Update{SelectedProducts: &selections}
		return m, m.goForward(session.PageProducts, upd)
	}

	var cmd tea.Cmd
	m.productList, cmd = m.productList.Update(msg)
	return m, cmd
}

func (m *Model) handleSectionDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.releaseSection(m.sess.Section().ID)
		if m.sess.Flow() == session.FlowExisting {
			m.rebuildSectionList(m.sess.Project())
			m.view = SectionListView
			return m, nil
		}
		m.goBack(session.PageSectionDetails)
		return m, m.enterView()
	case "s":
		return m, m.saveSection()
	case "g":
		section := m.sess.Section()
		if section.ID == "" {
			m.err = fmt.Errorf("save the section before generating")
			return m, nil
		}
		if m.tracker.Processing(section.ID) || section.Processing() {
			m.status = "Rendering already in flight"
			return m, nil
		}
		m.view = PromptView
		m.promptInput.SetValue("")
		return m, m.promptInput.Focus()
	}
	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SectionDetailView
		return m, nil
	case "enter":
		prompt := m.promptInput.Value()
		return m, m.submitGeneration(prompt)
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ProjectListView:
		m.projectList, cmd = m.projectList.Update(msg)
	case SectionListView:
		m.sectionList, cmd = m.sectionList.Update(msg)
	case RoomTypeView:
		m.roomList, cmd = m.roomList.Update(msg)
	case ProductListView:
		m.productList, cmd = m.productList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildSectionList(project models.Project) {
	items := make([]list.Item, len(project.Sections))
	for i, s := range project.Sections {
		items[i] = sectionItem{section: s}
	}
	m.sectionList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.sectionList.Title = fmt.Sprintf("Sections in '%s'", project.Name)
	m.sectionList.SetSize(m.width-4, m.height-8)
}

func (m *Model) fetchProjects() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.api.Projects(m.ctx, true)
		return projectsFetchedMsg{projects: projects, err: err}
	}
}

func (m *Model) fetchSections(projectID string) tea.Cmd {
	return func() tea.Msg {
		project, err := m.api.ProjectByID(m.ctx, projectID)
		return sectionsFetchedMsg{project: project, err: err}
	}
}

func (m *Model) fetchProducts(query string) tea.Cmd {
	return func() tea.Msg {
		criteria := services.NewSearchCriteria(query, 1, "", nil)
		page, err := m.api.SearchProducts(m.ctx, criteria)
		return productsFetchedMsg{page: page, err: err}
	}
}

// saveSection persists the session draft. New-flow drafts are created under
// the current project with the attached photo; existing sections are updated
// in place.
func (m *Model) saveSection() tea.Cmd {
	project := m.sess.Project()
	section := m.sess.Section()
	section.Products = m.sess.SelectedProducts()
	image := m.sess.Image()
	mode := m.sess.TakeSectionMode()

	return func() tea.Msg {
		if mode == session.ModeUpdateSection && section.ID == "" {
			saved, err := m.api.AddSection(m.ctx, project.ID, &section, image)
			return sectionSavedMsg{section: saved, err: err}
		}
		saved, err := m.api.UpdateSection(m.ctx, section.ID, &section)
		return sectionSavedMsg{section: saved, err: err}
	}
}

func (m *Model) submitGeneration(prompt string) tea.Cmd {
	project := m.sess.Project()
	section := m.sess.Section()
	return func() tea.Msg {
		err := m.tracker.StartGeneration(m.ctx, project.ID, section.ID, prompt)
		return generateSubmittedMsg{err: err}
	}
}

// waitForUpdate blocks on the tracker subscription channel and re-arms after
// every delivery.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		section, ok := <-m.updates
		if !ok {
			return nil
		}
		return sectionUpdateMsg(section)
	}
}

// Close releases the tracker subscription and any registrations the model
// still holds.
func (m *Model) Close() {
	for id := range m.registered {
		m.tracker.Unregister(id)
		delete(m.registered, id)
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) renderProjectList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.projectList.View(), helpView)
}

func (m *Model) renderSectionList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.newItem, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.sectionList.View(), helpView)
}

func (m *Model) renderCamera() string {
	title := styles.title.Render("Attach a room photo")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.imageInput.View(), helpView)
}

func (m *Model) renderPhotograph() string {
	title := styles.title.Render("Use this photo?")
	image := m.sess.Image()
	if image == "" {
		image = "(no photo attached)"
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, image, helpView)
}

func (m *Model) renderRoomTypes() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.roomList.View(), helpView)
}

func (m *Model) renderProductList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.productList.View(), helpView)
}

func (m *Model) renderSectionDetail() string {
	section := m.sess.Section()
	title := styles.title.Render(fmt.Sprintf("Section: %s", section.Title))

	roomType := section.Type
	if roomType == "" {
		roomType = "not set"
	}

	var status string
	if d := section.LatestDesign(); d != nil {
		switch d.Status {
		case models.StatusCompleted:
			status = styles.ok.Render(fmt.Sprintf("Rendering %s", d.Status))
			if d.ResultImageURL != "" {
				status = fmt.Sprintf("%s\n  %s", status, d.ResultImageURL)
			}
		case models.StatusProcessing:
			status = styles.warn.Render("Rendering PROCESSING...")
		default:
			status = styles.err.Render(fmt.Sprintf("Rendering %s", d.Status))
		}
	} else {
		status = "No rendering yet"
	}

	products := m.sess.SelectedProducts()
	if len(products) == 0 {
		products = section.Products
	}
	info := fmt.Sprintf("\nRoom type: %s\nProducts: %d\n\n%s", roomType, len(products), status)

	var note string
	if m.err != nil {
		note = "\n" + styles.err.Render(m.err.Error())
	} else if m.status != "" {
		note = "\n" + styles.warn.Render(m.status)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.generate, m.keys.save, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, note, helpView)
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("Describe the rendering")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.promptInput.View(), helpView)
}
