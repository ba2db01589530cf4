package session

// Page keys. Each key names one screen of a section flow; the flow tables
// below map (flow, current page) to the next route.
const (
	PageCamera         = "camera"
	PagePhotograph     = "photograph"
	PageRoomType       = "room-type"
	PageProducts       = "products"
	PageSectionDetails = "section-details"

	// PageAny is the wildcard entry used when a flow starts with no
	// current page.
	PageAny = "*"

	// RootRoute is the fallback for unmapped lookups.
	RootRoute = "/"
)

// flowMap drives forward navigation. The new flow is the full linear
// creation path; the existing flow returns every side excursion straight to
// section details.
var flowMap = map[FlowType]map[string]string{
	FlowExisting: {
		PageAny:        "/section-details",
		PageCamera:     "/section-details",
		PagePhotograph: "/section-details",
		PageProducts:   "/section-details",
		PageRoomType:   "/section-details",
	},
	FlowNew: {
		PageAny:        "/camera",
		PageCamera:     "/photograph",
		PagePhotograph: "/room-type",
		PageRoomType:   "/products",
		PageProducts:   "/section-details",
	},
}

// backMap drives backward navigation.
var backMap = map[FlowType]map[string]string{
	FlowExisting: {
		PagePhotograph: "/section-details",
		PageProducts:   "/section-details",
		PageRoomType:   "/section-details",
	},
	FlowNew: {
		PagePhotograph:     "/camera",
		PageRoomType:       "/photograph",
		PageProducts:       "/room-type",
		PageSectionDetails: "/products",
	},
}

// NextPage merges upd into the session, then resolves the next route for the
// current page under the active flow. An unmapped pair is non-fatal: it logs
// a warning and falls back to the app root.
func (s *Session) NextPage(currentPage string, upd Update) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(upd)

	if currentPage == "" {
		currentPage = PageAny
	}

	next, ok := flowMap[s.flowType][currentPage]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("no next page for flow", "flow", s.flowType, "page", currentPage)
		}
		return RootRoute
	}

	return next
}

// BackPage resolves the previous route for the current page under the active
// flow, with the same root fallback as NextPage.
func (s *Session) BackPage(currentPage string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	back, ok := backMap[s.flowType][currentPage]
	if !ok {
		if s.logger != nil {
			s.logger.Warn("no back page for flow", "flow", s.flowType, "page", currentPage)
		}
		return RootRoute
	}

	return back
}
