// package tracker implements background tracking of rendering generation jobs.
//
// The core abstraction is Tracker, which decouples "submit a design
// generation job" from "observe its completion": any number of views
// register interest in sections, a single coalesced poll wave refreshes the
// union of registered and in-flight sections on a fixed interval, and every
// fetched snapshot fans out to all subscribers and into the shared session.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/arredohq/arredo/internal/models"
	"github.com/arredohq/arredo/internal/session"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultInterval is the delay between poll waves.
const DefaultInterval = 5 * time.Second

// API is the slice of the CRM surface the tracker consumes.
type API interface {
	// SectionByID fetches the current state of a section.
	SectionByID(ctx context.Context, sectionID string) (*models.Section, error)

	// GenerateDesign submits an asynchronous rendering job.
	GenerateDesign(ctx context.Context, projectID, sectionID, prompt string) error
}

// Recorder receives every accepted section snapshot. The local snapshot
// cache implements it; a nil recorder disables recording.
type Recorder interface {
	Record(section models.Section) error
}

// Subscriber is a callback invoked with every section snapshot the tracker
// accepts, regardless of which section produced it. Callers filter by id.
type Subscriber func(section models.Section)

// Opts configures a Tracker.
type Opts struct {
	Interval          time.Duration // delay between poll waves (default 5s)
	RequestsPerSecond float64       // request rate cap inside a wave (default unlimited)
	Logger            *log.Logger
	Recorder          Recorder
}

// Tracker owns the registered/processing section sets, the subscriber list
// and the single pending poll timer.
type Tracker struct {
	api  API
	sess *session.Session

	mu          sync.Mutex
	registered  map[string]struct{}
	processing  map[string]struct{}
	subscribers map[int]Subscriber
	nextSubID   int
	versions    map[string]uint64
	timer       *time.Timer
	inWave      bool
	stopped     bool

	interval time.Duration
	limiter  *rate.Limiter
	logger   *log.Logger
	recorder Recorder
}

// New creates a tracker publishing into sess.
func New(api API, sess *session.Session, opts Opts) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Tracker{
		api:         api,
		sess:        sess,
		registered:  make(map[string]struct{}),
		processing:  make(map[string]struct{}),
		subscribers: make(map[int]Subscriber),
		versions:    make(map[string]uint64),
		interval:    opts.Interval,
		limiter:     limiter,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
	}
}

// Register marks a section as displayed by a mounted view, keeping it fresh
// while registered. Idempotent.
func (t *Tracker) Register(sectionID string) {
	if sectionID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.registered[sectionID] = struct{}{}
	t.scheduleLocked()
}

// Unregister removes a section from the registered set. The section keeps
// being polled while a generation job for it is still in flight; an already
// started fetch is never cancelled.
func (t *Tracker) Unregister(sectionID string) {
	if sectionID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.registered, sectionID)
}

// Subscribe adds a callback receiving every accepted snapshot and returns
// its de-registration function.
func (t *Tracker) Subscribe(fn Subscriber) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subscribers, id)
	}
}

// StartGeneration submits a rendering job for the section. A submission
// error is returned to the caller and leaves all tracker state unchanged.
// On success an optimistic PROCESSING snapshot is published immediately and
// the section joins the processing set; completion is observed later through
// the subscription.
func (t *Tracker) StartGeneration(ctx context.Context, projectID, sectionID, prompt string) error {
	if err := t.api.GenerateDesign(ctx, projectID, sectionID, prompt); err != nil {
		return err
	}

	snap := t.optimisticSnapshot(sectionID)

	t.mu.Lock()
	t.processing[sectionID] = struct{}{}
	t.mu.Unlock()

	t.publish(snap)

	t.mu.Lock()
	t.scheduleLocked()
	t.mu.Unlock()

	return nil
}

// optimisticSnapshot synthesizes the local PROCESSING state shown while the
// server works: the current session section when ids match, otherwise a stub
// carrying only the id.
func (t *Tracker) optimisticSnapshot(sectionID string) models.Section {
	snap := models.Section{ID: sectionID}
	if current := t.sess.Section(); current.ID == sectionID {
		snap = current
	}

	design := models.Design{}
	if snap.Design != nil {
		design = *snap.Design
	}
	design.Status = models.StatusProcessing
	snap.Design = &design

	return snap
}

// Processing reports whether the section has a generation job the tracker
// is still watching.
func (t *Tracker) Processing(sectionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.processing[sectionID]
	return ok
}

// PollTargets returns the sections the next wave will fetch: the union of
// registered and processing ids.
func (t *Tracker) PollTargets() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.targetsLocked()
}

func (t *Tracker) targetsLocked() []string {
	union := make(map[string]struct{}, len(t.registered)+len(t.processing))
	for id := range t.registered {
		union[id] = struct{}{}
	}
	for id := range t.processing {
		union[id] = struct{}{}
	}

	ids := make([]string, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	return ids
}

// scheduleLocked arms the poll timer. Any pending timer is stopped first, so
// at most one wave is ever scheduled; with no poll targets the tracker goes
// idle without a timer.
func (t *Tracker) scheduleLocked() {
	if t.stopped {
		return
	}

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	if len(t.registered) == 0 && len(t.processing) == 0 {
		return
	}

	t.timer = time.AfterFunc(t.interval, t.tick)
}

// tick runs one poll wave and reschedules. A wave that is still running when
// the next timer fires suppresses the new wave; the running one reschedules
// on completion.
func (t *Tracker) tick() {
	t.mu.Lock()
	if t.inWave || t.stopped {
		t.mu.Unlock()
		return
	}
	t.inWave = true
	t.timer = nil
	ids := t.targetsLocked()
	t.mu.Unlock()

	ctx := context.Background()
	for _, id := range ids {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				break
			}
		}
		t.pollSection(ctx, id)
	}

	t.mu.Lock()
	t.inWave = false
	t.scheduleLocked()
	t.mu.Unlock()
}

// pollSection fetches one section. Fetch errors are logged and swallowed;
// the id stays in its set, so the next wave retries naturally. A response
// older than a locally published update is dropped.
func (t *Tracker) pollSection(ctx context.Context, sectionID string) {
	t.mu.Lock()
	v0 := t.versions[sectionID]
	t.mu.Unlock()

	section, err := t.api.SectionByID(ctx, sectionID)
	if err != nil {
		t.logger.Error("section poll failed", "section", sectionID, "err", err)
		return
	}

	t.mu.Lock()
	if t.versions[sectionID] != v0 {
		t.mu.Unlock()
		t.logger.Debug("dropping stale poll response", "section", sectionID)
		return
	}
	if d := section.LatestDesign(); d != nil && d.Status != models.StatusProcessing {
		delete(t.processing, sectionID)
	}
	t.mu.Unlock()

	t.publish(*section)
}

// publish pushes an accepted snapshot into the session, the recorder and
// every subscriber, bumping the section's version so slower in-flight polls
// for the same section get discarded.
func (t *Tracker) publish(section models.Section) {
	t.mu.Lock()
	if section.ID != "" {
		t.versions[section.ID]++
	}
	subs := make([]Subscriber, 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	t.sess.SetSection(section, nil)

	if t.recorder != nil {
		if err := t.recorder.Record(section); err != nil {
			t.logger.Warn("failed to record section snapshot", "section", section.ID, "err", err)
		}
	}

	for _, fn := range subs {
		fn(section)
	}
}

// Stop cancels any pending poll timer. In-flight requests finish on their
// own; no further waves are scheduled.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
