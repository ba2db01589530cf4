package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/arredohq/arredo/internal/repositories"
	"github.com/arredohq/arredo/internal/services"
	"github.com/arredohq/arredo/internal/session"
	"github.com/arredohq/arredo/internal/shared"
	"github.com/arredohq/arredo/internal/tracker"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	crm        services.Service
	api        *services.APIService
	store      *services.TokenStore
	sess       *session.Session
	tracker    *tracker.Tracker
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	CRM        services.Service
	API        *services.APIService
	Store      *services.TokenStore
	Session    *session.Session
	Tracker    *tracker.Tracker
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = session.New(opts.Logger)
	}
	if opts.Tracker == nil && opts.CRM != nil {
		var recorder tracker.Recorder
		if opts.DB != nil {
			recorder = repositories.NewSnapshotRecorder(repositories.NewSnapshotRepository(opts.DB))
		}
		opts.Tracker = tracker.New(opts.CRM, opts.Session, tracker.Opts{
			Interval:          time.Duration(opts.Config.Generation.PollIntervalSeconds) * time.Second,
			RequestsPerSecond: opts.Config.Generation.RequestsPerSecond,
			Logger:            opts.Logger,
			Recorder:          recorder,
		})
	}

	return &Runner{
		config:     opts.Config,
		crm:        opts.CRM,
		api:        opts.API,
		store:      opts.Store,
		sess:       opts.Session,
		tracker:    opts.Tracker,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, so commands that own the terminal can
// redirect log output.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, projectsCommand, sectionCommand, productsCommand, roomsCommand, exportCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// cacheDB lazily opens the local cache database.
func (r *Runner) cacheDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	r.db = db
	return db, nil
}
