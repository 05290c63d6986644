package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tempo/internal/queries"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/session"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.StatsService
	cache      *queries.Cache
	top        *queries.TopItemsQuery
	profile    *queries.ProfileQuery
	store      *session.Store
	controller *session.Controller
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.StatsEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.StatsService
	Store      *session.Store
	Controller *session.Controller
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

	if opts.Service == nil {
		if client, err := services.NewClient(opts.Config.API.BaseURL, opts.HTTPClient, opts.Config.API.RateLimit); err == nil {
			opts.Service = client
		}
	}

	if opts.Store == nil {
		if slot, err := session.NewFileSlot(opts.Config.Session.Path); err == nil {
			opts.Store = session.NewStore(slot, time.Duration(opts.Config.Session.TTLMinutes)*time.Minute)
		}
	}
	if opts.Controller == nil && opts.Store != nil {
		opts.Controller = session.NewController(opts.Store, session.NewParamAddress(nil), opts.Config.LoginURL())
	}

	cache := queries.NewCache(time.Duration(opts.Config.Cache.TTLMinutes) * time.Minute)
	top := queries.NewTopItemsQuery(opts.Service, cache)
	profile := queries.NewProfileQuery(opts.Service, cache)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		cache:      cache,
		top:        top,
		profile:    profile,
		store:      opts.Store,
		controller: opts.Controller,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     tasks.NewStatsEngine(top, profile, nil),
	}
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, statsCommand, historyCommand, dashboardCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// gate assembles fetch preconditions from the resolved session.
func (r *Runner) gate() queries.Gate {
	if r.controller == nil {
		return queries.Gate{}
	}

	r.controller.Resolve()
	token, _ := r.controller.Token()
	return queries.Gate{
		Token:     token,
		Enabled:   true,
		Resolving: r.controller.IsCheckingToken(),
	}
}

// openDatabase opens the configured SQLite database for commands that need snapshots.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
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
