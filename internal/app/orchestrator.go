package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/quantmind-br/scaffold-go/internal/archive"
	"github.com/quantmind-br/scaffold-go/internal/config"
	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/fetcher"
	"github.com/quantmind-br/scaffold-go/internal/guard"
	"github.com/quantmind-br/scaffold-go/internal/utils"
	"github.com/quantmind-br/scaffold-go/internal/vcs"
	"github.com/quantmind-br/scaffold-go/pkg/version"
)

// Orchestrator coordinates a single scaffold run
type Orchestrator struct {
	config    *config.Config
	template  domain.TemplateSource
	workDir   string
	fetcher   domain.Fetcher
	extractor domain.Extractor
	vcs       domain.VCSInitializer
	reporter  domain.ProgressReporter
	logger    *utils.Logger
}

// OrchestratorOptions contains options for creating an orchestrator.
// Nil collaborators are built from Config.
type OrchestratorOptions struct {
	Config   *config.Config
	Template domain.TemplateSource
	// WorkDir receives the transient archive and anchors relative app names;
	// the process working directory when empty
	WorkDir string
	Verbose bool

	Fetcher   domain.Fetcher
	Extractor domain.Extractor
	VCS       domain.VCSInitializer
	Reporter  domain.ProgressReporter
	Logger    *utils.Logger
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	template := opts.Template
	if template.URL == "" {
		template.URL = cfg.Template.URL
	}
	if template.URL == "" {
		template.URL = config.DefaultTemplateURL
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		workDir = wd
	}

	f := opts.Fetcher
	if f == nil {
		userAgent := cfg.Fetch.UserAgent
		if userAgent == "" {
			userAgent = version.UserAgent()
		}
		clientOpts := fetcher.DefaultClientOptions()
		clientOpts.Timeout = cfg.Fetch.Timeout
		clientOpts.MaxRetries = cfg.Fetch.MaxRetries
		clientOpts.MaxSize = cfg.MaxSizeBytes()
		clientOpts.UserAgent = userAgent
		clientOpts.Logger = logger
		f = fetcher.NewClient(clientOpts)
	}

	x := opts.Extractor
	if x == nil {
		x = archive.NewExtractor(archive.ExtractorOptions{Logger: logger})
	}

	v := opts.VCS
	if v == nil {
		var err error
		v, err = vcs.New(vcs.Options{Config: cfg.VCS, Logger: logger})
		if err != nil {
			return nil, err
		}
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = utils.NewReporter(cfg.Progress.Style, os.Stderr, logger)
	}

	return &Orchestrator{
		config:    cfg,
		template:  template,
		workDir:   workDir,
		fetcher:   f,
		extractor: x,
		vcs:       v,
		reporter:  reporter,
		logger:    logger,
	}, nil
}

// run carries the state of one pipeline execution between steps
type run struct {
	req     domain.ScaffoldRequest
	state   domain.State
	body    []byte
	archive *domain.TransientArchive
}

type step struct {
	name  string
	to    domain.State
	apply func(context.Context, *run) error
}

func (o *Orchestrator) steps() []step {
	return []step{
		{"guard", domain.StateGuardChecked, o.checkDestination},
		{"fetch", domain.StateFetched, o.download},
		{"persist", domain.StatePersisted, o.persist},
		{"extract", domain.StateExtracted, o.extract},
		{"cleanup", domain.StateCleanedUp, o.cleanup},
		{"vcs", domain.StateVCSInitialized, o.initRepository},
	}
}

// Run creates appName from the template.
// The returned result is never nil; a non-nil Err means the run failed.
func (o *Orchestrator) Run(ctx context.Context, appName string) *domain.ScaffoldResult {
	startTime := time.Now()

	req, err := domain.NewScaffoldRequest(appName, o.workDir)
	if err != nil {
		return &domain.ScaffoldResult{State: domain.StateFailed, LastState: domain.StateIdle, Err: err}
	}

	r := &run{req: req, state: domain.StateIdle}
	// Safety net for failures between persist and cleanup
	defer o.removeArchive(r)

	logger := o.logger.WithApp(req.AppName)
	logger.Info().
		Str("dest", req.DestinationPath).
		Str("template", o.template.URL).
		Msg("Creating project")

	for _, s := range o.steps() {
		if err := s.apply(ctx, r); err != nil {
			logger.Debug().Err(err).Str("step", s.name).Str("state", r.state.String()).Msg("Step failed")
			return &domain.ScaffoldResult{
				Request:   req,
				State:     domain.StateFailed,
				LastState: r.state,
				Err:       err,
			}
		}
		r.state = s.to
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Project created")

	return &domain.ScaffoldResult{
		Request:   req,
		State:     domain.StateDone,
		LastState: domain.StateVCSInitialized,
	}
}

func (o *Orchestrator) checkDestination(_ context.Context, r *run) error {
	return guard.Check(r.req.DestinationPath)
}

func (o *Orchestrator) download(ctx context.Context, r *run) error {
	h := o.reporter.Begin(utils.DescDownloading)
	body, err := o.fetcher.Fetch(ctx, o.template.URL)
	o.reporter.End(h, err == nil)
	if err != nil {
		return err
	}
	r.body = body
	return nil
}

func (o *Orchestrator) persist(_ context.Context, r *run) error {
	a, err := archive.Persist(o.workDir, r.body)
	if err != nil {
		return err
	}
	r.archive = a
	r.body = nil
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, r *run) error {
	h := o.reporter.Begin(utils.DescExtracting)
	err := o.extractor.Extract(ctx, r.archive.LocalPath, r.req.DestinationPath)
	o.reporter.End(h, err == nil)
	return err
}

func (o *Orchestrator) cleanup(_ context.Context, r *run) error {
	o.removeArchive(r)
	return nil
}

// initRepository runs without a progress span; git writes to the terminal
func (o *Orchestrator) initRepository(ctx context.Context, r *run) error {
	return o.vcs.Init(ctx, r.req.DestinationPath)
}

// removeArchive deletes the transient archive if one was written.
// Failures are logged and never replace the run's outcome.
func (o *Orchestrator) removeArchive(r *run) {
	if r.archive == nil {
		return
	}
	if err := archive.Remove(r.archive); err != nil {
		o.logger.Warn().Err(err).Str("path", r.archive.LocalPath).Msg("Failed to remove downloaded archive")
	}
	r.archive = nil
}

// PackageManager returns the package manager named in the next-steps guide
func (o *Orchestrator) PackageManager() string {
	if o.config.Project.PackageManager == "" {
		return config.DefaultPackageManager
	}
	return o.config.Project.PackageManager
}
