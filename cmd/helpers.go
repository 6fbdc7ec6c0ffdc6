package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/assistant"
	"github.com/ziadkadry99/auto-qa/internal/atlassian"
	"github.com/ziadkadry99/auto-qa/internal/config"
	"github.com/ziadkadry99/auto-qa/internal/db"
	"github.com/ziadkadry99/auto-qa/internal/extract"
	"github.com/ziadkadry99/auto-qa/internal/generation"
	"github.com/ziadkadry99/auto-qa/internal/knowledge"
	"github.com/ziadkadry99/auto-qa/internal/logging"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
	"github.com/ziadkadry99/auto-qa/internal/teams"
)

// app bundles the long-lived components shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *db.DB
	metrics   *metrics.Metrics
	teams     *teams.Store
	knowledge *knowledge.Store
	runs      *generation.RunStore
	jira      *atlassian.Jira
	gen       *generation.Service
	assistant *assistant.Assistant
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `autoqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newApp loads the configuration and builds every component. The caller
// must call close when done.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	m := metrics.New()

	gen, err := artifact.New(cfg, m, logger)
	if err != nil {
		database.Close()
		return nil, err
	}
	if cfg.Provider != config.ProviderMock {
		if envVar := config.APIKeyEnvVar(cfg.Provider); os.Getenv(envVar) == "" {
			logger.Warn("API key not set; generation calls will fail", zap.String("env", envVar))
		}
	}

	teamStore := teams.NewStore(database)
	kbStore := knowledge.NewStore(database)
	runs := generation.NewRunStore(database)
	queries := assistant.NewQueryStore(database)
	jira := atlassian.NewJira(cfg.Atlassian)

	svc := generation.NewService(generation.Deps{
		Generator:       gen,
		Resolver:        teams.NewResolver(teamStore, logger),
		Extractor:       extract.New(logger),
		Pages:           atlassian.NewConfluence(cfg.Atlassian),
		Stories:         jira,
		Runs:            runs,
		Metrics:         m,
		Logger:          logger,
		MaxContextChars: cfg.Generation.MaxContextChars,
		DefaultMaxCases: cfg.Generation.DefaultMaxCases,
	})

	qa := assistant.New(gen, knowledge.NewRetriever(kbStore), kbStore, teamStore, queries, m, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        database,
		metrics:   m,
		teams:     teamStore,
		knowledge: kbStore,
		runs:      runs,
		jira:      jira,
		gen:       svc,
		assistant: qa,
	}, nil
}

func (a *app) close() {
	a.db.Close()
	a.logger.Sync()
}
