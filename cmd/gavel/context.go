package main

import (
	"log/slog"
	"strings"
	"sync"

	"gavel/internal/config"
	"gavel/internal/corpus"
	"gavel/internal/logging"
	"gavel/internal/pipeline"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// workspace bundles the handles every stage command needs.
type workspace struct {
	cfg      *config.Config
	store    *corpus.Store
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
}

// openWorkspace loads config, opens the corpus store, and wires the
// production pipeline. The caller must Close the workspace.
func (c *commandContext) openWorkspace() (*workspace, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := corpus.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &workspace{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		pipeline: pipeline.NewDefault(cfg, store, logger),
	}, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}
