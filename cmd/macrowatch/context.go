package main

import (
	"log/slog"

	"macrowatch/internal/config"
	"macrowatch/internal/logging"
)

// commandContext lazily loads configuration and the logger so commands that
// need neither (version, config init) stay independent of config state.
type commandContext struct {
	configFlag *string

	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.configPath = path
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}
