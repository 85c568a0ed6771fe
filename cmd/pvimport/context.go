package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/JonMunkholm/pvimport/internal/config"
	"github.com/JonMunkholm/pvimport/internal/core"
	"github.com/JonMunkholm/pvimport/internal/logging"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

// commandContext loads configuration once per invocation and shares it
// between subcommands.
type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config file and environment, applies the log
// flags, and sends logs to logOut so stdout stays free for results.
func (c *commandContext) ensureConfig(logOut io.Writer) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.logLevel != "" {
			cfg.Logging.Level = c.flags.logLevel
		}
		if c.flags.logFormat != "" {
			cfg.Logging.Format = c.flags.logFormat
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logging.Setup(logOut, cfg.Logging.Level, cfg.Logging.Format)
	})
	return c.config, c.configErr
}

// importer builds an Importer from the loaded config; a positive workers
// value overrides the configured worker count.
func (c *commandContext) importer(workers int) *core.Importer {
	opts := core.ImportOptions{
		Workers:         c.config.Import.Workers,
		Pattern:         c.config.Import.Pattern,
		AuxiliaryMarker: c.config.Import.AuxiliaryMarker,
		Logger:          c.logger,
	}
	if workers > 0 {
		opts.Workers = workers
	}
	return core.NewImporter(opts)
}
