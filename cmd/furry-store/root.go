package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/config"
	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/logging"
	"github.com/odvcencio/furry-store/page"
	"github.com/odvcencio/furry-store/persist"
	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/storage"
)

// env is the state shared by every command of one invocation.
type env struct {
	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
}

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand() *cobra.Command {
	e := &env{v: config.New(), logger: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "furry-store",
		Short:         "Read, write and watch synchronized persistent stores",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.v, configFileFlag(e.v))
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = logger
			zap.ReplaceGlobals(logger)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	addConfigFileFlag(flags, e.v)
	addLogLevelFlag(flags, e.v)
	addLogFormatFlag(flags, e.v)
	addStorageFlags(flags, e.v, persist.LocalName)
	addStorageFlags(flags, e.v, persist.SessionName)
	addCrossTabFlags(flags, e.v)
	addTimeoutFlag(flags, e.v)
	addAreaFlag(flags, e.v)

	cmd.AddCommand(NewGetCommand(e))
	cmd.AddCommand(NewSetCommand(e))
	cmd.AddCommand(NewRemoveCommand(e))
	cmd.AddCommand(NewKeysCommand(e))
	cmd.AddCommand(NewWatchCommand(e))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		zap.L().Error("failed to run command", zap.Error(err))
		os.Exit(1)
	}
}

// openPage builds a page from the loaded configuration. The returned close
// function releases the page and everything opened for it.
func (e *env) openPage(ctx context.Context, loop runtime.LoopConfig) (*page.Page, func() error, error) {
	local, err := storage.Open(ctx, e.cfg.Storage.Local, e.logger.Named("storage.local"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "open local storage")
	}
	session, err := storage.Open(ctx, e.cfg.Storage.Session, e.logger.Named("storage.session"))
	if err != nil {
		return nil, nil, multierr.Append(errors.Wrap(err, "open session storage"), local.Close())
	}
	ch, err := crosstab.Open(ctx, e.cfg.CrossTab, e.logger.Named("crosstab"))
	if err != nil {
		return nil, nil, multierr.Combine(errors.Wrap(err, "open crosstab channel"), local.Close(), session.Close())
	}
	p, err := page.New(page.Options{
		Origin:         e.cfg.Origin,
		LocalStorage:   local,
		SessionStorage: session,
		Channel:        ch,
		WatchLocal:     e.cfg.CrossTab.Driver == crosstab.DriverWatch,
		Timeout:        e.cfg.Timeout,
		Logger:         e.logger,
		Loop:           loop,
	})
	if err != nil {
		return nil, nil, multierr.Combine(err, local.Close(), session.Close(), ch.Close())
	}
	closeFn := func() error {
		return multierr.Combine(p.Close(), ch.Close())
	}
	return p, closeFn, nil
}

// area returns the area selected by --area.
func (e *env) area(p *page.Page) (*persist.Area, error) {
	switch name := areaFlag(e.v); name {
	case "", persist.LocalName:
		return p.Local(), nil
	case persist.SessionName:
		return p.Session(), nil
	default:
		return nil, errors.Errorf("unknown area %q (use local or session)", name)
	}
}
