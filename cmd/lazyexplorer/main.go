// Package main is the lazyexplorer command.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rebeliceyang/lazyexplorer/internal/app"
	"github.com/rebeliceyang/lazyexplorer/internal/config"
	"github.com/rebeliceyang/lazyexplorer/internal/controller"
	"github.com/rebeliceyang/lazyexplorer/internal/db/connection"
	"github.com/rebeliceyang/lazyexplorer/internal/db/discovery"
	"github.com/rebeliceyang/lazyexplorer/internal/history"
	"github.com/rebeliceyang/lazyexplorer/internal/logging"
	"github.com/rebeliceyang/lazyexplorer/internal/models"
	"github.com/rebeliceyang/lazyexplorer/internal/settings"
)

// Version is set at build time
var Version = "dev"

type options struct {
	configFile string
	logLevel   string
	connect    string
}

func (o *options) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/lazyexplorer/config.yaml)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	fs.StringVarP(&o.connect, "connect", "c", "", "saved connection to open on start")
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "lazyexplorer",
		Short: "Terminal explorer for PostgreSQL and SQLite metadata",
		Long: `lazyexplorer browses database connections, schemas, tables, views,
functions, triggers, sequences and indexes in a lazily loaded tree.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	opts.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "connections",
		Short: "List saved connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listConnections(cmd.OutOrStdout(), opts)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "discover",
		Short: "List PostgreSQL servers found on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listInstances(cmd.Context(), cmd.OutOrStdout())
		},
	})
	return rootCmd
}

// env is what every command needs from the config directory
type env struct {
	cfg    *config.Config
	dir    string
	logger *slog.Logger
	closer io.Closer
}

func setup(opts *options) (*env, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	dir, err := config.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	logger, closer, err := logging.Open(cfg.LogPath(dir), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, dir: dir, logger: logger, closer: closer}, nil
}

func run(ctx context.Context, opts *options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = e.closer.Close() }()
	e.logger.Info("starting", "version", Version)

	store, err := settings.NewStore(e.dir, settings.NewPasswordStore(), e.logger)
	if err != nil {
		return err
	}

	var hist *history.Store
	if e.cfg.History.Enabled {
		hist, err = history.NewStore(e.cfg.HistoryPath(e.dir))
		if err != nil {
			// previews still work without a history
			e.logger.Warn("failed to open history", "error", err)
			hist = nil
		}
	}

	ctrl := controller.New(controller.Options{
		Config:  e.cfg,
		Store:   store,
		Manager: connection.NewManager(nil),
		History: hist,
		Logger:  e.logger,
	})
	defer ctrl.Close()

	model := app.New(app.Options{
		Controller:  ctrl,
		Config:      e.cfg,
		Discoverer:  discovery.NewDiscoverer(),
		ConnectName: opts.connect,
		ExportDir:   e.cfg.ExportDir(e.dir),
		Logger:      e.logger,
	})
	defer model.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if e.cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, programOpts...)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	err = store.Watch(watchCtx, func(cfgs []models.ConnectionConfig) {
		p.Send(app.SavedConnectionsChangedMsg{Connections: cfgs})
	})
	if err != nil {
		e.logger.Warn("not watching connections file", "error", err)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	e.logger.Info("exiting")
	return nil
}

func listConnections(w io.Writer, opts *options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = e.closer.Close() }()

	store, err := settings.NewStore(e.dir, nil, e.logger)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tDRIVER\tTARGET")
	for _, c := range store.All() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Driver, c.Info())
	}
	return tw.Flush()
}

func listInstances(ctx context.Context, w io.Writer) error {
	instances := discovery.NewDiscoverer().DiscoverAll(ctx)
	if len(instances) == 0 {
		_, _ = fmt.Fprintln(w, "No servers found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ADDRESS\tSOURCE")
	for _, inst := range instances {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", inst.Address(), inst.Source)
	}
	return tw.Flush()
}
