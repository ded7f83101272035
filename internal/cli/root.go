// Package cli wires the sync engine into a cobra command tree. The root
// command owns the shared application state: configuration, the local
// store, the remote client and the services built on top of them.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/config"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/envelope"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/netx"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/remote"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/services"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/storage"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/syncer"
)

// app holds everything the subcommands share. It is assembled once in the
// root PersistentPreRunE and torn down in PersistentPostRunE.
type app struct {
	cfg    *config.Config
	log    logging.Logger
	store  *storage.Store
	client remote.Client
	probe  netx.Probe
	syncer *syncer.Syncer
	auth   *services.Auth
	users  *services.Users

	// flag values, overlaid onto cfg before wiring
	configPath string
	baseURL    string
	database   string
	verbose    bool
	offline    bool
}

// NewRootCommand creates the dashsync root command.
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "dashsync",
		Short:         "Offline-first mirror of a remote user directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVar(&a.baseURL, "url", "", "remote endpoint base URL")
	cmd.PersistentFlags().StringVar(&a.database, "database", "", "path to the local mirror database")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&a.offline, "offline", false, "skip connectivity probing and work from the local mirror")

	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newSyncCommand(a))
	cmd.AddCommand(newUsersCommand(a))
	cmd.AddCommand(newStatusCommand(a))

	return cmd
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.database != "" {
		cfg.DatabaseDSN = a.database
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = logging.New(level)

	key, err := cfg.Key()
	if err != nil {
		return err
	}
	var codec envelope.Codec = envelope.GCMCodec{}
	if cfg.LegacyCipher {
		codec = envelope.CBCCodec{}
	}

	if a.offline {
		a.probe = netx.StaticProbe(false)
	} else {
		a.probe = netx.NewHTTPProbe(cfg.BaseURL, cfg.PageTimeout)
	}

	online := a.probe.Online(ctx)
	store, err := storage.Open(ctx, cfg.DatabaseDSN, online)
	if err != nil {
		return err
	}
	a.store = store

	a.client = remote.NewHTTPClient(cfg.BaseURL, cfg.PageTimeout, codec, key, a.log)
	a.syncer = syncer.New(store, a.client, a.probe, syncer.Options{
		Resource:            cfg.Resource,
		MaxPages:            cfg.MaxPages,
		MaxRecords:          cfg.MaxRecords,
		SyncInterval:        cfg.SyncInterval,
		PageTimeout:         cfg.PageTimeout,
		OnlineCheckInterval: cfg.OnlineCheckInterval,
	}, a.log)
	a.auth = services.NewAuth(store, a.client, a.probe, a.log)
	a.users = services.NewUsers(store, a.client, a.probe, a.log)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
