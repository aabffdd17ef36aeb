package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/deedprotocol/escrow-backend/clock"
	"github.com/deedprotocol/escrow-backend/cmd/flags"
	"github.com/deedprotocol/escrow-backend/escrow"
	"github.com/deedprotocol/escrow-backend/httpserver"
	"github.com/deedprotocol/escrow-backend/identity"
	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/deedprotocol/escrow-backend/ledger"
	"github.com/deedprotocol/escrow-backend/notary"
	"github.com/deedprotocol/escrow-backend/registry"
	"github.com/deedprotocol/escrow-backend/storage"
)

// registryConfig is the TOML configuration file layout. Flags set on the
// command line take precedence over file values.
type registryConfig struct {
	ListenAddr      string            `toml:"listen_addr"`
	MetricsAddr     string            `toml:"metrics_addr"`
	ContractOwner   string            `toml:"contract_owner"`
	Custodian       string            `toml:"custodian"`
	AuthMode        string            `toml:"auth_mode"`
	SnapshotURIs    []string          `toml:"snapshot_uris"`
	SnapshotPointer string            `toml:"snapshot_pointer"`
	SnapshotMinutes int64             `toml:"snapshot_minutes"`
	JournalHead     string            `toml:"journal_head"`
	Balances        map[string]uint64 `toml:"balances"`
}

func defaultConfig() registryConfig {
	return registryConfig{
		ListenAddr:      "127.0.0.1:8080",
		MetricsAddr:     "127.0.0.1:8090",
		Custodian:       "000000000000000000000000000000000000e5c0",
		AuthMode:        "signature",
		SnapshotPointer: "deed-snapshot.latest",
		SnapshotMinutes: 5,
		JournalHead:     "deed-journal.head",
	}
}

var serviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML configuration file",
	},
	&cli.StringFlag{
		Name:  "listen-addr",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "address to listen on for Prometheus metrics",
	},
	&cli.StringFlag{
		Name:  "contract-owner",
		Usage: "identity of the contract owner. 40-char hex string",
	},
	&cli.StringFlag{
		Name:  "custodian",
		Usage: "identity under which escrowed funds are held. 40-char hex string",
	},
	&cli.StringFlag{
		Name:  "auth-mode",
		Usage: "caller authentication: 'signature' or 'header'",
	},
	&cli.StringSliceFlag{
		Name:  "snapshot-uri",
		Usage: "storage backend URIs for state snapshots (file://, s3://, mem://)",
	},
	&cli.StringFlag{
		Name:  "snapshot-pointer",
		Usage: "path of the file tracking the latest snapshot content id",
	},
	&cli.Int64Flag{
		Name:  "snapshot-minutes",
		Usage: "minutes between periodic snapshots",
	},
	&cli.StringFlag{
		Name:  "journal-head",
		Usage: "path of the file tracking the latest escrow journal entry",
	},
}

func main() {
	app := &cli.App{
		Name:   "deedregistry",
		Usage:  "Serve the deed registry and escrow API",
		Flags:  append(serviceFlags, flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(cCtx *cli.Context) (registryConfig, error) {
	cfg := defaultConfig()

	if path := cCtx.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	if cCtx.IsSet("listen-addr") {
		cfg.ListenAddr = cCtx.String("listen-addr")
	}
	if cCtx.IsSet("metrics-addr") {
		cfg.MetricsAddr = cCtx.String("metrics-addr")
	}
	if cCtx.IsSet("contract-owner") {
		cfg.ContractOwner = cCtx.String("contract-owner")
	}
	if cCtx.IsSet("custodian") {
		cfg.Custodian = cCtx.String("custodian")
	}
	if cCtx.IsSet("auth-mode") {
		cfg.AuthMode = cCtx.String("auth-mode")
	}
	if cCtx.IsSet("snapshot-uri") {
		cfg.SnapshotURIs = cCtx.StringSlice("snapshot-uri")
	}
	if cCtx.IsSet("snapshot-pointer") {
		cfg.SnapshotPointer = cCtx.String("snapshot-pointer")
	}
	if cCtx.IsSet("snapshot-minutes") {
		cfg.SnapshotMinutes = cCtx.Int64("snapshot-minutes")
	}
	if cCtx.IsSet("journal-head") {
		cfg.JournalHead = cCtx.String("journal-head")
	}

	return cfg, nil
}

// parseLocations validates every snapshot URI up front so a bad entry fails
// startup instead of the first snapshot.
func parseLocations(uris []string) ([]interfaces.StorageBackendLocation, error) {
	locations := make([]interfaces.StorageBackendLocation, len(uris))
	for i, uri := range uris {
		loc, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, fmt.Errorf("snapshot uri %s: %w", uri, err)
		}
		locations[i] = loc
	}
	return locations, nil
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	cfg, err := loadConfig(cCtx)
	if err != nil {
		logger.Error("Failed to load configuration", "err", err)
		return err
	}

	owner, err := interfaces.NewIdentityFromHex(cfg.ContractOwner)
	if err != nil {
		logger.Error("Invalid contract owner", "err", err)
		return fmt.Errorf("invalid contract-owner: %w", err)
	}
	custodian, err := interfaces.NewIdentityFromHex(cfg.Custodian)
	if err != nil {
		logger.Error("Invalid custodian", "err", err)
		return fmt.Errorf("invalid custodian: %w", err)
	}
	if custodian.Equal(owner) || custodian.IsZero() {
		return fmt.Errorf("custodian must be a distinct non-zero identity")
	}

	var auth interfaces.Authenticator
	switch cfg.AuthMode {
	case "signature":
		auth = identity.SignatureAuthenticator{}
	case "header":
		logger.Warn("Using header authentication, callers are trusted as-is")
		auth = identity.HeaderAuthenticator{}
	default:
		return fmt.Errorf("invalid auth-mode: %s", cfg.AuthMode)
	}

	clk := clock.NewWall(time.Unix(0, 0))
	funds := ledger.NewInMemory(logger)
	for raw, amount := range cfg.Balances {
		id, err := interfaces.NewIdentityFromHex(raw)
		if err != nil {
			return fmt.Errorf("invalid balance identity %s: %w", raw, err)
		}
		funds.Credit(id, interfaces.Amount(amount))
	}

	access := notary.NewAccess(owner, logger)
	notaries := notary.New(access, logger)
	assets := registry.New(clk, logger)
	engine := escrow.New(assets, notaries, funds, clk, custodian, logger)

	// Snapshot persistence is optional; without backends the state lives in
	// memory only.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapDone := make(chan struct{})
	close(snapDone)

	if len(cfg.SnapshotURIs) > 0 {
		locations, err := parseLocations(cfg.SnapshotURIs)
		if err != nil {
			logger.Error("Invalid snapshot URI", "err", err)
			return err
		}

		backend, err := storage.NewFactory(logger).CreateMultiBackend(locations)
		if err != nil {
			logger.Error("Failed to create snapshot storage", "err", err)
			return err
		}

		snapshotter := storage.NewSnapshotter(backend, cfg.SnapshotPointer, clk, assets, notaries, engine, access, logger)
		if err := snapshotter.RestoreLatest(ctx); err != nil {
			logger.Error("Failed to restore snapshot", "err", err)
			return err
		}

		journal, err := storage.NewJournal(backend, cfg.JournalHead, logger)
		if err != nil {
			logger.Error("Failed to open escrow journal", "err", err)
			return err
		}
		engine.SetJournal(journal)

		snapDone = make(chan struct{})
		go func() {
			snapshotter.Run(ctx, time.Duration(cfg.SnapshotMinutes)*time.Minute)
			close(snapDone)
		}()
	}

	handler := httpserver.NewHandler(assets, notaries, engine, access, auth, logger)
	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger, cfg.ListenAddr, cfg.MetricsAddr), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server", "owner", owner.String(), "custodian", custodian.String())
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	cancel()
	<-snapDone
	logger.Info("Server shutdown complete")

	return nil
}
