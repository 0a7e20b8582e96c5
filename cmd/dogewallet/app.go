package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bitfsorg/libdoge-go/config"
	"github.com/bitfsorg/libdoge-go/events"
	"github.com/bitfsorg/libdoge-go/logger"
	"github.com/bitfsorg/libdoge-go/network"
	"github.com/bitfsorg/libdoge-go/reserve"
	"github.com/bitfsorg/libdoge-go/send"
	"github.com/bitfsorg/libdoge-go/wallet"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	dataDir     string
	network     string
	logLevel    string
	indexerKind string
	indexerURL  string
}

// app is the resolved runtime configuration of one command invocation.
type app struct {
	cfg     config.Config
	net     *wallet.NetworkConfig
	log     *slog.Logger
	closers []func() error
}

// path returns the config file the flags point at.
func (g *globalFlags) path() string {
	if g.configPath != "" {
		return g.configPath
	}
	dir := g.dataDir
	if dir == "" {
		dir = config.DefaultDataDir()
	}
	return config.ConfigPath(dir)
}

// load layers defaults, the config file, the environment and flags, then
// validates the result and installs the logger.
func (g *globalFlags) load() (*app, error) {
	cfg, err := config.LoadConfig(g.path())
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	config.ApplyEnv(&cfg, config.Env())

	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.network != "" {
		cfg.Network = g.network
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.indexerKind != "" {
		cfg.Indexer.Kind = g.indexerKind
	}
	if g.indexerURL != "" {
		cfg.Indexer.URL = g.indexerURL
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Init(&logger.Options{Level: level})

	net, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, net: net, log: logger.With("network", net.Name)}, nil
}

// indexer builds the configured indexer wrapped in the retry policy.
func (a *app) indexer() (network.Indexer, error) {
	ic := network.IndexerConfig{
		Kind:              a.cfg.Indexer.Kind,
		URL:               a.cfg.Indexer.URL,
		User:              a.cfg.Indexer.User,
		Password:          a.cfg.Indexer.Password,
		NetworkCode:       a.net.ExplorerCode,
		RequestsPerSecond: a.cfg.Indexer.RequestsPerSecond,
		Timeout:           a.cfg.Indexer.Timeout,
	}
	if ic.Kind == network.KindRPC {
		if ic.URL == network.DefaultRESTURL {
			ic.URL = ""
		}
		// Fill missing credentials from the local-node presets.
		rc, err := network.ResolveConfig(&network.RPCConfig{
			URL:      ic.URL,
			User:     ic.User,
			Password: ic.Password,
			Timeout:  ic.Timeout,
		}, config.Env(), a.net.Name)
		if err != nil {
			return nil, err
		}
		ic.URL, ic.User, ic.Password = rc.URL, rc.User, rc.Password
	}

	idx, err := network.NewIndexer(ic)
	if err != nil {
		return nil, err
	}
	return network.WithRetry(idx, a.cfg.RetryPolicy(), a.log), nil
}

// sender wires reservations and event publication as configured.
func (a *app) sender(idx network.Indexer) (*send.Sender, error) {
	opts := []send.Option{
		send.WithFeePolicy(a.cfg.FeePolicy()),
		send.WithDustLimit(a.cfg.DustLimit),
		send.WithLogger(a.log),
	}

	if a.cfg.Reservation.Enabled {
		store, err := reserve.OpenBoltStore(config.ReservationsPath(a.cfg.DataDir))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		opts = append(opts, send.WithReservations(store, a.cfg.Reservation.TTL))
	}

	if a.cfg.Events.NATSURL != "" {
		nc, err := events.Connect(a.cfg.Events.NATSURL, a.log)
		if err != nil {
			// Publishing is best effort; the payment itself does not need NATS.
			a.log.Warn("events disabled", "error", err)
		} else {
			a.closers = append(a.closers, func() error { return nc.Drain() })
			opts = append(opts, send.WithNotifier(events.NewEmitter(nc, a.cfg.Events.Subject)))
		}
	}

	return send.New(idx, a.net, opts...)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", "error", err)
		}
	}
}

// formatDOGE renders koinu with the currency suffix.
func formatDOGE(koinu uint64) string {
	return fmt.Sprintf("%s DOGE", network.FormatAmount(koinu))
}
