package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/paddleworks/slalomboard/internal/config"
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
	"github.com/paddleworks/slalomboard/internal/provider"
	"github.com/paddleworks/slalomboard/internal/results"
	"github.com/paddleworks/slalomboard/internal/scoreboard"
	"github.com/paddleworks/slalomboard/internal/settings"
	"github.com/paddleworks/slalomboard/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to board config (TOML)")
	flag.Parse()

	observability.InitLogger("boardctl")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("boardctl failed")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.RegisterMetrics()

	bus := feed.NewBus()
	observability.RegisterSubscriptionsGauge(bus.Subscribers)
	engine := scoreboard.NewEngine(cfg.Scoreboard.Options())
	engine.Attach(bus)
	defer engine.Detach()

	// The merge resolver rides the same bus; the engine must see every
	// results event before the resolver re-merges it.
	if cfg.Results.LookupBaseURL != "" {
		client, err := results.NewClient(results.ClientConfig{
			BaseURL: cfg.Results.LookupBaseURL,
			Timeout: cfg.Results.LookupTimeout,
		})
		if err != nil {
			return err
		}
		resolver, err := results.NewResolver(results.ResolverConfig{
			Lookup:  client,
			Board:   engine,
			Timeout: cfg.Results.LookupTimeout,
		})
		if err != nil {
			return err
		}
		resolver.Attach(bus)
		defer resolver.Close()
	}

	var store settings.Store
	if cfg.Settings.Path != "" {
		boltStore, err := settings.NewBoltStore(cfg.Settings.Path)
		if err != nil {
			return err
		}
		defer boltStore.Close()
		store = boltStore
	}

	prov, err := buildProvider(cfg, bus)
	if err != nil {
		return err
	}

	srv := web.NewServer(web.Config{
		ListenAddr:  cfg.Web.ListenAddr,
		CORSOrigins: cfg.Web.CORSOrigins,
	}, engine, store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		if err := prov.Connect(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		prov.Disconnect()
		return nil
	})

	log.Info().
		Str("provider", cfg.Provider.Kind).
		Str("web_listen", cfg.Web.ListenAddr).
		Msg("boardctl running")
	return g.Wait()
}

func buildProvider(cfg config.Config, bus *feed.Bus) (provider.Provider, error) {
	switch cfg.Provider.Kind {
	case config.ProviderTiming:
		return provider.NewTiming(provider.TimingConfig{
			Address:     cfg.Provider.Address,
			DialTimeout: cfg.Provider.DialTimeout,
			Backoff:     cfg.Transport.Backoff(),
			Limits:      cfg.Transport.Limits(),
			Bus:         bus,
		})
	case config.ProviderGateway:
		return provider.NewGateway(provider.GatewayConfig{
			Address:     cfg.Provider.Address,
			DialTimeout: cfg.Provider.DialTimeout,
			Backoff:     cfg.Transport.Backoff(),
			Limits:      cfg.Transport.Limits(),
			Bus:         bus,
		})
	case config.ProviderReplay:
		return provider.NewReplay(provider.ReplayConfig{
			Path:  cfg.Provider.RecordingPath,
			Speed: cfg.Provider.ReplaySpeed,
			Loop:  cfg.Provider.ReplayLoop,
			Bus:   bus,
		})
	default:
		return nil, fmt.Errorf("unknown provider kind: %q", cfg.Provider.Kind)
	}
}
