package main

import (
	"context"
	"flag"
	"io"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/paddleworks/slalomboard/internal/config"
	"github.com/paddleworks/slalomboard/internal/feed"
	"github.com/paddleworks/slalomboard/internal/observability"
	"github.com/paddleworks/slalomboard/internal/protocol/gatejson"
	"github.com/paddleworks/slalomboard/internal/provider"
	"github.com/paddleworks/slalomboard/internal/recording"
)

func main() {
	configPath := flag.String("config", "", "path to relay config (TOML)")
	flag.Parse()

	observability.InitLogger("relayctl")
	cfg, err := config.LoadRelay(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("relayctl failed")
	}
}

func run(cfg config.RelayConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.RegisterMetrics()

	bus := feed.NewBus()
	observability.RegisterSubscriptionsGauge(bus.Subscribers)
	upstream, err := provider.NewTiming(provider.TimingConfig{
		Address:     cfg.UpstreamAddress,
		DialTimeout: cfg.DialTimeout,
		Backoff:     cfg.Transport.Backoff(),
		Limits:      cfg.Transport.Limits(),
		Bus:         bus,
	})
	if err != nil {
		return err
	}

	var capture *recording.Writer
	if cfg.CapturePath != "" {
		capture, err = recording.Create(cfg.CapturePath, recording.Meta{
			Source: "relayctl",
			Note:   cfg.CaptureNote,
		})
		if err != nil {
			return err
		}
		defer capture.Close()
		log.Info().Str("path", cfg.CapturePath).Msg("capture enabled")
	}

	clients := newHub()
	sub := bus.SubscribeAll(relayHandler(clients, capture))
	defer sub.Cancel()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}

	log.Info().
		Str("upstream", cfg.UpstreamAddress).
		Str("listen", cfg.ListenAddr).
		Msg("relay running")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveDownstream(gctx, ln, clients, upstream)
	})
	g.Go(func() error {
		if err := upstream.Connect(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		upstream.Disconnect()
		return nil
	})
	return g.Wait()
}

// relayHandler translates bus traffic into downstream envelope lines.
// The relay's own link state becomes upstream_status; decode errors
// stay local.
func relayHandler(clients *hub, capture *recording.Writer) func(feed.Event) {
	return func(ev feed.Event) {
		switch v := ev.(type) {
		case *feed.ConnectionStatus:
			var connected bool
			switch v.State {
			case feed.ConnConnected:
				connected = true
			case feed.ConnReconnecting:
				connected = false
			default:
				return
			}
			line, err := gatejson.MarshalUpstream(connected, v.Detail, time.Now())
			if err != nil {
				return
			}
			clients.broadcast(line)
			if capture != nil {
				if err := capture.WriteUpstream(recording.SrcTiming, connected, v.Detail); err != nil {
					log.Warn().Err(err).Msg("capture upstream write failed")
				}
			}
		case *feed.ErrorEvent:
			return
		default:
			line, err := gatejson.Marshal(ev, time.Now())
			if err != nil {
				return
			}
			clients.broadcast(line)
			if capture != nil {
				if err := capture.WriteEvent(recording.SrcTiming, ev); err != nil {
					log.Warn().Err(err).Msg("capture event write failed")
				}
			}
		}
	}
}

// serveDownstream accepts scoreboard clients until ctx ends. Each new
// client is greeted with the current upstream state so it never waits
// for the next transition.
func serveDownstream(ctx context.Context, ln net.Listener, clients *hub, upstream provider.Provider) error {
	defer clients.closeAll()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		greet, gerr := gatejson.MarshalUpstream(upstream.Connected(), "", time.Now())
		if gerr == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := conn.Write(append(greet, '\n')); err != nil {
				conn.Close()
				continue
			}
		}
		clients.add(conn)
		log.Info().
			Str("remote", conn.RemoteAddr().String()).
			Int("clients", clients.count()).
			Msg("downstream client connected")

		// Clients never send data; a read unblocks only on close.
		go func(c net.Conn) {
			_, _ = io.Copy(io.Discard, c)
			clients.remove(c)
			log.Info().
				Str("remote", c.RemoteAddr().String()).
				Int("clients", clients.count()).
				Msg("downstream client disconnected")
		}(conn)
	}
}
