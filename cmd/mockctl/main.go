package main

import (
	"context"
	"flag"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/config"
	"github.com/paddleworks/slalomboard/internal/observability"
	"github.com/paddleworks/slalomboard/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to mock config (TOML)")
	flag.Parse()

	observability.InitLogger("mockctl")
	cfg, err := config.LoadMock(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("mockctl failed")
	}
}

func run(cfg config.MockConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := raceScript(cfg.Title)
	if err != nil {
		return err
	}
	framed := make([][]byte, len(docs))
	for i, doc := range docs {
		framed[i] = append(append([]byte{}, doc...), transport.PipeDelim)
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info().
		Str("listen", cfg.ListenAddr).
		Int("documents", len(framed)).
		Dur("tick", cfg.Tick).
		Bool("loop", cfg.Loop).
		Msg("mock timing server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("scoreboard connected")
		go serveConn(ctx, conn, framed, cfg)
	}
}

// serveConn streams the script to one client, one document per tick.
func serveConn(ctx context.Context, conn net.Conn, framed [][]byte, cfg config.MockConfig) {
	defer conn.Close()
	for {
		for _, doc := range framed {
			if !tick(ctx, cfg.Tick) {
				return
			}
			if _, err := conn.Write(doc); err != nil {
				log.Debug().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("client gone")
				return
			}
		}
		if !cfg.Loop {
			return
		}
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("script restarting")
	}
}

func tick(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
