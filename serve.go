package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thejezzi/conway/command"
	"github.com/thejezzi/conway/logging"
	"github.com/thejezzi/conway/seed"
	"github.com/thejezzi/conway/session"
	"github.com/thejezzi/conway/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation to browsers over websockets",
		Long: `serve runs a headless simulation seeded from Perlin noise and streams
frames to every connected browser. Browsers can reseed, pause, resume and
destroy it.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := web.NewHub(logger)
	go hub.Run(ctx)

	server := web.NewServer(hub, logger)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe(ctx, addr) }()

	extinct := make(chan struct{}, 1)
	sink := extinctionSink{Hub: hub, extinct: extinct}

	newSession := func() *session.Session {
		return session.New(cfg, session.TickerScheduler{}, sink, logger)
	}
	sess := newSession()
	defer func() { _ = sess.Stop() }()

	reseed := func() error {
		if sess.State() == session.StateStopped {
			sess = newSession()
		}
		g := seed.Noise(cfg.Width, cfg.Height, cfg.SeedDensity, cfg.NoiseScale, time.Now().UnixNano())
		return sess.Start(g)
	}
	if err := reseed(); err != nil {
		return err
	}

	// No source text and no canvas in serve mode, so those commands stay
	// unbound and dispatch reports them as unavailable.
	handlers := command.Handlers{
		Random:  reseed,
		Pause:   func() error { return sess.Pause() },
		Resume:  func() error { return sess.Resume() },
		Destroy: func() error { return sess.Stop() },
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigChan:
			logger.Info("shutting down")
			return nil
		case err := <-serveErr:
			return err
		case kind := <-hub.Commands:
			if err := handlers.Dispatch(kind); err != nil {
				logger.Warn("command rejected", "command", kind, "error", err)
			}
		case <-extinct:
			logger.Info("population extinct, reseeding")
			if err := reseed(); err != nil {
				logger.Error("reseed failed", "error", err)
			}
		}
	}
}

// extinctionSink fans frames out to the hub and nudges the serve loop when
// the population dies, so the demo reseeds itself instead of streaming an
// empty grid forever.
type extinctionSink struct {
	*web.Hub
	extinct chan<- struct{}
}

func (s extinctionSink) PublishFrame(f session.Frame) {
	s.Hub.PublishFrame(f)
	if f.Population == 0 && f.Generation > 0 {
		select {
		case s.extinct <- struct{}{}:
		default:
		}
	}
}
