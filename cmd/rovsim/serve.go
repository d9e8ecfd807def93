package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rovsim/internal/command"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/telemetry"
)

const (
	telemetryInterval = 100 * time.Millisecond
	shutdownTimeout   = 5 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	s, err := cfg.Build(log)
	if err != nil {
		return err
	}
	rec, err := telemetry.NewRecorder(cfg.Integrator)
	if err != nil {
		return err
	}

	srv := command.NewServer(s.Board(), log)
	if err := srv.Listen(cfg.Server.Addr); err != nil {
		return err
	}
	if first, err := s.Sample(); err == nil {
		srv.OnStep(first)
	}

	simCfg := cfg.SimConfig()
	simCfg.RealTime = true
	if !cmd.Flags().Changed("time") && configFile == "" {
		simCfg.Duration = 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.AddObserver(srv)
	s.AddObserver(rec)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx)
	})

	g.Go(func() error {
		// a finished run takes the servers down with it
		defer cancel()
		err := s.RunWithCallback(ctx, simCfg, func(sim.Sample) bool { return true })
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if httpAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/telemetry", srv.TelemetryHandler(telemetryInterval))
		httpSrv := &http.Server{Addr: httpAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			log.Info().Str("addr", httpAddr).Msg("telemetry stream listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return httpSrv.Shutdown(sctx)
		})
	}

	err = g.Wait()
	log.Info().Int64("steps", rec.Steps()).Msg("serve stopped")
	return err
}
