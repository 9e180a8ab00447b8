package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raidboss/internal/config"
	"raidboss/internal/serverapp"

	"golang.org/x/sync/errgroup"
)

func main() {
	senv, err := config.ParseServerEnv()
	if err != nil {
		log.Fatalf("server env: %v", err)
	}

	app, err := buildApp(senv, log.Default())
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, senv, app); err != nil {
		log.Fatal(err)
	}
}

// buildApp loads the config file, overlays RAIDBOSS_* balance variables and
// wires the app.
func buildApp(senv config.ServerEnv, logger *log.Logger) (*serverapp.App, error) {
	cfg, err := config.Load(senv.ConfigPath)
	if err != nil {
		return nil, err
	}
	bal, err := config.FromEnv(cfg.Balance)
	if err != nil {
		return nil, err
	}
	cfg.Balance = bal
	if senv.Seed != 0 {
		cfg.Seed = senv.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return serverapp.New(serverapp.Options{Config: cfg, Logger: logger})
}

func serve(ctx context.Context, senv config.ServerEnv, app *serverapp.App) error {
	srv := &http.Server{
		Addr:              senv.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on http://localhost%s", senv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if senv.AutoTick {
		g.Go(func() error { return app.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
