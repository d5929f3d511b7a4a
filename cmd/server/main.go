package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/skillpath/backend/internal/app"
)

func main() {
	godotenv.Load()

	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		application.Log.Info("Server listening", "port", application.Cfg.Port)
		return application.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		application.Log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return application.Server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		application.Log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	application.Log.Info("Server stopped")
}
