package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/colorkeep/colorkeep/internal/api"
	"github.com/colorkeep/colorkeep/pkg/catalog"
	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/prefs"
	"github.com/colorkeep/colorkeep/pkg/settings"
	"github.com/colorkeep/colorkeep/pkg/sqlite"
)

func main() {
	var (
		dataDir  = pflag.String("data-dir", defaultDataDir(), "directory holding the catalog database and preference file")
		listen   = pflag.String("listen", ":9780", "address to listen on")
		logLevel = pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	pflag.Parse()

	logger.SetLevel(*logLevel)

	if err := run(*dataDir, *listen); err != nil {
		logger.Errorf("colorkeep: %v", err)
		os.Exit(1)
	}
}

// run constructs the single preference store and database instances for this
// process and injects them into everything that needs them.
func run(dataDir, listen string) error {
	store := prefs.NewStore(filepath.Join(dataDir, "settings.json"))
	settingsRepo := settings.NewRepository(store)

	db, err := sqlite.Open(filepath.Join(dataDir, "catalog.sqlite"))
	if err != nil {
		return err
	}
	defer db.Close()

	colorStore := sqlite.NewColorStore(db)
	catalogSvc := catalog.NewService(db, colorStore)

	ctx := context.Background()
	if err := settingsRepo.MigrateLegacyDeletedColors(ctx, colorStore); err != nil {
		return fmt.Errorf("migrating legacy deleted colors: %w", err)
	}
	if err := catalogSvc.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	events := api.NewEventBroker()
	events.Start(settingsRepo, catalogSvc)
	defer events.Stop()

	handler := api.NewHandler(catalogSvc, settingsRepo, events)

	server := &http.Server{
		Addr:    listen,
		Handler: handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("colorkeep: listening on %s", listen)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCh:
		logger.Infof("colorkeep: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".colorkeep"
	}
	return filepath.Join(home, ".colorkeep")
}
