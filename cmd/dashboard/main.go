// Package main runs the inventory dashboard in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/invdash/internal/client"
	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/dashboard"
	"github.com/abgdnv/invdash/internal/logger"
	"github.com/abgdnv/invdash/internal/telemetry"
	"github.com/abgdnv/invdash/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const tracingFlushTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("dashboard failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadDashboard()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logOut, closeLog, err := openLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()
	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format, logOut)
	appLogger.Info("Dashboard starting", "config", cfg.String())

	shutdownTracing, err := telemetry.Setup(ctx, "dashboard", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			appLogger.Error("failed to shut down tracer provider", "error", err)
		}
	}()

	api, err := client.New(cfg.API, cfg.CircuitBreaker, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	// Validate already accepted the locale.
	tag := language.Make(cfg.Display.Locale)

	store := dashboard.NewProductStore(api, appLogger)
	selection := dashboard.NewSelectionModel()
	controller := dashboard.NewCrudController(api, store, selection, appLogger)

	g, gCtx := errgroup.WithContext(ctx)
	uiCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	model := tui.New(uiCtx, tui.Deps{
		Session:    api,
		Store:      store,
		Selection:  selection,
		Controller: controller,
		Formatter:  dashboard.NewPriceFormatter(cfg.Display.CurrencySymbol, tag),
		Login:      cfg.Login,
		Logger:     appLogger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(uiCtx))

	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return nil
	})
	// quit the UI on SIGINT/SIGTERM
	g.Go(func() error {
		<-uiCtx.Done()
		program.Quit()
		return nil
	})

	err = g.Wait()
	api.Logout()
	appLogger.Info("Dashboard stopped")
	return err
}

// openLogFile returns the log destination. Stdout belongs to the UI, so an
// empty path discards logs.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
