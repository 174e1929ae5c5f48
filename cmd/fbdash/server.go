package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/fbdash/internal/api"
	"github.com/kalambet/fbdash/internal/config"
	"github.com/kalambet/fbdash/internal/dataset"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset and serve the dashboard (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, cfg)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the dashboard server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)
		return showStatus(cmd.Context(), client, cfg)
	},
}

func loadDataset(cfg config.Config) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := dataset.Load(cfg.Data.CSVPath, cfg.LoadOptions())
	if err != nil {
		return nil, err
	}
	minDate, maxDate := ds.DateRange()
	slog.Info("dataset ready",
		"id", ds.ID(),
		"rows", ds.Len(),
		"min_date", minDate.Format(dataset.DateLayout),
		"max_date", maxDate.Format(dataset.DateLayout),
		"duration", time.Since(start),
	)
	return ds, nil
}

// runServer loads the dataset and serves until ctx is cancelled or the
// listener fails. A load failure aborts before anything binds.
func runServer(ctx context.Context, cfg config.Config) error {
	slog.Info("fbdash starting", "version", version)

	ds, err := loadDataset(cfg)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	handler := api.NewDashboardHandler(api.Deps{
		Dataset:  ds,
		PageSize: cfg.UI.PageSize,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}

	return serve(ctx, ln, handler)
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("fbdash listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func showStatus(ctx context.Context, client *apiClient, cfg config.Config) error {
	var health struct {
		Status    string `json:"status"`
		DatasetID string `json:"dataset_id"`
		Rows      int    `json:"rows"`
	}

	resp, err := client.get(ctx, "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else if err := decodeJSON(resp, &health); err != nil {
		printError("health check failed: %v", err)
	} else {
		printStatus("Server", "running on %s", client.baseURL)
		printStatus("Dataset", "%s (%d rows)", health.DatasetID, health.Rows)
	}

	printStatus("CSV file", "%s", cfg.Data.CSVPath)
	if _, err := os.Stat(cfg.Data.CSVPath); err != nil {
		printWarning("CSV file not readable: %v", err)
	}
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
