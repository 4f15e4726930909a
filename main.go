package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/msomdec/bookshelf/internal/catalog"
	"github.com/msomdec/bookshelf/internal/config"
	"github.com/msomdec/bookshelf/internal/domain"
	"github.com/msomdec/bookshelf/internal/handler"
	"github.com/msomdec/bookshelf/internal/repository/memory"
	"github.com/msomdec/bookshelf/internal/repository/sqlite"
	"github.com/msomdec/bookshelf/internal/service"
)

var logLevel = new(slog.LevelVar)

func main() {
	logOpts := &slog.HandlerOptions{Level: logLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Library catalog with borrowing, served over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newCatalogCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logLevel.Set(cfg.Level())
			return serve(cmd.Context(), cfg, inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep profiles in memory instead of DATABASE_PATH")
	return cmd
}

func newCatalogCommand() *cobra.Command {
	var (
		size int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print a generated catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("%w: size must be positive", domain.ErrInvalidInput)
			}
			return printCatalog(cmd.OutOrStdout(), catalog.Generate(catalog.NewRand(seed), size))
		},
	}
	cmd.Flags().IntVar(&size, "size", catalog.DefaultSize, "number of books")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func printCatalog(out io.Writer, books []domain.Book) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tYEAR\tISBN")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", b.ID, b.Title, b.Author, b.Category, b.Year, b.ISBN)
	}
	return tw.Flush()
}

func serve(ctx context.Context, cfg config.Config, inMemory bool) error {
	var storage domain.StorageProvider
	if inMemory {
		storage = memory.NewStorage()
		slog.Info("using in-memory profile storage")
	} else {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied", "path", cfg.DatabasePath)
		storage = db
	}

	passwords, err := service.NewPasswordPolicy(cfg.PasswordHashing, cfg.BcryptCost)
	if err != nil {
		return err
	}

	profiles := service.NewProfileService(storage, cfg.ProfileSecret, service.ProfileConfig{
		CatalogSize: cfg.CatalogSize,
		CatalogSeed: cfg.CatalogSeed,
		IdleTTL:     cfg.ProfileIdleTTL,
		Controller: service.ControllerOptions{
			Passwords: passwords,
			LoanDays:  cfg.LoanDays,
		},
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, profiles, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return profiles.RunSweeper(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return g.Wait()
}
