package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/attendance"
	"github.com/Spok95/sekretariat/internal/backupclient"
	"github.com/Spok95/sekretariat/internal/config"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/httpapi"
	"github.com/Spok95/sekretariat/internal/jobs"
	"github.com/Spok95/sekretariat/internal/logging"
	"github.com/Spok95/sekretariat/internal/notify"
	"github.com/Spok95/sekretariat/internal/observability"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sekretariat",
		Short:         "Student council secretariat service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), recomputeCmd(), tokenCmd(), restoreCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sekretariat", version)
		},
	})
	return cmd
}

type env struct {
	cfg *config.Config
	log *logging.Log
	db  *sql.DB
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	e.log.Closer()
}

// bootstrap loads config, builds the logger and opens the database.
func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logging.Init(logging.Options{Level: cfg.LogLevel, Env: cfg.Env, Release: version})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Closer()
		return nil, err
	}
	return &env{cfg: cfg, log: lg, db: database}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	log := e.log.Base

	flush, err := observability.InitSentry(e.cfg.SentryDSN, e.cfg.Env, version)
	if err != nil {
		log.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	if err := db.Migrate(ctx, e.db, "up"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	notifier, err := notify.Connect(e.cfg.BotToken, log, e.cfg.AdminIDs, e.cfg.Location)
	if err != nil {
		// reminders are optional; the API still serves
		log.Error("telegram unavailable", zap.Error(err))
		notifier = notify.Nop{}
	}

	runner := jobs.New(ctx, log)
	runner.Every(time.Minute, "advance_sessions", jobs.AdvanceStatuses(e.db, log))
	runner.Every(time.Minute, "session_reminders", jobs.Reminders(e.db, notifier, log, time.Hour))

	srv := httpapi.NewServer(httpapi.Deps{
		DB:        e.db,
		Log:       log,
		LogLevel:  &e.log.Level,
		JWTSecret: e.cfg.JWTSecret,
		Location:  e.cfg.Location,
		Policy: attendance.Policy{
			OpenBefore: e.cfg.CheckinOpenBefore,
			LateGrace:  e.cfg.LateGrace,
		},
		Notifier: notifier,
		Backup:   backupclient.New(e.cfg.BackupURL),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("addr", e.cfg.HTTPAddr))
		if err := srv.Start(e.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	log.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	runner.Wait()
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the database schema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			e, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if err := db.Migrate(cmd.Context(), e.db, command); err != nil {
				return err
			}
			e.log.Base.Info("migrate done", zap.String("command", command))
			return nil
		},
	}
}

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-allocations",
		Short: "Recalculate every activity allocation from its line items",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			n, err := db.RecomputeAllAllocations(cmd.Context(), e.db)
			if err != nil {
				return err
			}
			e.log.Base.Info("allocations recomputed", zap.Int("activities", n))
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <participant-id>",
		Short: "Issue an API token for a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("participant id: %w", err)
			}
			e, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			p, err := db.GetParticipant(cmd.Context(), e.db, id)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return fmt.Errorf("participant %d is inactive", id)
			}
			tok, err := httpapi.SignToken(e.cfg.JWTSecret, ctxutil.Actor{ID: p.ID, Name: p.Name, Role: p.Role}, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore-latest",
		Short: "Ask the backup sidecar to restore the newest dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out, err := backupclient.New(cfg.BackupURL).RestoreLatest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}
