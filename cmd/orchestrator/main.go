// Package main is the entrypoint for the agent orchestrator (binary name "orchestrator" in Docker).
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/sahayak-ai/agent-orchestrator/internal/config"
	"github.com/sahayak-ai/agent-orchestrator/internal/server"
	"github.com/sahayak-ai/agent-orchestrator/pkg/db"
)

const usage = `Usage: orchestrator [command]
       orchestrator serve            Start the orchestrator (NATS, HTTP, dispatch API).
       orchestrator migrate up       Run database migrations.
       orchestrator migrate status   Show migration status.
       orchestrator ensure-db [name] Create database if missing (default name: orchestrator_test). Uses DATABASE_URL host/user.
       orchestrator clear            Truncate the dispatch history archive; schema is preserved.

Commands:
  serve            (default) Start the agent orchestrator.
  migrate up       Run database migrations only.
  migrate status   Show current migration status.
  ensure-db [name] Create database (e.g. orchestrator_test) on same host as DATABASE_URL; then run tests with that URL.
  clear            Truncate dispatch history; schema preserved.

Environment: COMMS_URL, LLM_API_KEY, DATA_DIR, DATABASE_URL (optional; enables the history archive). See README.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("orchestrator migrate: require subcommand (up, status)")
		}
		sub := args[1]
		switch sub {
		case "up":
			if err := runMigrateUp(); err != nil {
				log.Fatalf("orchestrator migrate up: %v", err)
			}
		case "status":
			if err := runMigrateStatus(); err != nil {
				log.Fatalf("orchestrator migrate status: %v", err)
			}
		default:
			log.Fatalf("orchestrator migrate: unknown subcommand %q (use up, status)", sub)
		}
		return
	case "clear":
		if err := runClear(); err != nil {
			log.Fatalf("orchestrator clear: %v", err)
		}
		return
	case "ensure-db":
		dbName := "orchestrator_test"
		if len(args) > 1 && args[1] != "" {
			dbName = args[1]
		}
		if err := runEnsureDB(dbName); err != nil {
			log.Fatalf("orchestrator ensure-db: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
		break
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("orchestrator: %v", err)
	}
}

func runMigrateUp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runMigrateStatus() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return db.MigrationStatus(ctx, pool)
}

func runClear() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.ClearHistory(ctx, pool); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func runEnsureDB(dbName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	// Replace path with target database name; query (e.g. sslmode) is kept on u.RawQuery.
	u.Path = "/" + dbName
	targetURL := u.String()
	ctx := context.Background()
	if err := db.EnsureDatabase(ctx, targetURL); err != nil {
		return err
	}
	fmt.Printf("Database %q is ready.\n", dbName)
	return nil
}
