package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/erselk/ugur-sahan-website/internal/config"
	"github.com/erselk/ugur-sahan-website/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	flags = flag.NewFlagSet("migrate", flag.ExitOnError)
	dsn   = flags.String("dsn", "", "postgres DSN (defaults to BLOG_POSTGRES_DSN)")
)

func main() {
	flags.Parse(os.Args[1:])
	args := flags.Args()

	if len(args) < 1 {
		log.Fatal("Usage: migrate [-dsn DSN] COMMAND\n\nCommands:\n  up\n  down\n  status\n  version")
	}

	target := *dsn
	if target == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		target = cfg.Database.PostgresDSN
	}
	if target == "" {
		log.Fatal("No postgres DSN configured")
	}

	db, err := sql.Open("pgx", target)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	ctx := context.Background()
	command := args[0]
	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, "."); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
	case "down":
		if err := goose.DownContext(ctx, db, "."); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
	case "status":
		if err := goose.StatusContext(ctx, db, "."); err != nil {
			log.Fatalf("Migration status failed: %v", err)
		}
	case "version":
		if err := goose.VersionContext(ctx, db, "."); err != nil {
			log.Fatalf("Migration version failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s", command)
	}
}
