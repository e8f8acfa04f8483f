// Command initializer creates or updates an editor profile so a fresh
// deployment has someone who can sign in.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/config"
	"github.com/erselk/ugur-sahan-website/internal/db"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	email := flag.String("email", cfg.Auth.AdminEmail, "profile email")
	password := flag.String("password", cfg.Auth.AdminPassword, "profile password (min 8 chars)")
	name := flag.String("name", "Admin", "display name")
	role := flag.String("role", string(domain.RoleAdmin), "admin or author")
	seed := flag.Bool("seed", false, "also insert the sample posts")
	flag.Parse()

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *email == "" {
		logger.Fatalw("An email is required (-email or BLOG_ADMIN_EMAIL)")
	}
	r := domain.Role(*role)
	if r != domain.RoleAdmin && r != domain.RoleAuthor {
		logger.Fatalw("Unknown role", "role", *role)
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Fatalw("Unusable password", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Open(ctx, db.Config{
		Backend:     cfg.Database.Backend,
		DSN:         cfg.Database.PostgresDSN,
		MaxConns:    cfg.Database.MaxConns,
		AutoMigrate: cfg.Database.AutoMigrate,
	}, logger)
	if err != nil {
		logger.Fatalw("Failed to open database", "error", err)
	}
	defer database.Close()
	if database.Backend() == db.BackendMemory {
		logger.Warnw("Memory backend selected; the profile disappears when this process exits")
	}

	profile := &domain.Profile{
		Email:        *email,
		DisplayName:  *name,
		Role:         r,
		PasswordHash: hash,
	}
	if *seed {
		profile, err = db.Seed(ctx, database, profile)
	} else {
		profile, err = database.Profiles().Upsert(ctx, profile)
	}
	if err != nil {
		logger.Fatalw("Failed to store profile", "error", err)
	}

	logger.Infow("Profile ready", "id", profile.ID, "email", profile.Email, "role", profile.Role, "seeded", *seed)
}
