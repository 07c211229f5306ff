// Command seed prepares a clubhouse deployment: it creates the database
// tables, can print the bcrypt hash for a membership secret so
// MEMBERSHIP_HASH can be provisioned, and can create a demo admin
// account for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jmadden/clubhouse/internal/config"
	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/logger"
	"github.com/jmadden/clubhouse/internal/security"
	"github.com/jmadden/clubhouse/internal/store"
)

func main() {
	hashSecret := flag.String("hash-secret", "", "print the bcrypt hash for a membership secret and exit")
	demoAdmin := flag.Bool("demo-admin", false, "create a demo admin account and print its credentials")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger.Init()
	log := logger.Logger.With().Str("service", "clubhouse-seed").Logger()

	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	if *hashSecret != "" {
		hash, err := hasher.Hash(*hashSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("hashing membership secret")
		}
		fmt.Printf("MEMBERSHIP_HASH=%s\n", hash)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer db.Close()

	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("creating tables")
	}
	log.Info().Msg("tables ready")

	if *demoAdmin {
		username := fmt.Sprintf("admin-%s@clubhouse.local", uuid.NewString()[:8])
		password := uuid.NewString()

		hash, err := hasher.Hash(password)
		if err != nil {
			log.Fatal().Err(err).Msg("hashing demo password")
		}

		user := &domain.User{
			FullName:     "Demo Admin",
			Username:     username,
			PasswordHash: hash,
			IsMember:     true,
			IsAdmin:      true,
		}
		storage := store.NewStorage(db)
		if err := storage.Users.Add(ctx, user); err != nil {
			log.Fatal().Err(err).Msg("creating demo admin")
		}

		fmt.Printf("demo admin created\n  username: %s\n  password: %s\n", username, password)
	}
}
