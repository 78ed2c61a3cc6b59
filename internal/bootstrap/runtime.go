// Package bootstrap wires the process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedIfEmpty loads demo data when the users table is empty.
	SeedIfEmpty bool
}

// InitRuntime connects to the database and Redis and optionally seeds an
// empty database. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedIfEmpty {
		if _, err := seedIfEmpty(ctx, db, seed.DefaultOptions()); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// seedIfEmpty reports whether it seeded.
func seedIfEmpty(ctx context.Context, db *gorm.DB, opts seed.Options) (bool, error) {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if users > 0 {
		middleware.Logger.Info("Skipping demo seed, database already has users", "users", users)
		return false, nil
	}

	opts.ShouldClean = false
	if _, err := seed.NewSeeder(db, opts).Run(ctx); err != nil {
		return false, err
	}
	middleware.Logger.Info("Demo data seeded", "password", seed.DefaultPassword)
	return true, nil
}
