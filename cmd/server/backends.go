package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/directory-admin/internal/config"
	"github.com/iliyamo/directory-admin/internal/database"
	"github.com/iliyamo/directory-admin/internal/repository"
	"github.com/iliyamo/directory-admin/internal/session"
	"github.com/iliyamo/directory-admin/internal/settings"
)

// backends are the storage connections picked by configuration.  Any
// backend that cannot be reached falls back to process memory.
type backends struct {
	redis    *redis.Client
	mysql    *sql.DB
	pg       *pgxpool.Pool
	sessions session.Repository
	prefs    settings.Repository
}

func openBackends(ctx context.Context, cfg config.Config, rateLimit bool) *backends {
	b := &backends{}
	mem := repository.NewMemoryStore()

	if cfg.SessionBackend == "redis" || cfg.SettingsBackend == "redis" || rateLimit {
		b.redis = config.NewRedisClient(config.LoadRedisConfig())
	}

	b.sessions = mem
	if cfg.SessionBackend == "redis" {
		if b.redis != nil {
			b.sessions = repository.NewRedisSessionRepo(b.redis, "session")
		} else {
			log.Printf("sessions: redis unavailable, keeping sessions in memory")
		}
	}

	b.prefs = repository.NewMemoryStore()
	switch cfg.SettingsBackend {
	case "redis":
		if b.redis != nil {
			b.prefs = repository.NewRedisPreferenceRepo(b.redis, "prefs")
		} else {
			log.Printf("settings: redis unavailable, keeping preferences in memory")
		}
	case "mysql":
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Printf("settings: mysql unavailable (%v), keeping preferences in memory", err)
			break
		}
		b.mysql = db
		b.prefs = repository.NewPreferenceRepo(db)
	case "postgres":
		pool, err := database.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("settings: postgres unavailable (%v), keeping preferences in memory", err)
			break
		}
		b.pg = pool
		b.prefs = repository.NewPgPreferenceRepo(pool)
	case "memory", "":
	default:
		log.Printf("settings: unknown backend %q, keeping preferences in memory", cfg.SettingsBackend)
	}
	return b
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.mysql != nil {
		_ = b.mysql.Close()
	}
	if b.pg != nil {
		b.pg.Close()
	}
}
