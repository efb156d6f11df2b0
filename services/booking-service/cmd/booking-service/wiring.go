package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cruiserex/site/libs/config"
	"github.com/cruiserex/site/libs/db"
	"github.com/cruiserex/site/libs/kafkax"
	"github.com/cruiserex/site/libs/runtime"
	"github.com/cruiserex/site/services/booking-service/internal/appointments"
	"github.com/cruiserex/site/services/booking-service/internal/outbox"
	"github.com/cruiserex/site/services/booking-service/internal/sessions"
	"github.com/cruiserex/site/services/booking-service/internal/storage"
)

type storeSetup struct {
	driver string
	store  appointments.Store
	checks []runtime.ReadyCheck
	close  func()
}

// openStore selects the appointment backend from STORE_DRIVER. The postgres
// driver also starts the outbox publisher, which stops with ctx.
func openStore(ctx context.Context, logger *slog.Logger) (storeSetup, error) {
	driver := strings.ToLower(strings.TrimSpace(config.String("STORE_DRIVER", "postgres")))
	switch driver {
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return storeSetup{}, err
		}
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			return storeSetup{}, fmt.Errorf("db connection failed: %w", err)
		}
		if config.Bool("MIGRATE_ON_START", true) {
			applied, err := storage.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return storeSetup{}, fmt.Errorf("migrate: %w", err)
			}
			if len(applied) > 0 {
				logger.Info("migrations applied", "files", applied)
			}
		}

		outboxRepo := outbox.NewRepository(pool)
		brokers := config.String("KAFKA_BROKERS", "")
		publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   brokers,
			PollEvery: 2 * time.Second,
			BatchSize: 50,
		})
		go publisher.Run(ctx)

		checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
		if publisher.Enabled() {
			checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
		}
		return storeSetup{
			driver: driver,
			store:  storage.NewPostgres(pool, outboxRepo),
			checks: checks,
			close:  pool.Close,
		}, nil

	case "supabase":
		url, err := config.RequiredString("SUPABASE_URL")
		if err != nil {
			return storeSetup{}, err
		}
		key, err := config.RequiredString("SUPABASE_SERVICE_ROLE_KEY")
		if err != nil {
			return storeSetup{}, err
		}
		store, err := storage.NewSupabase(url, key)
		if err != nil {
			return storeSetup{}, fmt.Errorf("supabase client: %w", err)
		}
		return storeSetup{driver: driver, store: store, close: func() {}}, nil

	case "memory":
		logger.Warn("using in-memory appointment store; data is lost on restart")
		return storeSetup{driver: driver, store: storage.NewMemory(), close: func() {}}, nil
	}
	return storeSetup{}, fmt.Errorf("unknown STORE_DRIVER %q (want postgres, supabase or memory)", driver)
}

type sessionSetup struct {
	manager *sessions.Manager
	checks  []runtime.ReadyCheck
	close   func()
}

// openSessions keeps admin sessions in redis when REDIS_ADDR is set so they are
// shared across instances; otherwise in process.
func openSessions(logger *slog.Logger) (sessionSetup, error) {
	ttl := time.Duration(config.Int("SESSION_TTL_MINUTES", 60, 1)) * time.Minute

	key := config.String("SESSION_SIGNING_KEY", "")
	if key == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return sessionSetup{}, err
		}
		key = hex.EncodeToString(buf)
		logger.Warn("SESSION_SIGNING_KEY not set; admin sessions end on restart")
	}

	addr := strings.TrimSpace(config.String("REDIS_ADDR", ""))
	if addr == "" {
		logger.Info("admin sessions kept in memory")
		return sessionSetup{
			manager: sessions.NewManager(sessions.NewMemoryStore(), key, ttl),
			close:   func() {},
		}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0, 0),
	})
	logger.Info("admin sessions kept in redis", "redis_addr", addr)
	return sessionSetup{
		manager: sessions.NewManager(sessions.NewRedisStore(rdb, config.String("SESSION_KEY_PREFIX", "admin-session")), key, ttl),
		checks:  []runtime.ReadyCheck{{Name: "redis", Check: sessions.RedisReadyCheck(rdb)}},
		close:   func() { _ = rdb.Close() },
	}, nil
}
