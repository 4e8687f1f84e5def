package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func IsMongoURL(url string) bool {
	return strings.HasPrefix(url, "mongodb://") || strings.HasPrefix(url, "mongodb+srv://")
}

// CreateDatabaseConnectionPool only fails on a bad connection string. An
// unreachable database is logged and the pool is returned anyway, so requests
// fail one by one instead of the process.
func CreateDatabaseConnectionPool(ctx context.Context) (*pgxpool.Pool, StopFn, error) {
	cfg, err := pgxpool.ParseConfig(viper.GetString("DATABASE_URL"))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to parse database connection string: %v", err))
		return nil, NoopStopFn, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to connect to database: %v", err))
		return nil, NoopStopFn, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = ping(ctx, pool.Ping)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to ping to database: %v", err))
	}

	stopFn := func(ctx context.Context, _ time.Duration) {
		log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", "postgres").Msg("closing connection pool")
		pool.Close()
	}

	return pool, stopFn, nil
}

// CreateMongoCollection behaves like CreateDatabaseConnectionPool for a
// mongodb:// DATABASE_URL and returns the events collection.
func CreateMongoCollection(ctx context.Context) (*mongo.Collection, StopFn, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("DATABASE_URL")))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to connect to mongodb: %v", err))
		return nil, NoopStopFn, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	err = ping(ctx, func(ctx context.Context) error { return client.Ping(ctx, nil) })
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to ping to mongodb: %v", err))
	}

	stopFn := func(ctx context.Context, timeout time.Duration) {
		log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", "mongodb").Msg("disconnecting")

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := client.Disconnect(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("stage", "shut down").Str("component", "mongodb").Msg("failed to disconnect")
		}
	}

	return client.Database(viper.GetString("MONGODB_DATABASE")).Collection("events"), stopFn, nil
}

func ping(ctx context.Context, pingFn func(ctx context.Context) error) error {
	return retry.Do(
		func() error { return pingFn(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(max(viper.GetInt("DATABASE_PING_ATTEMPTS"), 1))),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("database not reachable yet")
		}),
	)
}
