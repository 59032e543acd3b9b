package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/vedran77/tweeter/internal/config"
)

func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return ConnectDSN(ctx, dsn, cfg.DBMaxConns)
}

func ConnectDSN(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database dsn")
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "unable to ping database")
	}

	return pool, nil
}

// Migrate creates the users and tweets tables. Relations are stored as
// uuid arrays on the owning rows; parent_id has no foreign key
// so replies survive deletion of their parent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return errors.Wrap(err, "applying schema")
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	profile_pic   TEXT,
	location      TEXT,
	dob           TIMESTAMPTZ,
	following     UUID[] NOT NULL DEFAULT '{}',
	followers     UUID[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tweets (
	id         UUID PRIMARY KEY,
	seq        BIGSERIAL NOT NULL UNIQUE,
	content    TEXT NOT NULL CHECK (content <> ''),
	image      TEXT,
	tweeted_by UUID NOT NULL REFERENCES users(id),
	likes      UUID[] NOT NULL DEFAULT '{}',
	retweet_by UUID[] NOT NULL DEFAULT '{}',
	replies    UUID[] NOT NULL DEFAULT '{}',
	parent_id  UUID,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tweets_tweeted_by ON tweets (tweeted_by);
CREATE INDEX IF NOT EXISTS idx_tweets_feed ON tweets (created_at DESC, seq DESC);
`
