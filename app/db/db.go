package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/FACorreiaa/devconnector-api/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type DatabaseConfig struct {
	ConnectionURL string
}

// NewDatabaseConfig builds the postgresql:// URL for both pgx and migrate.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if cfg == nil || cfg.Repositories.Postgres.Host == "" {
		return nil, errors.New("postgres host is not configured")
	}
	pg := cfg.Repositories.Postgres

	sslMode := pg.SSLMODE
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")
	if pg.MAXCONWAITINGTIME > 0 {
		q.Set("connect_timeout", strconv.Itoa(pg.MAXCONWAITINGTIME))
	}

	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     pg.Host + ":" + pg.Port,
		Path:     pg.DB,
		RawQuery: q.Encode(),
	}
	logger.Info("Postgres target resolved", slog.String("host", u.Host), slog.String("database", pg.DB))
	return &DatabaseConfig{ConnectionURL: u.String()}, nil
}

// Init opens a pgx pool with google/uuid registered on every connection.
func Init(connectionURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres url: %w", err)
	}
	poolCfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	logger.Info("Postgres pool ready", slog.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, nil
}

// WaitForDB blocks until Postgres answers a ping.
func WaitForDB(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	return waitFor(ctx, logger, "postgres", defaultRetries, pool.Ping)
}

// RunMigrations applies every pending up migration embedded in the binary.
func RunMigrations(databaseURL string, logger *slog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("initializing migrate: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Closing migrate failed", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case err != nil:
		logger.Warn("Schema version unknown after migrating", slog.Any("error", err))
	case dirty:
		return fmt.Errorf("schema version %d is dirty", version)
	default:
		logger.Info("Schema up to date", slog.Uint64("version", uint64(version)))
	}
	return nil
}
