package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/data/migrations"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

// Repositories contains all repositories
type Repositories struct {
	History    repo.HistoryRepo
	Settings   repo.SettingsRepo
	Markers    repo.MarkerRepo
	Classifier repo.ClassifierRepo
}

// Options configures NewRepositories
type Options struct {
	AnalyzerURL     string        // Empty disables the remote classifier
	AnalyzerTimeout time.Duration // Per request
	Redis           *redis.Client // Nil stores markers in SQLite
	Clock           clockwork.Clock
}

// NewRepositories creates all repositories over an opened database
func NewRepositories(db *sql.DB, opts Options) *Repositories {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var markers repo.MarkerRepo
	if opts.Redis != nil {
		markers = NewRedisMarkerRepo(opts.Redis)
	} else {
		markers = NewSQLMarkerRepo(db, clock)
	}

	var classifier repo.ClassifierRepo
	if opts.AnalyzerURL != "" {
		classifier = NewAnalyzerRepo(opts.AnalyzerURL, opts.AnalyzerTimeout)
	}

	return &Repositories{
		History:    NewHistoryRepo(db),
		Settings:   NewSettingsRepo(db, clock),
		Markers:    markers,
		Classifier: classifier,
	}
}

// OpenDB opens the SQLite database at path and applies migrations
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if path != memoryDSN {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the embedded schema
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// NewRedisClient connects to redis at addr.
// Returns nil when addr is empty or the server does not answer.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	var client *redis.Client
	if opts, err := redis.ParseURL(addr); err == nil {
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", addr, err)
	}
	return client, nil
}
