package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

const markerKeyPrefix = "privacy-guard:logout:"

// redisMarkerRepo keeps logout markers in redis with a native TTL
type redisMarkerRepo struct {
	client *redis.Client
}

// NewRedisMarkerRepo creates a marker repository on redis
func NewRedisMarkerRepo(client *redis.Client) repo.MarkerRepo {
	return &redisMarkerRepo{client: client}
}

func (r *redisMarkerRepo) Put(ctx context.Context, clientID string, marker domain.LogoutMarker, ttl time.Duration) error {
	payload, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("failed to encode marker: %w", err)
	}
	if err := r.client.Set(ctx, markerKeyPrefix+clientID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store marker: %w", err)
	}
	return nil
}

func (r *redisMarkerRepo) Get(ctx context.Context, clientID string) (*domain.LogoutMarker, error) {
	payload, err := r.client.Get(ctx, markerKeyPrefix+clientID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrMarkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read marker: %w", err)
	}

	var marker domain.LogoutMarker
	if err := json.Unmarshal(payload, &marker); err != nil {
		return nil, fmt.Errorf("failed to decode marker: %w", err)
	}
	return &marker, nil
}

func (r *redisMarkerRepo) Delete(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, markerKeyPrefix+clientID).Err(); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return nil
}

// sqlMarkerRepo keeps logout markers in SQLite when redis is not configured
type sqlMarkerRepo struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSQLMarkerRepo creates a marker repository on SQLite
func NewSQLMarkerRepo(db *sql.DB, clock clockwork.Clock) repo.MarkerRepo {
	return &sqlMarkerRepo{db: db, clock: clock}
}

func (r *sqlMarkerRepo) Put(ctx context.Context, clientID string, marker domain.LogoutMarker, ttl time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO logout_markers (client_id, host, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			host = excluded.host,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, clientID, marker.Host, marker.CreatedAt.UnixMilli(), r.clock.Now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to store marker: %w", err)
	}
	return nil
}

func (r *sqlMarkerRepo) Get(ctx context.Context, clientID string) (*domain.LogoutMarker, error) {
	var marker domain.LogoutMarker
	var createdAt, expiresAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT host, created_at, expires_at FROM logout_markers WHERE client_id = ?
	`, clientID).Scan(&marker.Host, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMarkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read marker: %w", err)
	}

	// Expired rows are dropped lazily
	if r.clock.Now().UnixMilli() >= expiresAt {
		if err := r.Delete(ctx, clientID); err != nil {
			return nil, err
		}
		return nil, domain.ErrMarkerNotFound
	}

	marker.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &marker, nil
}

func (r *sqlMarkerRepo) Delete(ctx context.Context, clientID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM logout_markers WHERE client_id = ?`, clientID); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return nil
}
