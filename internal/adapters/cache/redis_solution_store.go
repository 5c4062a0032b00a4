package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/obs"
)

// RedisSolutionStore keeps records as JSON strings under "solution:<run id>"
// and lets Redis expire them after TTL. A zero TTL keeps them forever.
type RedisSolutionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSolutionStore(rdb *redis.Client, ttl time.Duration) *RedisSolutionStore {
	return &RedisSolutionStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient connects to the server at url (redis://...) and verifies
// the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisSolutionStore) key(runID string) string { return "solution:" + runID }

func (r *RedisSolutionStore) Save(ctx context.Context, rec domain.SolutionRecord) (err error) {
	defer obs.Time(ctx, "solutions.redis.Save")(&err)

	if rec.RunID == "" {
		return errors.New("save solution: run id must not be empty")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save solution %s: encode: %w", rec.RunID, err)
	}
	if err := r.rdb.Set(ctx, r.key(rec.RunID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save solution %s: %w", rec.RunID, err)
	}
	return nil
}

func (r *RedisSolutionStore) Get(ctx context.Context, runID string) (_ domain.SolutionRecord, err error) {
	defer obs.Time(ctx, "solutions.redis.Get")(&err)

	payload, err := r.rdb.Get(ctx, r.key(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: %w", runID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: %w", runID, err)
	}

	var rec domain.SolutionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.SolutionRecord{}, fmt.Errorf("get solution %s: decode: %w", runID, err)
	}
	return rec, nil
}
