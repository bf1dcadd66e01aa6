package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"github.com/redis/go-redis/v9"
)

// BenchmarkCache serves per-platform benchmark rows from redis, falling back
// to the repository on miss. Benchmarks are slow-moving reference data so a
// stale read within the TTL is acceptable.
type BenchmarkCache struct {
	repo   repository.BenchmarkRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

func NewBenchmarkCache(repo repository.BenchmarkRepository, client *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *BenchmarkCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BenchmarkCache{
		repo:   repo,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// ByPlatform returns all benchmark rows for a platform name. Cache failures
// degrade to a direct repository read.
func (c *BenchmarkCache) ByPlatform(ctx context.Context, platform string) ([]*models.Benchmark, error) {
	key := c.prefix + "benchmarks:" + platform

	if c.client != nil {
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var cached []*models.Benchmark
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			c.logger.Printf("benchmark cache: corrupt entry for %s, reloading", platform)
		} else if err != redis.Nil {
			c.logger.Printf("benchmark cache: redis get failed for %s: %v", platform, err)
		}
	}

	benchmarks, err := c.repo.ByPlatform(ctx, platform)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, err := json.Marshal(benchmarks); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Printf("benchmark cache: redis set failed for %s: %v", platform, err)
			}
		}
	}

	return benchmarks, nil
}

// Invalidate drops the cached rows for a platform.
func (c *BenchmarkCache) Invalidate(ctx context.Context, platform string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.prefix+"benchmarks:"+platform).Err()
}
