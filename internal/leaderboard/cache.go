// Package leaderboard serves the ranked scoreboard, optionally backed by a
// Redis read-through cache so that the aggregation query doesn't run on
// every dashboard poll.
package leaderboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/redis/go-redis/v9"
)

// Reader produces the ranked leaderboard, typically backed by the progress
// aggregation query.
type Reader interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

const cacheKey = "sigma:leaderboard"

// maxCachedEntries bounds the cached snapshot. Requests for more rows than
// this bypass the cache.
const maxCachedEntries = 100

// Cache is a read-through Redis cache over a Reader. A cache failure never
// fails the read; it falls through to the Reader and logs.
type Cache struct {
	reader Reader
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(reader Reader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		reader: reader,
		client: client,
		ttl:    ttl,
		logger: logger.With("source", "leaderboard.Cache"),
	}
}

// Leaderboard returns the top entries, serving from Redis when a fresh
// snapshot exists.
func (c *Cache) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit > maxCachedEntries {
		return c.reader.Leaderboard(ctx, limit)
	}

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var entries []models.LeaderboardEntry
		if err = json.Unmarshal(data, &entries); err == nil {
			return clip(entries, limit), nil
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "discarding corrupt leaderboard snapshot",
			errors.SlogError(errors.Wrap(err, "decode snapshot")))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "leaderboard cache read failed",
			errors.SlogError(errors.Wrap(err, "redis get")))
	}

	entries, err := c.reader.Leaderboard(ctx, maxCachedEntries)
	if err != nil {
		return nil, errors.Wrap(err, "read leaderboard")
	}

	if data, err = json.Marshal(entries); err == nil {
		if err = c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "leaderboard cache write failed",
				errors.SlogError(errors.Wrap(err, "redis set")))
		}
	}

	return clip(entries, limit), nil
}

// Invalidate drops the cached snapshot. Called after quiz submissions so new
// scores show up without waiting for the TTL. Best effort: a failure only
// delays freshness until the TTL expires.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "leaderboard cache invalidation failed",
			errors.SlogError(errors.Wrap(err, "redis del")))
	}
}

func clip(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	if limit >= 0 && limit < len(entries) {
		return entries[:limit]
	}
	return entries
}
