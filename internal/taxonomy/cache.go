// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/meserio/internal/platform/constants"
)

// TreeCache caches the resolved public catalog tree per language in Redis.
//
// Cache failures are never surfaced to callers: a miss or a Redis outage
// degrades to a database read, and a failed invalidation only shortens the
// staleness window to the TTL.
type TreeCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewTreeCache creates a catalog tree cache on top of a shared Redis client.
func NewTreeCache(client *redis.Client, logger *slog.Logger) *TreeCache {
	return &TreeCache{
		client: client,
		logger: logger,
		ttl:    constants.CatalogTreeTTL,
	}
}

func treeKey(language string) string {
	return constants.RedisPrefixCatalogTree + language
}

// Get returns the cached tree for one language, or ok=false on miss.
func (cache *TreeCache) Get(ctx context.Context, language string) ([]*TreeCluster, bool) {
	if cache == nil || cache.client == nil {
		return nil, false
	}

	payload, err := cache.client.Get(ctx, treeKey(language)).Bytes()
	if err != nil {
		if err != redis.Nil {
			cache.logger.Warn("catalog tree cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var tree []*TreeCluster
	if err := json.Unmarshal(payload, &tree); err != nil {
		cache.logger.Warn("catalog tree cache entry corrupt", slog.String("error", err.Error()))
		return nil, false
	}

	return tree, true
}

// Set stores the resolved tree for one language with the configured TTL.
func (cache *TreeCache) Set(ctx context.Context, language string, tree []*TreeCluster) {
	if cache == nil || cache.client == nil {
		return
	}

	payload, err := json.Marshal(tree)
	if err != nil {
		cache.logger.Warn("catalog tree cache encode failed", slog.String("error", err.Error()))
		return
	}

	if err := cache.client.Set(ctx, treeKey(language), payload, cache.ttl).Err(); err != nil {
		cache.logger.Warn("catalog tree cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops the cached tree for every supported language. Called
// after any taxonomy write.
func (cache *TreeCache) Invalidate(ctx context.Context, languages []string) {
	if cache == nil || cache.client == nil {
		return
	}

	keys := make([]string, len(languages))
	for i, language := range languages {
		keys[i] = treeKey(language)
	}

	if err := cache.client.Del(ctx, keys...).Err(); err != nil {
		cache.logger.Warn("catalog tree cache invalidation failed", slog.String("error", err.Error()))
	}
}
