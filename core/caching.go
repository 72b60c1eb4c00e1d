package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitwalk/core/parse"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached history stays valid.
const cacheTTL = 7 * 24 * time.Hour

// cachedLog serves history from the cache when HEAD has not moved.
func (r *Repository) cachedLog(ctx context.Context) ([]schema.Commit, error) {
	key, err := r.generateCacheKey(ctx)
	if err != nil {
		// An unborn or broken HEAD cannot be keyed; fall through to git.
		r.logger.Debug("log cache skipped", "error", err)
		return r.log(ctx)
	}

	if commits := checkCacheHit(r.cache, key); commits != nil {
		r.logger.Debug("log cache hit", "key", key[:12])
		return commits, nil
	}

	return r.computeAndStore(ctx, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) []schema.Commit {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	var commits []schema.Commit
	if err := json.Unmarshal(data, &commits); err != nil || commits == nil {
		return nil
	}
	return commits
}

// computeAndStore runs git log and stores the parsed result in cache
func (r *Repository) computeAndStore(ctx context.Context, key string) ([]schema.Commit, error) {
	commits, err := r.log(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(commits); err == nil {
		if err := r.cache.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			r.logger.Warn("log cache write failed", "error", err)
		}
	}
	return commits, nil
}

// generateCacheKey identifies one history: the working copy, its HEAD and the log layout.
func (r *Repository) generateCacheKey(ctx context.Context) (string, error) {
	head, err := r.HeadRevision(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%s:%s", r.cfg.Path, head, parse.LogFormat)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}
