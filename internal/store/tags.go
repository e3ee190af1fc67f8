package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ramekin/ramekin-web/internal/domain"
)

type tagCache struct {
	Tags      []domain.Tag `json:"tags"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// CachedTags returns the cached tag list if it is younger than maxAge.
// The boolean is false on a miss.
func (s *Store) CachedTags(ctx context.Context, maxAge time.Duration) ([]domain.Tag, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var c tagCache
	err := s.get([]byte(tagCacheKey), &c)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if maxAge > 0 && time.Since(c.FetchedAt) > maxAge {
		return nil, false, nil
	}
	return c.Tags, true, nil
}

// CacheTags replaces the cached tag list.
func (s *Store) CacheTags(ctx context.Context, tags []domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return s.set([]byte(tagCacheKey), tagCache{Tags: tags, FetchedAt: time.Now()})
}

// InvalidateTags drops the cached tag list.
func (s *Store) InvalidateTags(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := s.exists([]byte(tagCacheKey))
	if err != nil || !ok {
		return err
	}
	return s.delete([]byte(tagCacheKey))
}
