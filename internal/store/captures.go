package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ramekin/ramekin-web/internal/domain"
	"github.com/ramekin/ramekin-web/internal/errors"
)

// RecordCapture creates the history entry for a newly created capture job.
func (s *Store) RecordCapture(ctx context.Context, job *domain.ScrapeJob, url, title string) (*domain.CaptureRecord, error) {
	now := time.Now()
	rec := &domain.CaptureRecord{
		JobID:     job.ID,
		URL:       url,
		Title:     title,
		CreatedAt: now,
	}
	rec.Apply(job, now)

	if err := s.Captures.Create(ctx, job.ID, rec); err != nil {
		return nil, err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(formatTimestampIndexKey(captureTimePrefix, rec.CreatedAt, job.ID), []byte(job.ID))
	}); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("capture recorded", "job_id", job.ID, "url", url)
	}
	return rec, nil
}

// UpdateCapture applies the latest job state to its history entry.
// Unknown jobs are recorded on the fly.
func (s *Store) UpdateCapture(ctx context.Context, job *domain.ScrapeJob) (*domain.CaptureRecord, error) {
	rec, err := s.Captures.Get(ctx, job.ID)
	if errors.Is(err, ErrNotFound) {
		return s.RecordCapture(ctx, job, job.URL, "")
	}
	if err != nil {
		return nil, err
	}

	rec.Apply(job, time.Now())
	if err := s.Captures.Update(ctx, job.ID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CaptureForRecipe returns the capture that produced recipeID.
func (s *Store) CaptureForRecipe(ctx context.Context, recipeID string) (*domain.CaptureRecord, error) {
	return s.Captures.GetByIndex(ctx, "recipe", recipeID)
}

// RecentCaptures returns up to limit records, newest first.
func (s *Store) RecentCaptures(ctx context.Context, limit int) ([]domain.CaptureRecord, error) {
	page, err := s.ListCaptures(ctx, PageParams{Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListCaptures returns one page of capture records, newest first.
func (s *Store) ListCaptures(ctx context.Context, params PageParams) (*Page[domain.CaptureRecord], error) {
	params.Normalize()
	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	prefix := []byte(captureTimePrefix)
	var ids []string
	var lastKey string
	hasMore := false

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(captureTimePrefix), 0xFF)
		if after != "" {
			seek = []byte(after)
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			if key == after {
				continue
			}
			if len(ids) == params.Limit {
				hasMore = true
				return nil
			}
			id, err := parseTimestampIndexKey(it.Item().Key(), captureTimePrefix)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			lastKey = key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := &Page[domain.CaptureRecord]{
		Items:   make([]domain.CaptureRecord, 0, len(ids)),
		HasMore: hasMore,
	}
	for _, id := range ids {
		rec, err := s.Captures.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *rec)
	}
	if hasMore {
		page.NextCursor = EncodeCursor(lastKey)
	}
	return page, nil
}
