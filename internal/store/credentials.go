package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// LoadToken returns the stored credential, or "" when none is stored.
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var token string
	err := s.get([]byte(credentialKey), &token)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	return token, err
}

// SaveToken stores the credential.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(credentialKey), token)
}

// DeleteToken removes the credential and anything cached for its owner.
func (s *Store) DeleteToken(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.delete([]byte(credentialKey)); err != nil {
		return err
	}
	return s.InvalidateTags(ctx)
}
