// Package auth holds the API-key identity model for the admin surface.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no active key matches a hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	// FindByHash returns the active key with the given HMAC-SHA256 hash, or
	// ErrKeyNotFound.
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
