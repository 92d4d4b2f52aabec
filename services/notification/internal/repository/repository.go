package repository

import "context"

// TokenStore resolves a user's registered push device token.
type TokenStore interface {
	// Get returns an ErrNotFound error when the user has no token.
	Get(ctx context.Context, userID string) (string, error)
	// Delete removes the user's token if it still equals token.
	Delete(ctx context.Context, userID, token string) error
}
