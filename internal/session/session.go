// Package session carries the drill user identity through a context.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoUser is returned when a context carries no user identity.
var ErrNoUser = errors.New("no session user in context")

type userKey struct{}

// NewToken returns a fresh random session token.
func NewToken() string {
	return uuid.NewString()
}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the user identity carried by ctx.
func UserFrom(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userKey{}).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}

// ValidToken reports whether token looks like one issued by NewToken.
func ValidToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}
