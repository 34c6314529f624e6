// Package credential keeps server secrets apart from the server profiles.
// Secrets are looked up by server id and never logged.
package credential

import (
	"context"
	"strings"

	"github.com/xxxsen/davsync/daverr"
	"github.com/xxxsen/davsync/profile"
)

type IProvider interface {
	// Get returns a NotFound error when id has no secret.
	Get(ctx context.Context, id string) (string, error)
	// Put stores or overwrites the secret of id.
	Put(ctx context.Context, id string, secret string) error
	// Delete returns a NotFound error when id has no secret.
	Delete(ctx context.Context, id string) error
}

func validatePut(id string, secret string) error {
	if len(strings.TrimSpace(id)) == 0 {
		return daverr.Config("Server ID cannot be empty")
	}
	return profile.ValidateSecret(secret)
}

func errNotFound(id string) error {
	return daverr.NotFound("secret not found, server id:%s", id)
}
