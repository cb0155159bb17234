// Package push registers this device for notifications with the backend.
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/jesseruder/electric-lullaby/internal/client/storage"

	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when notifications are turned off.
var ErrPermissionDenied = errors.New("notification permission denied")

// KV is the subset of the credential store used for the device identifier.
type KV interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// TokenSender posts the device identifier for an account.
type TokenSender interface {
	RegisterPushToken(ctx context.Context, token, pushToken string) error
}

// DeviceToken returns the identifier of this install, creating and storing it
// on first use.
func DeviceToken(ctx context.Context, kv KV) (string, error) {
	id, ok, err := kv.GetItem(ctx, storage.KeyPushToken)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = "lullaby-" + uuid.NewString()
	if err := kv.SetItem(ctx, storage.KeyPushToken, id); err != nil {
		return "", fmt.Errorf("store push token: %w", err)
	}
	return id, nil
}

type Registrar struct {
	KV      KV
	Sender  TokenSender
	Granted bool
}

// Register sends the device identifier for the session token. It does nothing
// without a token and returns ErrPermissionDenied when notifications are off.
func (r *Registrar) Register(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	if !r.Granted {
		return "", ErrPermissionDenied
	}

	id, err := DeviceToken(ctx, r.KV)
	if err != nil {
		return "", err
	}
	if err := r.Sender.RegisterPushToken(ctx, token, id); err != nil {
		return id, err
	}
	return id, nil
}
