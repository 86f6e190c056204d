package persistence

import (
	"context"

	"github.com/felixgeelhaar/lingua/internal/licensing/domain"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/kvstore"
)

// Storage keys shared with the extension's settings layout.
const (
	KeyLicenseKey    = "licenseKey"
	KeyLicenseStatus = "licenseStatus"
)

// KVRepository implements domain.Repository on top of a kvstore.Store.
type KVRepository struct {
	store kvstore.Store
}

// NewKVRepository creates a new key-value backed license repository.
func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

// LoadKey returns the stored license key, or "" when none is stored.
func (r *KVRepository) LoadKey(ctx context.Context) (string, error) {
	var key string
	if _, err := kvstore.GetJSON(ctx, r.store, KeyLicenseKey, &key); err != nil {
		return "", err
	}
	return key, nil
}

// LoadStatus retrieves the persisted license status.
// Returns nil, nil if nothing has been stored yet (first run).
func (r *KVRepository) LoadStatus(ctx context.Context) (*domain.LicenseStatus, error) {
	var status domain.LicenseStatus
	found, err := kvstore.GetJSON(ctx, r.store, KeyLicenseStatus, &status)
	if err != nil || !found {
		return nil, err
	}
	return &status, nil
}

// Save writes the key and status in a single atomic Set.
// A freemium status stores a null key.
func (r *KVRepository) Save(ctx context.Context, status *domain.LicenseStatus) error {
	status = status.Normalize()

	var key any
	if status.IsPremium && status.LicenseKey != "" {
		key = status.LicenseKey
	}

	values, err := kvstore.Encode(map[string]any{
		KeyLicenseKey:    key,
		KeyLicenseStatus: status,
	})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, values)
}

// Delete removes the stored key and status.
func (r *KVRepository) Delete(ctx context.Context) error {
	return r.store.Remove(ctx, KeyLicenseKey, KeyLicenseStatus)
}
