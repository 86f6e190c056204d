package persistence

import (
	"context"

	"github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/felixgeelhaar/lingua/internal/shared/infrastructure/kvstore"
)

// Storage keys shared with the extension's settings layout.
const (
	KeyHistory = "translationHistory"
	KeyPending = "pendingSyncItems"
)

// KVRepository implements domain.Repository on top of a kvstore.Store.
type KVRepository struct {
	store kvstore.Store
}

// NewKVRepository creates a new key-value backed history repository.
func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

// Load returns the stored history and pending queue. Missing keys load as empty.
func (r *KVRepository) Load(ctx context.Context) ([]domain.Item, []domain.Item, error) {
	var history, pending []domain.Item
	if _, err := kvstore.GetJSON(ctx, r.store, KeyHistory, &history); err != nil {
		return nil, nil, err
	}
	if _, err := kvstore.GetJSON(ctx, r.store, KeyPending, &pending); err != nil {
		return nil, nil, err
	}
	return history, pending, nil
}

// Save writes both collections in one atomic Set.
func (r *KVRepository) Save(ctx context.Context, history, pending []domain.Item) error {
	if history == nil {
		history = []domain.Item{}
	}
	if pending == nil {
		pending = []domain.Item{}
	}
	values, err := kvstore.Encode(map[string]any{
		KeyHistory: history,
		KeyPending: pending,
	})
	if err != nil {
		return err
	}
	return r.store.Set(ctx, values)
}

// Clear removes both collections.
func (r *KVRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, KeyHistory, KeyPending)
}
