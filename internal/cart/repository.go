package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/omidvar1986/smartoffice/internal/domain"
	"github.com/omidvar1986/smartoffice/internal/storage"
)

// Storage keys. CanonicalKey superseded LegacyKey; both are written during
// the migration window so either generation of reader sees the same cart.
// CountKey holds the derived total quantity for badge display and is a hint
// only, GetCart recomputes truth from the line-item list.
const (
	CanonicalKey = "shop_cart_items"
	LegacyKey    = "cart"
	CountKey     = "cartCount"
)

// Repository persists the cart line-item list. Storage failures degrade:
// reads fall back to an empty cart and writes become logged no-ops, the
// in-memory view stays the source of truth for the rest of the session.
type Repository struct {
	store  storage.Store
	logger zerolog.Logger
}

func NewRepository(store storage.Store, logger zerolog.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

func (r *Repository) Load(ctx context.Context) []domain.CartLineItem {
	for _, key := range []string{CanonicalKey, LegacyKey} {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, storage.ErrKeyNotFound) {
				r.logger.Warn().Err(err).Str("key", key).Msg("cart read failed, treating as empty")
			}
			continue
		}

		var items []domain.CartLineItem
		if err := json.Unmarshal(data, &items); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("corrupt cart data, treating as empty")
			continue
		}
		return items
	}
	return nil
}

func (r *Repository) Save(ctx context.Context, items []domain.CartLineItem) {
	if items == nil {
		items = []domain.CartLineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to marshal cart")
		return
	}

	for _, key := range []string{CanonicalKey, LegacyKey} {
		if err := r.store.Set(ctx, key, data); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cart write failed")
		}
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	// Separate write from the list, a crash in between leaves the counter
	// stale. Acceptable for a display hint.
	if err := r.store.Set(ctx, CountKey, []byte(strconv.Itoa(total))); err != nil {
		r.logger.Warn().Err(err).Msg("cart count write failed")
	}
}

func (r *Repository) Clear(ctx context.Context) {
	for _, key := range []string{CanonicalKey, LegacyKey, CountKey} {
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cart clear failed")
		}
	}
}
