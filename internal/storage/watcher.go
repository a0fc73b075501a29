package storage

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Watcher polls the store for changes made by other processes and notifies
// subscribers with the changed key name. It replaces push-style storage
// change events: best-effort, no payload, the subscriber re-reads the key.
// Same-process writers must not rely on it and should re-derive immediately
// after their own writes.
type Watcher struct {
	store    Store
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	subs map[string][]func(key string)
	seen map[string][]byte
}

func NewWatcher(store Store, interval time.Duration, logger zerolog.Logger) *Watcher {
	return &Watcher{
		store:    store,
		interval: interval,
		logger:   logger,
		subs:     make(map[string][]func(key string)),
		seen:     make(map[string][]byte),
	}
}

// Subscribe registers a callback for one key. The current value is primed so
// the callback only fires on changes observed after registration.
func (w *Watcher) Subscribe(ctx context.Context, key string, fn func(key string)) {
	value, err := w.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		w.logger.Warn().Err(err).Str("key", key).Msg("failed to prime watched key")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs[key] = append(w.subs[key], fn)
	if _, ok := w.seen[key]; !ok {
		w.seen[key] = value
	}
}

func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	w.mu.Lock()
	keys := make([]string, 0, len(w.subs))
	for key := range w.subs {
		keys = append(keys, key)
	}
	w.mu.Unlock()

	for _, key := range keys {
		value, err := w.store.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			w.logger.Warn().Err(err).Str("key", key).Msg("watch poll failed")
			continue
		}

		w.mu.Lock()
		changed := !bytes.Equal(w.seen[key], value)
		if changed {
			w.seen[key] = value
		}
		fns := w.subs[key]
		w.mu.Unlock()

		if !changed {
			continue
		}
		for _, fn := range fns {
			fn(key)
		}
	}
}
