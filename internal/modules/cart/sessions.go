package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Arnau-Gelonch/zara-challenge/internal/storage"
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions owns the open cart stores, one per browser session. A store is
// hydrated on first use and closed after IdleTTL without requests or when the
// registry shuts down.
type Sessions struct {
	slots   storage.Storage
	log     *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	open    map[string]*session
	opening singleflight.Group
}

type SessionsConfig struct {
	Slots   storage.Storage
	Logger  *slog.Logger
	IdleTTL time.Duration
}

func NewSessions(cfg SessionsConfig) *Sessions {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		slots:   cfg.Slots,
		log:     l,
		idleTTL: ttl,
		now:     time.Now,
		open:    map[string]*session{},
	}
}

// Store returns the cart of sessionID, opening it on first use. Hydration runs
// outside the registry lock; concurrent first requests of one session share it.
// A store whose slot could not be read is handed out but not kept, so the
// next request tries again.
func (r *Sessions) Store(ctx context.Context, sessionID string) *Store {
	if st, ok := r.lookup(sessionID); ok {
		return st
	}

	v, _, _ := r.opening.Do(sessionID, func() (any, error) {
		if st, ok := r.lookup(sessionID); ok {
			return st, nil
		}

		log := r.log.With(slog.String("session_id", sessionID))
		st, err := open(ctx, r.slots, SlotKey(sessionID), WithLogger(r.log))
		if err != nil {
			log.LogAttrs(ctx, slog.LevelWarn, "cart_hydrate_failed", slog.Any("err", err))
			return st, nil
		}
		st.Subscribe(func(snap Snapshot) {
			log.Debug("cart_changed",
				slog.Int("entries", len(snap.Items)),
				slog.Int("total_items", snap.TotalItems),
				slog.String("total_price", snap.TotalPrice.String()),
			)
		})

		r.mu.Lock()
		r.open[sessionID] = &session{store: st, lastSeen: r.now()}
		r.mu.Unlock()
		return st, nil
	})
	return v.(*Store)
}

func (r *Sessions) lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.open[sessionID]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.store, true
}

// Len reports how many stores are open.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// Sweep closes stores idle for longer than the TTL and returns how many. The
// slot of an expired empty cart is deleted.
func (r *Sessions) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	expired := map[string]*Store{}
	for id, s := range r.open {
		if s.lastSeen.Before(cutoff) {
			expired[id] = s.store
			delete(r.open, id)
		}
	}
	r.mu.Unlock()

	for id, st := range expired {
		st.Close()
		if st.TotalItems() > 0 {
			continue
		}
		if err := r.slots.Delete(ctx, SlotKey(id)); err != nil {
			r.log.LogAttrs(ctx, slog.LevelWarn, "cart_slot_delete_failed",
				slog.String("session_id", id),
				slog.Any("err", err),
			)
		}
	}
	return len(expired)
}

// Run sweeps idle stores until ctx is done. It leaves open stores alone so
// in-flight requests can finish; call Close once the server has drained.
func (r *Sessions) Run(ctx context.Context) error {
	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := r.Sweep(ctx); n > 0 {
				r.log.Info("cart_sessions_swept", slog.Int("closed", n))
			}
		}
	}
}

func (r *Sessions) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.open {
		s.store.Close()
		delete(r.open, id)
	}
}
