package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/metrics"
	"github.com/jafarshop/larek/internal/repository"
	"github.com/jafarshop/larek/internal/store"
	"github.com/jafarshop/larek/pkg/errors"
)

// Registry holds the live sessions of the server
type Registry struct {
	mu      sync.Mutex
	shops   map[uuid.UUID]*Shop
	client  CatalogClient
	journal repository.OrderJournal
	opts    []store.Option
	logger  *zap.Logger
}

// NewRegistry creates an empty registry. opts are applied to every session store.
func NewRegistry(client CatalogClient, journal repository.OrderJournal, logger *zap.Logger, opts ...store.Option) *Registry {
	return &Registry{
		shops:   make(map[uuid.UUID]*Shop),
		client:  client,
		journal: journal,
		opts:    opts,
		logger:  logger,
	}
}

// Create starts a new session
func (r *Registry) Create() *Shop {
	shop := NewShop(uuid.New(), r.client, r.journal, r.logger, r.opts...)

	r.mu.Lock()
	r.shops[shop.ID] = shop
	metrics.ActiveSessions.Set(float64(len(r.shops)))
	r.mu.Unlock()

	r.logger.Debug("Session created", zap.String("session_id", shop.ID.String()))
	return shop
}

// Get returns a live session
func (r *Registry) Get(id uuid.UUID) (*Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shop, ok := r.shops[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "session", ID: id.String()}
	}
	return shop, nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shops)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were dropped.
// It never waits for a session that is busy with a request.
func (r *Registry) Sweep(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, shop := range r.shops {
		if now.Sub(shop.LastSeen()) > maxIdle {
			delete(r.shops, id)
			dropped++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.shops)))
	return dropped
}

// RunSweeper sweeps idle sessions every interval until ctx is done
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now, maxIdle); n > 0 {
				r.logger.Info("Idle sessions dropped", zap.Int("count", n), zap.Int("active", r.Len()))
			}
		}
	}
}
