// Package memory keeps the order journal in process memory. It is used when
// no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/repository"
)

type orderJournal struct {
	mu      sync.RWMutex
	records []*domain.OrderRecord
}

// NewOrderJournal creates an empty in-memory journal
func NewOrderJournal() *orderJournal {
	return &orderJournal{}
}

// NewRepositories wires the in-memory repositories
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Orders: NewOrderJournal(),
	}
}

func (r *orderJournal) Append(_ context.Context, record *domain.OrderRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	cp := *record
	cp.Items = append([]string{}, record.Items...)

	r.mu.Lock()
	r.records = append(r.records, &cp)
	r.mu.Unlock()
	return nil
}

// List returns records newest first
func (r *orderJournal) List(_ context.Context, limit, offset int) ([]*domain.OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.OrderRecord{}
	for i := len(r.records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *r.records[i]
		cp.Items = append([]string{}, cp.Items...)
		out = append(out, &cp)
	}
	return out, nil
}
