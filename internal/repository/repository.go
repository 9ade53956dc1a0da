// Package repository defines persistence for completed orders.
package repository

import (
	"context"

	"github.com/jafarshop/larek/internal/domain"
)

// OrderJournal records orders accepted by the storefront API
type OrderJournal interface {
	Append(ctx context.Context, record *domain.OrderRecord) error
	List(ctx context.Context, limit, offset int) ([]*domain.OrderRecord, error)
}

// Repositories groups every repository the server needs
type Repositories struct {
	Orders OrderJournal
}
