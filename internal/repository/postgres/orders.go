package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/domain"
)

type orderJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderJournal creates a postgres order journal
func NewOrderJournal(db *sql.DB, logger *zap.Logger) *orderJournal {
	return &orderJournal{
		db:     db,
		logger: logger,
	}
}

func (r *orderJournal) Append(ctx context.Context, record *domain.OrderRecord) error {
	query := `
		INSERT INTO orders (id, session_id, remote_id, payment, address, email, phone, total, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Items == nil {
		record.Items = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.SessionID,
		record.RemoteID,
		record.Payment,
		record.Address,
		record.Email,
		record.Phone,
		record.Total,
		pq.Array(record.Items),
		record.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to append order", zap.String("remote_id", record.RemoteID), zap.Error(err))
		return err
	}

	return nil
}

func (r *orderJournal) List(ctx context.Context, limit, offset int) ([]*domain.OrderRecord, error) {
	query := `
		SELECT id, session_id, remote_id, payment, address, email, phone, total, items, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	records := []*domain.OrderRecord{}
	for rows.Next() {
		var record domain.OrderRecord
		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.RemoteID,
			&record.Payment,
			&record.Address,
			&record.Email,
			&record.Phone,
			&record.Total,
			pq.Array(&record.Items),
			&record.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan order", zap.Error(err))
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
