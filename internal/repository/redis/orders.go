// Package redis keeps the order journal in a redis list, newest first.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/config"
	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/repository"
)

const ordersKey = "larek:orders"

// NewClient connects to redis and pings it
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRepositories wires the redis-backed repositories
func NewRepositories(client *goredis.Client, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Orders: NewOrderJournal(client, logger),
	}
}

// OrderJournal implements repository.OrderJournal on a redis list
type OrderJournal struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewOrderJournal creates a redis order journal
func NewOrderJournal(client *goredis.Client, logger *zap.Logger) *OrderJournal {
	return &OrderJournal{
		client: client,
		logger: logger,
	}
}

func (r *OrderJournal) Append(ctx context.Context, record *domain.OrderRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	if err := r.client.LPush(ctx, ordersKey, data).Err(); err != nil {
		r.logger.Error("Failed to append order", zap.String("remote_id", record.RemoteID), zap.Error(err))
		return fmt.Errorf("redis lpush order: %w", err)
	}
	return nil
}

func (r *OrderJournal) List(ctx context.Context, limit, offset int) ([]*domain.OrderRecord, error) {
	values, err := r.client.LRange(ctx, ordersKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("redis lrange orders: %w", err)
	}

	records := make([]*domain.OrderRecord, 0, len(values))
	for _, v := range values {
		var record domain.OrderRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		records = append(records, &record)
	}
	return records, nil
}
