package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"doceGestaoWs/internal/modules/orders/application/port"
	"doceGestaoWs/internal/modules/orders/domain"
)

// ClientCache is a read-through Redis cache in front of the client directory.
// Every order creation hits the directory, so the hot clients of a busy shop
// stay cached. Redis being down degrades to direct lookups, never to errors.
type ClientCache struct {
	rdb  *redis.Client
	next port.ClientDirectory
	ttl  time.Duration
}

var _ port.ClientDirectory = (*ClientCache)(nil)

func NewClientCache(rdb *redis.Client, next port.ClientDirectory, ttl time.Duration) *ClientCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ClientCache{rdb: rdb, next: next, ttl: ttl}
}

func cacheKey(id string) string {
	return "cliente:" + id
}

func (c *ClientCache) FindClienteByID(ctx context.Context, id string) (*domain.Cliente, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var cliente domain.Cliente
		if err := json.Unmarshal(raw, &cliente); err == nil {
			return &cliente, nil
		}
		// Corrupt entry; fall through to the directory and overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("cliente cache read failed", slog.String("id", id), slog.Any("error", err))
	}

	cliente, err := c.next.FindClienteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cliente); err == nil {
		if err := c.rdb.Set(ctx, cacheKey(id), payload, c.ttl).Err(); err != nil {
			slog.Warn("cliente cache write failed", slog.String("id", id), slog.Any("error", err))
		}
	}
	return cliente, nil
}

// Invalidate drops one cached client, used when a client record changes.
func (c *ClientCache) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate cliente %s: %w", id, err)
	}
	return nil
}
