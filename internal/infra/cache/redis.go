package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"
	"spa-storefront/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type cartLineSnapshot struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

type cartSnapshot struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	Lines      []cartLineSnapshot `json:"lines"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// RedisCartCache stores cart snapshots as JSON under cart:{<customer id>}.
// A generation counter under cart:{<customer id>}:gen is bumped by every
// invalidation and guards fills.
type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	return &RedisCartCache{client: client, ttl: ttl}
}

// KEYS[1] cart, KEYS[2] generation; ARGV[1] expected generation, ARGV[2] snapshot, ARGV[3] ttl ms.
var fillScript = redis.NewScript(`
if (redis.call('GET', KEYS[2]) or '') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// KEYS[1] cart, KEYS[2] generation; ARGV[1] generation ttl ms.
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

func (r *RedisCartCache) Get(ctx context.Context, customerID uuid.UUID) (*cart.Cart, commands.CartVersion, error) {
	vals, err := r.client.MGet(ctx, cacheKey(customerID), generationKey(customerID)).Result()
	if err != nil {
		return nil, "", errs.Wrap(err, "redis mget failed")
	}
	var version commands.CartVersion
	if gen, ok := vals[1].(string); ok {
		version = commands.CartVersion(gen)
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, version, commands.ErrCacheMiss
	}

	var snap cartSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, version, errs.Wrap(err, "unmarshal cart failed")
	}
	lines := make([]cart.Line, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, cart.ReconstructLine(l.ID, l.ItemID, l.ItemName, l.Quantity, money.Amount(l.UnitPrice)))
	}
	return cart.Reconstruct(snap.CustomerID, lines, snap.CreatedAt, snap.UpdatedAt), version, nil
}

// Fill stores c only while the generation still equals version. A fill that
// lost the race with an invalidation is silently dropped.
func (r *RedisCartCache) Fill(ctx context.Context, c *cart.Cart, version commands.CartVersion) error {
	snap := cartSnapshot{
		CustomerID: c.CustomerID(),
		Lines:      make([]cartLineSnapshot, 0, len(c.Lines())),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
	for _, l := range c.Lines() {
		snap.Lines = append(snap.Lines, cartLineSnapshot{
			ID:        l.ID(),
			ItemID:    l.ItemID(),
			ItemName:  l.ItemName(),
			Quantity:  l.Quantity(),
			UnitPrice: l.UnitPrice().Int64(),
		})
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errs.Wrap(err, "marshal cart failed")
	}
	keys := []string{cacheKey(c.CustomerID()), generationKey(c.CustomerID())}
	if err := fillScript.Run(ctx, r.client, keys, string(version), data, r.ttl.Milliseconds()).Err(); err != nil {
		return errs.Wrap(err, "redis fill failed")
	}
	return nil
}

func (r *RedisCartCache) Invalidate(ctx context.Context, customerID uuid.UUID) error {
	keys := []string{cacheKey(customerID), generationKey(customerID)}
	if err := invalidateScript.Run(ctx, r.client, keys, r.ttl.Milliseconds()).Err(); err != nil {
		return errs.Wrap(err, "redis invalidate failed")
	}
	return nil
}

// The hash tag keeps both keys of a customer in one cluster slot.
func cacheKey(customerID uuid.UUID) string {
	return fmt.Sprintf("cart:{%s}", customerID)
}

func generationKey(customerID uuid.UUID) string {
	return fmt.Sprintf("cart:{%s}:gen", customerID)
}

// Noop is used when no redis address is configured. Every read misses.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (*cart.Cart, commands.CartVersion, error) {
	return nil, "", commands.ErrCacheMiss
}
func (Noop) Fill(context.Context, *cart.Cart, commands.CartVersion) error { return nil }
func (Noop) Invalidate(context.Context, uuid.UUID) error                  { return nil }
