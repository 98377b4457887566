package redisstock

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vsinha/gestionale/pkg/domain/entities"
	"github.com/vsinha/gestionale/pkg/domain/repositories"
	"github.com/vsinha/gestionale/pkg/infrastructure/config"
)

const stockKeySegment = "stock:"

// reserveStockScript decrements every key or none. It returns 0 on success,
// otherwise the 1-based index of the first key that is missing or short.
var reserveStockScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	local current = redis.call('GET', key)
	if not current or tonumber(current) < tonumber(ARGV[i]) then
		return i
	end
end

for i, key in ipairs(KEYS) do
	redis.call('DECRBY', key, ARGV[i])
end

return 0
`)

// StockLedger keeps material stock in Redis as fixed-point integers
type StockLedger struct {
	client *redis.Client
	prefix string
	scale  int32
}

// NewStockLedger wraps a client; quantities keep scale decimal places
func NewStockLedger(client *redis.Client, keyPrefix string, scale int32) *StockLedger {
	return &StockLedger{
		client: client,
		prefix: keyPrefix,
		scale:  scale,
	}
}

// NewClient opens a Redis client from configuration and checks it answers
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

var _ repositories.StockLedger = (*StockLedger)(nil)

func (l *StockLedger) key(id entities.MaterialID) string {
	return l.prefix + stockKeySegment + string(id)
}

// stockUnits rounds stock down so the ledger never holds more than the store
func (l *StockLedger) stockUnits(qty decimal.Decimal) int64 {
	return qty.Shift(l.scale).Floor().IntPart()
}

// consumedUnits rounds consumption up so a reservation never undercounts
func (l *StockLedger) consumedUnits(qty decimal.Decimal) int64 {
	return qty.Shift(l.scale).Ceil().IntPart()
}

func (l *StockLedger) fromUnits(units int64) decimal.Decimal {
	return decimal.New(units, -l.scale)
}

// SetStock overwrites the ledger quantity of a material
func (l *StockLedger) SetStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return fmt.Errorf("ledger stock cannot be negative, got %s", quantity)
	}
	return l.client.Set(ctx, l.key(id), l.stockUnits(quantity), 0).Err()
}

// GetStock returns ledger quantities; unknown materials are absent
func (l *StockLedger) GetStock(ctx context.Context, ids []entities.MaterialID) (map[entities.MaterialID]decimal.Decimal, error) {
	result := make(map[entities.MaterialID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, l.key(id))
	}

	values, err := l.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger stock: %w", err)
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected ledger value %v for %s", v, ids[i])
		}
		units, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("corrupt ledger value %q for %s: %w", s, ids[i], err)
		}
		result[ids[i]] = l.fromUnits(units.IntPart())
	}
	return result, nil
}

// Reserve atomically decrements every material or none
func (l *StockLedger) Reserve(ctx context.Context, changes []entities.StockChange) error {
	if len(changes) == 0 {
		return nil
	}

	keys := make([]string, 0, len(changes))
	args := make([]interface{}, 0, len(changes))
	for _, change := range changes {
		keys = append(keys, l.key(change.MaterialID))
		args = append(args, l.consumedUnits(change.Consumed))
	}

	short, err := reserveStockScript.Run(ctx, l.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("failed to reserve ledger stock: %w", err)
	}
	if short > 0 {
		change := changes[short-1]
		return fmt.Errorf("%w: ledger short of %s, needs %s",
			entities.ErrInsufficientStock, change.MaterialID, change.Consumed)
	}
	return nil
}

// Release gives back a reservation made by Reserve
func (l *StockLedger) Release(ctx context.Context, changes []entities.StockChange) error {
	if len(changes) == 0 {
		return nil
	}

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, change := range changes {
			pipe.IncrBy(ctx, l.key(change.MaterialID), l.consumedUnits(change.Consumed))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to release ledger stock: %w", err)
	}
	return nil
}

// AddStock credits received stock, rounded down to the ledger scale
func (l *StockLedger) AddStock(ctx context.Context, id entities.MaterialID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("added stock must be positive, got %s", quantity)
	}
	if err := l.client.IncrBy(ctx, l.key(id), l.stockUnits(quantity)).Err(); err != nil {
		return fmt.Errorf("failed to add ledger stock for %s: %w", id, err)
	}
	return nil
}
