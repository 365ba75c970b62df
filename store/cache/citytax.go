/*
Package cache puts Redis in front of a salary.CityTaxTable.

PURPOSE:
  Every calculation resolves professional tax for one city. The city table
  changes rarely, so lookups are served from Redis and only misses reach the
  database.

KEY CONCEPTS:
  - Read-through: Get → miss → singleflight → next.LookupCity → Set(ttl)
  - Negative caching: "no record for this city" is cached too, so unknown
    cities do not hit the database on every request
  - Errors are never cached. A Redis outage degrades to direct lookups.
  - The shared load runs detached from the first caller's cancellation and
    is bounded by LoadTimeout, so one abandoned request cannot fail the
    others waiting on the same city.
  - Generations: Invalidate bumps a per-key counter and a load only writes
    its result back if the counter is unchanged, so a lookup that read the
    old row cannot re-cache it after an admin write in this process.
    Writes made by another process are seen once the TTL expires.

KEYS:
  citytax:<city>   JSON entry, expires after the configured TTL

USAGE:
  rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
  table := cache.NewCityTaxCache(store, rdb, 10*time.Minute, logger)
  calc := salary.NewCalculator(table)

  // after an admin write
  table.Invalidate(ctx, "Mumbai")

SEE ALSO:
  - store/sqlite/sqlite.go: the usual next table
  - api/handlers.go: invalidates on city writes
*/
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/warp/salary-engine/money"
	"github.com/warp/salary-engine/salary"
)

// CityTaxKeyPrefix namespaces city entries in Redis.
const CityTaxKeyPrefix = "citytax:"

// DefaultTTL is used when NewCityTaxCache is given a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// LoadTimeout bounds a shared miss load against the next table.
const LoadTimeout = 5 * time.Second

// CityTaxKey returns the Redis key for city.
func CityTaxKey(city string) string {
	return CityTaxKeyPrefix + city
}

// CityTaxCache is a salary.CityTaxTable backed by Redis and a next table.
type CityTaxCache struct {
	next   salary.CityTaxTable
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger

	mu  sync.Mutex
	gen map[string]uint64
}

var _ salary.CityTaxTable = (*CityTaxCache)(nil)

func NewCityTaxCache(next salary.CityTaxTable, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CityTaxCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CityTaxCache{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: logger,
		gen:    make(map[string]uint64),
	}
}

// entry is the cached JSON document.
type entry struct {
	Found           bool            `json:"found"`
	City            string          `json:"city,omitempty"`
	State           string          `json:"state,omitempty"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func encodeEntry(rec *salary.CityTaxRecord) ([]byte, error) {
	if rec == nil {
		return json.Marshal(entry{})
	}
	return json.Marshal(entry{
		Found:           true,
		City:            rec.City,
		State:           rec.State,
		ProfessionalTax: rec.MonthlyProfessionalTax().Value,
		UpdatedAt:       rec.UpdatedAt.UTC(),
	})
}

func (e entry) record() *salary.CityTaxRecord {
	if !e.Found {
		return nil
	}
	return &salary.CityTaxRecord{
		City:            e.City,
		State:           e.State,
		ProfessionalTax: money.New(e.ProfessionalTax, money.Monthly),
		UpdatedAt:       e.UpdatedAt,
	}
}

// LookupCity serves from Redis when possible and fills the cache on a miss.
func (c *CityTaxCache) LookupCity(ctx context.Context, city string) (*salary.CityTaxRecord, error) {
	key := CityTaxKey(city)

	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var e entry
			if err := json.Unmarshal(cached, &e); err == nil {
				return e.record(), nil
			}
			c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		gen := c.generation(key)
		rec, err := c.next.LookupCity(loadCtx, city)
		if err != nil {
			return nil, err
		}
		c.store(loadCtx, key, gen, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	rec, _ := v.(*salary.CityTaxRecord)
	if rec == nil {
		return nil, nil
	}
	// Callers sharing a singleflight result must not share the pointer.
	out := *rec
	return &out, nil
}

// store writes rec back unless key was invalidated since gen was read.
// The generation check and the write happen under c.mu, so an Invalidate
// either lands first and the write is skipped, or lands after and deletes it.
func (c *CityTaxCache) store(ctx context.Context, key string, gen uint64, rec *salary.CityTaxRecord) {
	if c.rdb == nil {
		return
	}
	payload, err := encodeEntry(rec)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen[key] != gen {
		c.logger.Debug("skipping stale cache fill", zap.String("key", key))
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CityTaxCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[key]
}

// Invalidate drops the cached entry for city. A lookup already in flight for
// city will not write its result back, and later lookups start a fresh load.
func (c *CityTaxCache) Invalidate(ctx context.Context, city string) {
	key := CityTaxKey(city)

	c.mu.Lock()
	c.gen[key]++
	c.mu.Unlock()
	c.sf.Forget(key)

	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("failed to invalidate cache", zap.String("key", key), zap.Error(err))
	}
}
