// Package cache memoises provider searches in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/domain/trip"
)

const keyPrefix = "tripplanner:"

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, val, ttl).Err()
}

// Flights wraps a flight provider with a read-through cache. Cache errors
// are logged and fall through to the wrapped provider. Empty results are not
// cached.
type Flights struct {
	Next   trip.FlightProvider
	Store  Store
	TTL    time.Duration
	Logger *zap.Logger
}

func (f *Flights) Name() string                   { return f.Next.Name() }
func (f *Flights) Ping(ctx context.Context) error { return f.Next.Ping(ctx) }

func (f *Flights) SearchFlights(ctx context.Context, q trip.FlightQuery) ([]trip.Candidate, error) {
	key := FlightKey(f.Next.Name(), q)
	return readThrough(ctx, f.Store, key, f.TTL, logger(f.Logger), func() ([]trip.Candidate, error) {
		return f.Next.SearchFlights(ctx, q)
	})
}

type Hotels struct {
	Next   trip.HotelProvider
	Store  Store
	TTL    time.Duration
	Logger *zap.Logger
}

func (h *Hotels) Name() string                   { return h.Next.Name() }
func (h *Hotels) Ping(ctx context.Context) error { return h.Next.Ping(ctx) }

func (h *Hotels) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.Candidate, error) {
	key := HotelKey(h.Next.Name(), q)
	return readThrough(ctx, h.Store, key, h.TTL, logger(h.Logger), func() ([]trip.Candidate, error) {
		return h.Next.SearchHotels(ctx, q)
	})
}

func readThrough(ctx context.Context, s Store, key string, ttl time.Duration, log *zap.Logger, load func() ([]trip.Candidate, error)) ([]trip.Candidate, error) {
	b, ok, err := s.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	case ok:
		var cs []trip.Candidate
		if err := json.Unmarshal(b, &cs); err == nil {
			log.Debug("cache hit", zap.String("key", key))
			return cs, nil
		}
		log.Warn("cache entry unreadable", zap.String("key", key))
	}

	cs, err := load()
	if err != nil || len(cs) == 0 {
		return cs, err
	}
	if b, err := json.Marshal(cs); err == nil {
		if err := s.Set(ctx, key, b, ttl); err != nil {
			log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return cs, nil
}

func FlightKey(provider string, q trip.FlightQuery) string {
	parts := []string{
		"flights", provider,
		strings.ToUpper(q.Origin), strings.ToUpper(strings.TrimSpace(q.Destination)),
		date(q.DepartureDate), date(q.ReturnDate),
		strconv.Itoa(q.Adults), ceiling(q.MaxBudget),
	}
	if q.PreferRedEyes {
		parts = append(parts, "redeye")
	}
	return keyPrefix + strings.Join(parts, ":")
}

func HotelKey(provider string, q trip.HotelQuery) string {
	return keyPrefix + strings.Join([]string{
		"hotels", provider,
		strings.ToUpper(strings.TrimSpace(q.Destination)),
		date(q.CheckIn), date(q.CheckOut),
		strconv.Itoa(q.Adults), ceiling(q.MaxBudget),
	}, ":")
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(trip.DateLayout)
}

func ceiling(v *float64) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%.2f", *v)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
