// Package cache decorates the availability repository with a two-level cache:
// an in-process go-cache in front of a shared redis copy.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/agenda-api/internal/repository"
	"github.com/jwalitptl/agenda-api/pkg/circuitbreaker"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	RedisTTL        time.Duration
	KeyPrefix       string
}

// AvailabilityCache is a repository.AvailabilityRepository. Redis failures
// never fail a read: the cache falls through to the database.
type AvailabilityCache struct {
	next    repository.AvailabilityRepository
	local   *gocache.Cache
	redis   *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAvailabilityCache wraps next. client may be nil to run with the local
// layer only.
func NewAvailabilityCache(
	next repository.AvailabilityRepository,
	client *redis.Client,
	breaker *circuitbreaker.CircuitBreaker,
	cfg Config,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AvailabilityCache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.RedisTTL <= 0 {
		cfg.RedisTTL = 10 * time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "agenda:availability:"
	}
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.Settings{Name: "availability-cache"})
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &AvailabilityCache{
		next:    next,
		local:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		redis:   client,
		breaker: breaker,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "availability-cache").Logger(),
	}
}

func (c *AvailabilityCache) key(doctorID int64) string {
	return c.cfg.KeyPrefix + strconv.FormatInt(doctorID, 10)
}

func (c *AvailabilityCache) ListByDoctor(ctx context.Context, doctorID int64) ([]slotgrid.WeeklyAvailabilityRule, error) {
	key := c.key(doctorID)

	if v, ok := c.local.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("local", "hit").Inc()
		return cloneRules(v.([]slotgrid.WeeklyAvailabilityRule)), nil
	}
	c.metrics.CacheLookups.WithLabelValues("local", "miss").Inc()

	if rules, ok := c.getRemote(ctx, key); ok {
		c.local.Set(key, rules, gocache.DefaultExpiration)
		return cloneRules(rules), nil
	}

	rules, err := c.next.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	c.local.Set(key, cloneRules(rules), gocache.DefaultExpiration)
	c.setRemote(ctx, key, rules)
	return rules, nil
}

func (c *AvailabilityCache) ReplaceForDoctor(ctx context.Context, doctorID int64, rules []slotgrid.WeeklyAvailabilityRule) error {
	if err := c.next.ReplaceForDoctor(ctx, doctorID, rules); err != nil {
		return err
	}
	c.Invalidate(ctx, doctorID)
	return nil
}

// Invalidate drops both cached copies of a doctor's rules.
func (c *AvailabilityCache) Invalidate(ctx context.Context, doctorID int64) {
	key := c.key(doctorID)
	c.local.Delete(key)

	if c.redis == nil {
		return
	}
	err := c.breaker.Execute(func() error {
		return c.redis.Del(ctx, key).Err()
	})
	if err != nil {
		c.logger.Warn().Err(err).Int64("doctor_id", doctorID).Msg("Failed to drop remote cache entry")
	}
}

func (c *AvailabilityCache) getRemote(ctx context.Context, key string) ([]slotgrid.WeeklyAvailabilityRule, bool) {
	if c.redis == nil {
		return nil, false
	}

	var payload []byte
	err := c.breaker.Execute(func() error {
		b, err := c.redis.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		payload = b
		return err
	})
	switch {
	case circuitbreaker.IsOpen(err):
		c.metrics.CacheLookups.WithLabelValues("redis", "open").Inc()
		c.logger.Debug().Str("key", key).Msg("Remote cache skipped, breaker open")
		return nil, false
	case err != nil:
		c.metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("Remote cache read failed")
		return nil, false
	case payload == nil:
		c.metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	var rules []slotgrid.WeeklyAvailabilityRule
	if err := json.Unmarshal(payload, &rules); err != nil {
		c.metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	c.metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
	return rules, true
}

func (c *AvailabilityCache) setRemote(ctx context.Context, key string, rules []slotgrid.WeeklyAvailabilityRule) {
	if c.redis == nil {
		return
	}
	payload, err := json.Marshal(rules)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode rules for cache")
		return
	}
	err = c.breaker.Execute(func() error {
		return c.redis.Set(ctx, key, payload, c.cfg.RedisTTL).Err()
	})
	if err != nil && !circuitbreaker.IsOpen(err) {
		c.logger.Warn().Err(fmt.Errorf("failed to write %s: %w", key, err)).Msg("Remote cache write failed")
	}
}

func cloneRules(rules []slotgrid.WeeklyAvailabilityRule) []slotgrid.WeeklyAvailabilityRule {
	if rules == nil {
		return nil
	}
	out := make([]slotgrid.WeeklyAvailabilityRule, len(rules))
	copy(out, rules)
	return out
}
