package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleetops/fleet-manager/pkg/logger"
	redisclient "github.com/fleetops/fleet-manager/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	err := m.Get(ctx, key, result)
	if err == nil {
		return nil // Cache hit
	}

	// Cache miss
	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result without blocking the caller
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Set(cacheCtx, key, data, ttl); err != nil {
			logger.Warn("failed to cache value", zap.String("key", key), zap.Error(err))
		}
	}()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, result)
}

// Delete removes keys from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// Vehicle returns cache key for vehicle data
func (k CacheKeys) Vehicle(vehicleID string) string {
	return fmt.Sprintf("vehicle:%s", vehicleID)
}

// CriticalVehicles returns cache key for the critical fleet view
func (k CacheKeys) CriticalVehicles() string {
	return "vehicles:critical"
}

// FleetStats returns cache key for fleet statistics
func (k CacheKeys) FleetStats() string {
	return "vehicles:stats"
}

// InterventionStats returns cache key for intervention statistics
func (k CacheKeys) InterventionStats() string {
	return "interventions:stats"
}

// TTL defines common cache TTL durations
type CacheTTL struct{}

var TTL = CacheTTL{}

func (t CacheTTL) Short() time.Duration  { return 5 * time.Minute }
func (t CacheTTL) Medium() time.Duration { return 15 * time.Minute }
func (t CacheTTL) Long() time.Duration   { return 1 * time.Hour }
