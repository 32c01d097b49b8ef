package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"outreach-backend/internal/plan/domain"

	"github.com/go-redis/redis/v8"
)

// RedisStore backs the plan cache with Redis so plans survive process
// restarts and multiple API instances share one cache. Expiry rides on
// Redis TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore on an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func planKey(planID string) string {
	return "outreach:plan:" + planID
}

func (s *RedisStore) Put(plan *domain.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	return s.client.Set(context.Background(), planKey(plan.ID), data, domain.PlanTTL).Err()
}

func (s *RedisStore) Get(planID string) (*domain.Plan, error) {
	data, err := s.client.Get(context.Background(), planKey(planID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var plan domain.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

func (s *RedisStore) Delete(planID string) error {
	return s.client.Del(context.Background(), planKey(planID)).Err()
}

// Sweep is a no-op: Redis expires keys natively.
func (s *RedisStore) Sweep() error { return nil }
