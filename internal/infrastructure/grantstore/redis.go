package grantstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	grantKeyPrefix    = "breakout:grant:"
	consumedKeySuffix = ":consumed"
	userKeyPrefix     = "breakout:grant:user:"
)

// Redis shares grants between coordinator replicas. Single use is enforced by
// SET NX on a per-grant consumption marker.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func grantKey(id string) string {
	return grantKeyPrefix + id
}

func consumedKey(id string) string {
	return grantKeyPrefix + id + consumedKeySuffix
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

func ttlFor(grant *domain.JoinGrant, now time.Time) time.Duration {
	ttl := grant.ExpiresAt.Sub(now) + retention
	if ttl <= 0 {
		ttl = retention
	}
	return ttl
}

func (r *Redis) Save(ctx context.Context, grant *domain.JoinGrant) error {
	if grant == nil || grant.ID == "" || grant.UserID == "" {
		return domain.ErrInvalidParameter
	}

	raw, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}

	ttl := ttlFor(grant, grant.IssuedAt)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, grantKey(grant.ID), raw, ttl)
	pipe.Set(ctx, userKey(grant.UserID), grant.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save grant %s: %w", grant.ID, err)
	}

	return nil
}

func (r *Redis) load(ctx context.Context, grantID string) (*domain.JoinGrant, error) {
	raw, err := r.client.Get(ctx, grantKey(grantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrInvalidGrant
	}
	if err != nil {
		return nil, fmt.Errorf("load grant %s: %w", grantID, err)
	}

	var grant domain.JoinGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return nil, fmt.Errorf("decode grant %s: %w", grantID, err)
	}

	return &grant, nil
}

func (r *Redis) Consume(ctx context.Context, grantID string, now time.Time) (*domain.JoinGrant, error) {
	grant, err := r.load(ctx, grantID)
	if err != nil {
		return nil, err
	}

	consumed, err := r.client.Exists(ctx, consumedKey(grantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check grant %s: %w", grantID, err)
	}
	if consumed > 0 {
		return nil, domain.ErrGrantConsumed
	}
	if grant.Expired(now) {
		return nil, domain.ErrGrantExpired
	}

	ok, err := r.client.SetNX(ctx, consumedKey(grantID), now.UnixMilli(), ttlFor(grant, now)).Result()
	if err != nil {
		return nil, fmt.Errorf("consume grant %s: %w", grantID, err)
	}
	if !ok {
		return nil, domain.ErrGrantConsumed
	}

	consumedAt := now
	grant.ConsumedAt = &consumedAt
	return grant, nil
}

func (r *Redis) PendingForUser(ctx context.Context, userID string, now time.Time) (*domain.JoinGrant, error) {
	grantID, err := r.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrGrantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup grant for user %s: %w", userID, err)
	}

	grant, err := r.load(ctx, grantID)
	if errors.Is(err, domain.ErrInvalidGrant) {
		return nil, domain.ErrGrantNotFound
	}
	if err != nil {
		return nil, err
	}
	if grant.Expired(now) {
		return nil, domain.ErrGrantNotFound
	}

	consumed, err := r.client.Exists(ctx, consumedKey(grantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check grant %s: %w", grantID, err)
	}
	if consumed > 0 {
		return nil, domain.ErrGrantNotFound
	}

	return grant, nil
}
