package deposit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const balanceCacheTTL = 30 * time.Second

// BalanceCache is a cache-aside layer for balance views. A nil client
// disables caching entirely, so the service runs fine without Redis.
type BalanceCache struct {
	client *redis.Client
}

func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{client: client}
}

func balanceKey(merchantID uuid.UUID, campaignID *uuid.UUID) string {
	key := "deposit:balance:" + merchantID.String()
	if campaignID != nil {
		key += ":" + campaignID.String()
	}
	return key
}

func (c *BalanceCache) Get(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID) (*BalanceView, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, balanceKey(merchantID, campaignID)).Bytes()
	if err != nil {
		return nil, false
	}

	var view BalanceView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (c *BalanceCache) Set(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID, view *BalanceView) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	c.client.Set(ctx, balanceKey(merchantID, campaignID), raw, balanceCacheTTL)
}

// Invalidate drops every cached view for the merchant. Called after each
// balance mutation; cache staleness must never survive a write.
func (c *BalanceCache) Invalidate(ctx context.Context, merchantID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, "deposit:balance:"+merchantID.String()+"*", 32).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
