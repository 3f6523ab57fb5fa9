package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartcanteen/canteen-app/models"
)

const availableMenuKey = "menu:available"

// MenuCache is a read-through cache for the available-menu listing, the
// hottest read path in the service. A nil client disables caching.
type MenuCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMenuCache(client *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{client: client, ttl: ttl}
}

func (c *MenuCache) GetAvailableMenu(ctx context.Context) ([]models.MenuItem, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, availableMenuKey).Bytes()
	if err != nil {
		return nil, false
	}
	var items []models.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *MenuCache) SetAvailableMenu(ctx context.Context, items []models.MenuItem) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	c.client.Set(ctx, availableMenuKey, raw, c.ttl)
}

// Invalidate drops the cached listing after any staff catalog write.
func (c *MenuCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, availableMenuKey)
}
