package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache keys:
// - cs:accounts:{workspace_id} - provider account list, 5m TTL
// - cs:workspaces - provider workspace list, 5m TTL

type CacheConfig struct {
	AccountsTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		AccountsTTL: 5 * time.Minute,
	}
}

// CacheStore caches provider list responses.
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	if config.AccountsTTL <= 0 {
		config.AccountsTTL = DefaultCacheConfig().AccountsTTL
	}
	return &CacheStore{
		client: client,
		config: config,
	}
}

func accountsKey(workspaceID string) string {
	return fmt.Sprintf("cs:accounts:%s", workspaceID)
}

const workspacesKey = "cs:workspaces"

// GetAccounts returns nil, nil on a cache miss.
func (c *CacheStore) GetAccounts(ctx context.Context, workspaceID string) ([]json.RawMessage, error) {
	return c.getList(ctx, accountsKey(workspaceID))
}

func (c *CacheStore) SetAccounts(ctx context.Context, workspaceID string, items []json.RawMessage) error {
	return c.setList(ctx, accountsKey(workspaceID), items)
}

func (c *CacheStore) InvalidateAccounts(ctx context.Context, workspaceID string) error {
	return c.client.Del(ctx, accountsKey(workspaceID)).Err()
}

// GetWorkspaces returns nil, nil on a cache miss.
func (c *CacheStore) GetWorkspaces(ctx context.Context) ([]json.RawMessage, error) {
	return c.getList(ctx, workspacesKey)
}

func (c *CacheStore) SetWorkspaces(ctx context.Context, items []json.RawMessage) error {
	return c.setList(ctx, workspacesKey, items)
}

func (c *CacheStore) getList(ctx context.Context, key string) ([]json.RawMessage, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

func (c *CacheStore) setList(ctx context.Context, key string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.config.AccountsTTL).Err()
}
