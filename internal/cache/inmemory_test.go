package cache

import (
	"context"
	"testing"

	"github.com/flexprice/ticketing/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = true
	c := NewInMemoryCache(cfg)

	key := GenerateKey(PrefixService, "svc_1")
	assert.Equal(t, "service:v1:svc_1", key)

	c.Set(ctx, key, "hosting", 0)
	got, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "hosting", got)

	c.Set(ctx, GenerateKey(PrefixService, "svc_2"), "domain", 0)
	c.Set(ctx, GenerateKey(PrefixSubscription, "subs_1"), "sub", 0)
	c.DeleteByPrefix(ctx, PrefixService)

	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixSubscription, "subs_1"))
	assert.True(t, ok)
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
