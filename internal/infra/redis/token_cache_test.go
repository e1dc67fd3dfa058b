package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"checkout-service/internal/domain"
)

func TestTokenCache_Unreachable(t *testing.T) {
	client := NewClient(Options{Addr: "127.0.0.1:1", Timeout: 100 * time.Millisecond})
	defer client.Close()

	cache := NewTokenCache(client, "checkout", 200*time.Millisecond)

	_, ok, err := cache.Get(context.Background(), "paypal:access_token")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)

	err = cache.Set(context.Background(), "paypal:access_token", "tok", time.Minute)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestTokenCache_Key(t *testing.T) {
	assert.Equal(t, "checkout:k", NewTokenCache(nil, "checkout", time.Second).key("k"))
	assert.Equal(t, "k", NewTokenCache(nil, "", time.Second).key("k"))
}
