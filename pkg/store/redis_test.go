package store

import (
	"context"
	"testing"
	"time"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	config := DefaultRedisConfig()
	config.KeyPrefix = "test:statement:template:" + time.Now().Format("150405.000000") + ":"
	config.DialTimeout = 2 * time.Second

	r, err := NewRedisStore(config)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		if list, err := r.List(ctx); err == nil {
			for _, tmpl := range list {
				r.Delete(ctx, tmpl.Name)
			}
		}
		r.Close()
	})
	return r
}

func TestRedisStore(t *testing.T) {
	runStoreContract(t, setupTestRedis(t))
}

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	config := DefaultRedisConfig()
	config.Addr = ""
	if _, err := NewRedisStore(config); err == nil {
		t.Error("NewRedisStore() with no address succeeded")
	}
}
