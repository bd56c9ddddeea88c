package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when no local Redis
// is available. The integration suite covers the same paths against a
// containerized Redis.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testKey() Key {
	return Key{
		Shop:      "https://test.myshopify.com",
		Query:     "query { shop { name } }",
		Variables: map[string]any{"first": 50},
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_GetMiss(t *testing.T) {
	manager := NewManager(setupTestRedis(t))

	_, err := manager.Get(context.Background(), testKey())
	if err != ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetGet(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()
	key := testKey()

	entry := NewEntry(json.RawMessage(`{"shop":{"name":"Test"}}`), time.Minute)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Data) != `{"shop":{"name":"Test"}}` {
		t.Errorf("Data = %s", got.Data)
	}
}

func TestManager_SetExpiredEntry(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()
	key := testKey()

	entry := NewEntry(json.RawMessage(`{}`), -time.Minute)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Expired entries are never stored.
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestManager_SetNilEntry(t *testing.T) {
	manager := NewManager(setupTestRedis(t))

	if err := manager.Set(context.Background(), testKey(), nil); err == nil {
		t.Error("Set(nil) expected error")
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()
	key := testKey()

	entry := NewEntry(json.RawMessage(`{}`), time.Minute)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}
