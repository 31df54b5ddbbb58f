package ttlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	store.Set("otp:9876543210", "482913", time.Minute)

	value, ok := store.Get("otp:9876543210")
	assert.True(t, ok)
	assert.Equal(t, "482913", value)

	_, ok = store.Get("otp:0000000000")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	store.Set("key", "value", 10*time.Millisecond)

	_, ok := store.Get("key")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = store.Get("key")
	assert.False(t, ok, "expired entries read as missing")
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	store.Set("key", "value", time.Minute)
	store.Delete("key")

	_, ok := store.Get("key")
	assert.False(t, ok)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	store.Set("key", "first", time.Minute)
	store.Set("key", "second", time.Minute)

	value, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestMemoryStoreJanitorEvicts(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	defer store.Close()

	store.Set("key", "value", time.Millisecond)

	time.Sleep(50 * time.Millisecond)

	store.mu.RLock()
	_, present := store.entries["key"]
	store.mu.RUnlock()
	assert.False(t, present, "the janitor removes expired entries from the map")
}
