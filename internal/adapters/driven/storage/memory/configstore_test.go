package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "gemini-2.5-flash"))
	require.NoError(t, store.Set("retrieval.top_k", 4))
	require.NoError(t, store.Set("index.watch", true))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", val)
	assert.Equal(t, "gemini-2.5-flash", store.GetString("llm.model"))
	assert.Equal(t, 4, store.GetInt("retrieval.top_k"))
	assert.True(t, store.GetBool("index.watch"))

	_, ok = store.Get("llm.provider")
	assert.False(t, ok)
}

func TestConfigStore_TypedGettersFallBackToZero(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("retrieval.top_k", "four")
	_ = store.Set("llm.model", 7)

	assert.Equal(t, 0, store.GetInt("retrieval.top_k"))
	assert.Equal(t, "", store.GetString("llm.model"))
	assert.False(t, store.GetBool("llm.model"))
	assert.Equal(t, time.Duration(0), store.GetDuration("llm.model"))
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_GetIntNumericKinds(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("a", int64(43))
	_ = store.Set("b", 3.9)

	assert.Equal(t, 43, store.GetInt("a"))
	assert.Equal(t, 3, store.GetInt("b"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("retry.initial_delay", "2s")
	_ = store.Set("retry.timeout", 90*time.Second)
	_ = store.Set("retry.broken", "soon")

	assert.Equal(t, 2*time.Second, store.GetDuration("retry.initial_delay"))
	assert.Equal(t, 90*time.Second, store.GetDuration("retry.timeout"))
	assert.Equal(t, time.Duration(0), store.GetDuration("retry.broken"))
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store := NewConfigStore()
	assert.Empty(t, store.Keys())

	_ = store.Set("retry.max_attempts", 3)
	_ = store.Set("embedding.provider", "hashing")
	_ = store.Set("llm.model", "m")

	assert.Equal(t, []string{"embedding.provider", "llm.model", "retry.max_attempts"}, store.Keys())
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = store.Set(key, n)
			assert.Equal(t, n, store.GetInt(key))
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
