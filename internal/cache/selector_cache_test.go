package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorCache_SetGetHitMiss(t *testing.T) {
	c := NewSelectorCache(50 * time.Millisecond)
	key := SelectorKey{NamedElement: "new_post_title", CMSKind: "wordpress"}

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, "#title")
	sel, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "#title", sel)

	hits, misses := c.HitsAndMisses()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestSelectorCache_ExpiresAfterTTL(t *testing.T) {
	c := NewSelectorCache(10 * time.Millisecond)
	key := SelectorKey{NamedElement: "save_draft_button", CMSKind: "wordpress"}
	c.Set(key, ".save-draft")

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestSelectorCache_Invalidate(t *testing.T) {
	c := NewSelectorCache(time.Minute)
	key := SelectorKey{NamedElement: "publish_button", CMSKind: "wordpress"}
	c.Set(key, ".publish")
	c.Invalidate(&key)

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestSelectorCache_InvalidateNilClearsAll(t *testing.T) {
	c := NewSelectorCache(time.Minute)
	a := SelectorKey{NamedElement: "a", CMSKind: "wordpress"}
	b := SelectorKey{NamedElement: "b", CMSKind: "wordpress"}
	c.Set(a, "#a")
	c.Set(b, "#b")
	require.Equal(t, 2, c.Size())

	c.Invalidate(nil)
	assert.Equal(t, 0, c.Size())
}

func TestSelectorCache_DefaultsTTLWhenNonPositive(t *testing.T) {
	c := NewSelectorCache(0)
	assert.Equal(t, 5*time.Minute, c.ttl)
}

func TestSelectorCache_ConcurrentAccess(t *testing.T) {
	c := NewSelectorCache(time.Minute)
	key := SelectorKey{NamedElement: "tag_input", CMSKind: "wordpress"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set(key, "#tags")
			_, _ = c.Get(key)
		}()
	}
	wg.Wait()

	sel, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "#tags", sel)
}
