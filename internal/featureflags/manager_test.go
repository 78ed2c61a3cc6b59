package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_Enabled(t *testing.T) {
	m := NewManager(" Book_Cache = ON , legacy=off, half=50%, all=150%, broken, bad=maybe, =on")

	assert.True(t, m.Enabled(BookCache, 0))
	assert.True(t, m.EnabledGlobally("BOOK_CACHE"))
	assert.False(t, m.Enabled("legacy", 1))
	assert.True(t, m.Enabled("all", 0))
	assert.False(t, m.Enabled("missing", 1))
	assert.False(t, m.Enabled("bad", 1))
	assert.False(t, m.Enabled("half", 0), "partial rollouts exclude anonymous callers")

	assert.Equal(t, []string{"all", "book_cache", "half", "legacy"}, m.Names())
}

func TestManager_RolloutIsDeterministic(t *testing.T) {
	m := NewManager("half=50%")

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		first := m.Enabled("half", id)
		assert.Equal(t, first, m.Enabled("half", id))
		if first {
			enabled++
		}
	}
	assert.InDelta(t, 500, enabled, 100)
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(BookCache, 1))
	assert.Empty(t, m.Names())
}

func TestManager_Snapshot(t *testing.T) {
	m := NewManager("book_cache=on,legacy=off")
	assert.Equal(t, map[string]bool{"book_cache": true, "legacy": false}, m.Snapshot(9))
}
