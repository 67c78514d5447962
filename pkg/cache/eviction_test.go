package cache

import (
	"errors"
	"testing"
	"time"
)

func TestEvictLess(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name string
		a, b *Entry
		want bool
	}{
		{
			name: "lower access count wins",
			a:    &Entry{AccessCount: 1, LastAccess: base},
			b:    &Entry{AccessCount: 5, LastAccess: base.Add(-time.Hour)},
			want: true,
		},
		{
			name: "equal counts, older access wins",
			a:    &Entry{AccessCount: 2, LastAccess: base.Add(-time.Minute)},
			b:    &Entry{AccessCount: 2, LastAccess: base},
			want: true,
		},
		{
			name: "full tie, lower sequence wins",
			a:    &Entry{AccessCount: 2, LastAccess: base, seq: 1},
			b:    &Entry{AccessCount: 2, LastAccess: base, seq: 2},
			want: true,
		},
		{
			name: "higher access count loses",
			a:    &Entry{AccessCount: 9, LastAccess: base.Add(-time.Hour)},
			b:    &Entry{AccessCount: 0, LastAccess: base},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evictLess(tt.a, tt.b); got != tt.want {
				t.Errorf("evictLess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVictim(t *testing.T) {
	m := newTestManager(t, DefaultConfig(), nil)
	now := time.Now()

	m.mu.Lock()
	m.entries = map[string]*Entry{
		"hot":    {Key: "hot", AccessCount: 10, LastAccess: now, seq: 1},
		"cold":   {Key: "cold", AccessCount: 0, LastAccess: now, seq: 3},
		"stale":  {Key: "stale", AccessCount: 2, LastAccess: now.Add(-time.Hour), seq: 2},
		"oldest": {Key: "oldest", AccessCount: 0, LastAccess: now.Add(-time.Minute), seq: 4},
	}
	v := m.victim()
	m.mu.Unlock()

	// "cold" and "oldest" share the lowest count; "oldest" was accessed
	// longer ago
	if v == nil || v.Key != "oldest" {
		t.Errorf("Expected victim oldest, got %+v", v)
	}
}

func TestVictim_EmptyCache(t *testing.T) {
	m := newTestManager(t, DefaultConfig(), nil)

	m.mu.Lock()
	v := m.victim()
	m.mu.Unlock()

	if v != nil {
		t.Errorf("Expected nil victim on empty cache, got %+v", v)
	}
}

func TestEnsureCapacity_NoCapacity(t *testing.T) {
	m := newTestManager(t, Config{MaxSizeMB: 1, MaxEntries: 10}, nil)

	// Nothing to evict and the requested bytes can never fit
	m.mu.Lock()
	err := m.ensureCapacity(m.maxSize + 1)
	m.mu.Unlock()

	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Expected ErrNoCapacity, got %v", err)
	}
}
