package cache

// evictLess orders entries by eviction priority: lowest access count
// first, then oldest last access, then lowest insertion sequence.
func evictLess(a, b *Entry) bool {
	if a.AccessCount != b.AccessCount {
		return a.AccessCount < b.AccessCount
	}
	if !a.LastAccess.Equal(b.LastAccess) {
		return a.LastAccess.Before(b.LastAccess)
	}
	return a.seq < b.seq
}

// victim returns the next entry to evict, or nil if the cache is empty.
// Caller must hold mu.
func (m *Manager) victim() *Entry {
	var v *Entry
	for _, e := range m.entries {
		if v == nil || evictLess(e, v) {
			v = e
		}
	}
	return v
}

// ensureCapacity evicts entries until need more bytes and one more entry
// fit within the configured ceilings. Caller must hold mu.
func (m *Manager) ensureCapacity(need int64) error {
	for len(m.entries) >= m.maxEntries || m.totalSize+need > m.maxSize {
		v := m.victim()
		if v == nil {
			return ErrNoCapacity
		}
		m.removeLocked(v.Key)
		CacheEvictions.Inc()
		m.logger.Debug().
			Str("key", v.Key).
			Int64("size", v.Size).
			Int64("access_count", v.AccessCount).
			Msg("Evicted cache entry")
	}
	return nil
}
