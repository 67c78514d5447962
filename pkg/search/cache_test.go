package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
)

func newTestCache(t *testing.T, opts ...Option) (*Cache, *cache.Manager) {
	t.Helper()

	manager, err := cache.New(cache.Config{MaxSizeMB: 1, MaxEntries: 100}, nil)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	return New(manager, opts...), manager
}

func sampleResults() []Result {
	return []Result{
		{
			ID:     "civitai:12345",
			Name:   "Anime Style XL",
			Source: "civitai",
			Score:  0.92,
			Metadata: map[string]any{
				"type": "LORA",
				"base": "SDXL",
			},
		},
		{
			ID:     "hf:67890",
			Name:   "anime-diffusion-v2",
			Source: "huggingface",
			Score:  0.81,
		},
	}
}

func TestCache_SetAndGet(t *testing.T) {
	sc, _ := newTestCache(t)
	ctx := context.Background()
	searchContext := map[string]any{"type": "LORA", "nsfw": false}

	if err := sc.Set(ctx, "anime style", searchContext, sampleResults()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	results, err := sc.Get(ctx, "anime style", searchContext)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].ID != "civitai:12345" {
		t.Errorf("Expected ID civitai:12345, got %v", results[0].ID)
	}
	if results[0].Score != 0.92 {
		t.Errorf("Expected score 0.92, got %v", results[0].Score)
	}
	if results[0].Metadata["type"] != "LORA" {
		t.Errorf("Expected metadata type LORA, got %v", results[0].Metadata["type"])
	}
	if results[1].Source != "huggingface" {
		t.Errorf("Expected source huggingface, got %v", results[1].Source)
	}
}

func TestCache_Miss(t *testing.T) {
	sc, _ := newTestCache(t)

	_, err := sc.Get(context.Background(), "never seen", nil)
	if !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestCache_ContextSensitivity(t *testing.T) {
	sc, _ := newTestCache(t)
	ctx := context.Background()

	if err := sc.Set(ctx, "anime", map[string]any{"nsfw": false}, sampleResults()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Same query with different context must not reuse the results
	_, err := sc.Get(ctx, "anime", map[string]any{"nsfw": true})
	if !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for different context, got %v", err)
	}

	// Equal context built in a different order must hit
	if _, err := sc.Get(ctx, "anime", map[string]any{"nsfw": false}); err != nil {
		t.Errorf("Expected hit for equal context, got %v", err)
	}
}

func TestCache_TTL(t *testing.T) {
	sc, _ := newTestCache(t, WithTTL(50*time.Millisecond))
	ctx := context.Background()

	if err := sc.Set(ctx, "anime", nil, sampleResults()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := sc.Get(ctx, "anime", nil); err != nil {
		t.Fatalf("Expected hit before expiry, got %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	_, err := sc.Get(ctx, "anime", nil)
	if !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestCache_Invalidate(t *testing.T) {
	sc, manager := newTestCache(t)
	ctx := context.Background()

	if err := sc.Set(ctx, "anime", nil, sampleResults()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := sc.Set(ctx, "realistic", nil, sampleResults()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// An unrelated entry must survive the invalidation
	if err := manager.Set(ctx, "model:123", "metadata"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if removed := sc.Invalidate(); removed != 2 {
		t.Errorf("Expected 2 removed entries, got %d", removed)
	}

	if _, err := sc.Get(ctx, "anime", nil); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after invalidation, got %v", err)
	}
	if _, err := manager.Get(ctx, "model:123"); err != nil {
		t.Errorf("Expected unrelated entry to survive, got %v", err)
	}
}

func TestCache_UnreadableValue(t *testing.T) {
	sc, manager := newTestCache(t)
	ctx := context.Background()

	// Plant a foreign value under the search key
	key := Key{Query: "anime"}.String()
	if err := manager.Set(ctx, key, "not a result list"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, err := sc.Get(ctx, "anime", nil)
	if !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for unreadable value, got %v", err)
	}
}

func TestCache_CoercesGenericShapes(t *testing.T) {
	sc, manager := newTestCache(t)
	ctx := context.Background()

	// Values served from a persistent tier come back as generic JSON
	// shapes rather than []Result
	generic := []any{
		map[string]any{
			"id":     "civitai:777",
			"name":   "Detail Tweaker",
			"source": "civitai",
			"score":  0.5,
		},
	}
	key := Key{Query: "detail"}.String()
	if err := manager.Set(ctx, key, generic); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	results, err := sc.Get(ctx, "detail", nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].ID != "civitai:777" {
		t.Errorf("Expected ID civitai:777, got %v", results[0].ID)
	}
	if results[0].Score != 0.5 {
		t.Errorf("Expected score 0.5, got %v", results[0].Score)
	}
}

func TestNew_NilManager(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil manager")
		}
	}()
	New(nil)
}

func TestNew_InvalidTTL(t *testing.T) {
	sc, _ := newTestCache(t, WithTTL(-time.Second))

	if sc.ttl != DefaultTTL {
		t.Errorf("Expected DefaultTTL for invalid option, got %v", sc.ttl)
	}
}
