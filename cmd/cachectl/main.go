// Command cachectl inspects and manages the model cache.
//
// Usage:
//
//	cachectl stats [-dir DIR | -redis ADDR]
//	cachectl clear [-dir DIR | -redis ADDR] [-older-than 24h]
//	cachectl bench [-n 5000] [-goroutines 8] [-value-size 1024] [-persist]
//	cachectl serve [-dir DIR | -redis ADDR] [-port 8080]
//
// Flags fall back to environment variables: CACHE_DIR, REDIS_URL,
// CACHE_MAX_SIZE_MB, CACHE_MAX_ENTRIES, PORT, LOG_LEVEL, LOG_PRETTY.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/logging"
	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/store"
)

// defaultCacheDir is the conventional cache location shared with the
// application process.
const defaultCacheDir = "data/cache"

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnvBool("LOG_PRETTY", true),
		Output: os.Stderr,
	})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "stats":
		err = runStats(args, logger)
	case "clear":
		err = runClear(args, logger)
	case "bench":
		err = runBench(args, logger)
	case "serve":
		err = runServe(args, logger)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `cachectl - inspect and manage the model cache

Commands:
  stats   Print cache statistics as JSON
  clear   Remove cached entries (all, or only stale ones)
  bench   Run a synthetic workload against a scratch cache
  serve   Expose /health, /stats and /metrics over HTTP

Run 'cachectl <command> -h' for command flags.
`)
}

func runStats(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dir := fs.String("dir", getEnv("CACHE_DIR", defaultCacheDir), "cache directory")
	redisURL := fs.String("redis", getEnv("REDIS_URL", ""), "redis address (overrides -dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	manager, err := newManager(*dir, *redisURL, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := gojson.MarshalIndent(manager.Stats(ctx), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runClear(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	dir := fs.String("dir", getEnv("CACHE_DIR", defaultCacheDir), "cache directory")
	redisURL := fs.String("redis", getEnv("REDIS_URL", ""), "redis address (overrides -dir)")
	olderThan := fs.Duration("older-than", 0, "only remove entries older than this (0 removes everything)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	manager, err := newManager(*dir, *redisURL, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *olderThan > 0 {
		if err := manager.ClearOlderThan(ctx, *olderThan); err != nil {
			return err
		}
		logger.Info().Dur("older_than", *olderThan).Msg("Purged stale cache entries")
		return nil
	}

	if err := manager.Clear(ctx); err != nil {
		return err
	}
	logger.Info().Msg("Cache cleared")
	return nil
}

func runBench(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	opsPerG := fs.Int("n", 5000, "operations per goroutine")
	goroutines := fs.Int("goroutines", 8, "concurrent goroutines")
	valueSize := fs.Int("value-size", 1024, "approximate value size in bytes")
	persist := fs.Bool("persist", false, "persist entries to a scratch directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// The benchmark always runs against a scratch directory so it never
	// touches a real cache.
	scratch, err := os.MkdirTemp("", "cachectl-bench-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	manager, err := newManager(scratch, "", logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx := context.Background()
	value := make([]byte, *valueSize)
	for i := range value {
		value[i] = 'x'
	}

	var setOpts []cache.SetOption
	if *persist {
		setOpts = append(setOpts, cache.WithPersist())
	}

	// Preload so the read phase mostly hits
	const preloadKeys = 500
	fmt.Println("Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		key := fmt.Sprintf("bench:%d", i)
		if err := manager.Set(ctx, key, string(value), setOpts...); err != nil {
			return err
		}
	}

	fmt.Println("Running benchmark...")
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(*goroutines)
	for g := 0; g < *goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < *opsPerG; i++ {
				key := fmt.Sprintf("bench:%d", i%preloadKeys)
				if i%10 == 0 {
					_ = manager.Set(ctx, key, string(value), setOpts...)
				} else {
					_, _ = manager.Get(ctx, key)
				}
			}
		}(g)
	}
	wg.Wait()

	duration := time.Since(start)
	totalOps := *goroutines * *opsPerG

	stats, err := gojson.MarshalIndent(manager.Stats(ctx), "", "  ")
	if err != nil {
		return err
	}

	fmt.Println("\n================ RESULTS ================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Println("=========================================")
	fmt.Println(string(stats))
	return nil
}

func runServe(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dir := fs.String("dir", getEnv("CACHE_DIR", defaultCacheDir), "cache directory")
	redisURL := fs.String("redis", getEnv("REDIS_URL", ""), "redis address (overrides -dir)")
	port := fs.String("port", getEnv("PORT", "8080"), "listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	manager, err := newManager(*dir, *redisURL, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/stats", statsHandler(manager))
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + *port
	logger.Info().Str("addr", addr).Msg("Starting cache control server")
	return http.ListenAndServe(addr, nil)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func statsHandler(manager *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		out, err := gojson.Marshal(manager.Stats(ctx))
		if err != nil {
			http.Error(w, fmt.Sprintf("encode stats: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out); err != nil {
			log.Warn().Err(err).Msg("Failed to write stats response")
		}
	}
}

// newManager builds a cache manager backed by either a Redis store or a
// disk store rooted at dir.
func newManager(dir, redisURL string, logger zerolog.Logger) (*cache.Manager, error) {
	var backing cache.Store
	if redisURL != "" {
		client := redis.NewClient(&redis.Options{Addr: redisURL})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", redisURL, err)
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")
		backing = store.NewRedis(client)
	} else {
		disk, err := store.NewDiskAt(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache directory %s: %w", dir, err)
		}
		backing = disk
	}

	cfg := cache.DefaultConfig()
	cfg.MaxSizeMB = getEnvFloat("CACHE_MAX_SIZE_MB", cfg.MaxSizeMB)
	cfg.MaxEntries = getEnvInt("CACHE_MAX_ENTRIES", cfg.MaxEntries)
	return cache.New(cfg, backing)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
