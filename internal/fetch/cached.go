package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched page is reused.
const DefaultCacheTTL = 10 * time.Minute

// DefaultCacheEntries bounds the cache size.
const DefaultCacheEntries = 256

// CachedFetcher wraps URL with an in-memory cache so a user regenerating
// from the same link does not refetch the page. Failures are not cached.
type CachedFetcher struct {
	options    *Options
	cacheTTL   time.Duration
	maxEntries int
	now        func() time.Time
	fetch      func(ctx context.Context, url string, opts *Options) (*Result, error)

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result    *Result
	fetchedAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL   time.Duration
	MaxEntries int
	Options    *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:   DefaultCacheTTL,
		MaxEntries: DefaultCacheEntries,
		Options:    DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. Zero config values take
// their defaults.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	f := &CachedFetcher{
		options:    config.Options,
		cacheTTL:   config.CacheTTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
		fetch:      URL,
		entries:    make(map[string]cacheEntry),
	}
	if f.options == nil {
		f.options = DefaultOptions()
	}
	if f.cacheTTL <= 0 {
		f.cacheTTL = DefaultCacheTTL
	}
	if f.maxEntries <= 0 {
		f.maxEntries = DefaultCacheEntries
	}
	return f
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch returns a fresh cached page or fetches it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if result, ok := f.lookup(urlStr); ok {
		return &CachedResult{Result: result, FromCache: true}, nil
	}

	result, err := f.fetch(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	f.store(urlStr, result)
	return &CachedResult{Result: result}, nil
}

// InvalidateCache drops a cached page.
func (f *CachedFetcher) InvalidateCache(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, urlStr)
}

// Len returns the number of cached pages, expired ones included.
func (f *CachedFetcher) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *CachedFetcher) lookup(urlStr string) (*Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[urlStr]
	if !ok {
		return nil, false
	}
	if f.now().Sub(entry.fetchedAt) > f.cacheTTL {
		delete(f.entries, urlStr)
		return nil, false
	}
	return entry.result, true
}

func (f *CachedFetcher) store(urlStr string, result *Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if len(f.entries) >= f.maxEntries {
		f.evict(now)
	}
	f.entries[urlStr] = cacheEntry{result: result, fetchedAt: now}
}

// evict drops expired entries, then the oldest one if the cache is still
// full. Callers hold mu.
func (f *CachedFetcher) evict(now time.Time) {
	var oldestURL string
	var oldest time.Time
	for u, entry := range f.entries {
		if now.Sub(entry.fetchedAt) > f.cacheTTL {
			delete(f.entries, u)
			continue
		}
		if oldestURL == "" || entry.fetchedAt.Before(oldest) {
			oldestURL, oldest = u, entry.fetchedAt
		}
	}
	if len(f.entries) >= f.maxEntries && oldestURL != "" {
		delete(f.entries, oldestURL)
	}
}
