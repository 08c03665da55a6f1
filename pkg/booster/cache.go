package booster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
)

// Cacher stores classifier verdicts. Only successful fetches are stored.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache persists verdicts on disk so repeated runs over the same search
// report do not pay for inference twice.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// OpenCache opens a verdict cache at ~/.cache/shadowrecon, or dir if non-empty.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		dir = filepath.Join(cacheDir, "shadowrecon")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("verdicts", dir)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// CachedClassifier serves verdicts from a Cacher and falls through to the
// wrapped classifier on a miss. Errors are never cached.
type CachedClassifier struct {
	next   Classifier
	cache  Cacher
	logger *slog.Logger
}

// NewCachedClassifier wraps next with cache. A nil cache returns next unchanged.
func NewCachedClassifier(next Classifier, cache Cacher, logger *slog.Logger) Classifier {
	if cache == nil {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClassifier{next: next, cache: cache, logger: logger}
}

// Classify implements Classifier.
func (c *CachedClassifier) Classify(ctx context.Context, text string, labels []string) (Verdict, error) {
	key := VerdictKey(text, labels)
	var fetched bool
	data, err := c.cache.GetSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		fetched = true
		v, err := c.next.Classify(ctx, text, labels)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}, c.cache.TTL())
	if err != nil {
		return Verdict{}, err
	}

	var v Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return Verdict{}, fmt.Errorf("decode cached verdict: %w", err)
	}
	if !fetched {
		c.logger.DebugContext(ctx, "verdict cache hit", "key", key[:12])
	}
	return v, nil
}

// VerdictKey derives the cache key for a classification request.
func VerdictKey(text string, labels []string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(labels, "\x1f")))
	h.Write([]byte{0x1e})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
