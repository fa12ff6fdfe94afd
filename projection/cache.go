// Package projection reduces item embeddings to 3D display coordinates
// (PCA followed by t-SNE) and memoizes the expensive computation behind a
// parameter fingerprint: concurrent requests for the same fingerprint share
// one computation, and completed results are served from memory.
package projection

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"

	"github.com/signalhaze/vibemap/emotion"
)

const (
	// AlgorithmVersion participates in the fingerprint; bump it whenever the
	// reduction pipeline changes so stale cache entries stop matching.
	AlgorithmVersion = "pca-tsne/1"

	// MinIterations is the floor on t-SNE optimization steps. Requests below
	// it are clamped up, never rejected: fewer steps produce unreliable
	// layouts.
	MinIterations = 250

	// DefaultMaxRecords bounds the input when the caller passes no limit.
	DefaultMaxRecords = 100
)

// Estimate returns the processing-time estimate, in time units, for a
// projection over maxRecords items and maxIterations steps. The formula
// ceil((maxRecords/10000) * (maxIterations/5)) is a compatibility contract
// with the progress UI and must not change shape.
func Estimate(maxRecords, maxIterations int) int {
	return int(math.Ceil(float64(maxRecords) / 10000 * (float64(maxIterations) / 5)))
}

// Input is one item entering the projection: identity, embedding, and the
// final emotion level used for color grouping.
type Input struct {
	ID     string
	Vector []float32
	Level  emotion.Level
}

// Point is one projected item in display space.
type Point struct {
	ItemID string        `json:"item_id"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Z      float64       `json:"z"`
	Level  emotion.Level `json:"cluster"`
}

// ComputationError wraps a failed projection. Failures are delivered to
// every caller joined on the fingerprint and are never cached, so the next
// request retries.
type ComputationError struct {
	Fingerprint string
	Err         error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("projection %s failed: %v", e.Fingerprint[:12], e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// Fingerprint derives the cache key from the ordered item identities, the
// bounding parameters, and the algorithm version.
func Fingerprint(items []Input, maxRecords, maxIterations int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", AlgorithmVersion, maxRecords, maxIterations)
	for _, it := range items {
		h.Write([]byte{0})
		io.WriteString(h, it.ID)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Reducer performs the actual dimensionality reduction. If nil, the
	// default PCA + t-SNE reducer is used.
	Reducer Reducer

	// Logger receives timing logs. If nil, logging is disabled.
	Logger *zap.Logger
}

// Cache memoizes projections by fingerprint with at-most-one computation in
// flight per key. Safe for concurrent use.
type Cache struct {
	reducer Reducer
	log     *zap.Logger

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string][]Point
}

// NewCache creates an empty projection cache.
func NewCache(opts CacheOptions) *Cache {
	if opts.Reducer == nil {
		opts.Reducer = NewPCATSNEReducer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		reducer: opts.Reducer,
		log:     opts.Logger,
		entries: make(map[string][]Point),
	}
}

// Project returns the 3D coordinates for the first maxRecords items, running
// the reduction for maxIterations steps (clamped up to MinIterations).
//
// Identical (items, maxRecords, maxIterations) requests share one underlying
// computation: concurrent callers block on the in-flight run and receive its
// result, later callers hit the cache. Callers must not mutate the returned
// slice. The cache commits only complete results; a failure is reported to
// every joined caller as a ComputationError and nothing is stored.
func (c *Cache) Project(ctx context.Context, items []Input, maxRecords, maxIterations int) ([]Point, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if maxIterations < MinIterations {
		maxIterations = MinIterations
	}
	if len(items) > maxRecords {
		items = items[:maxRecords]
	}
	if len(items) == 0 {
		return nil, nil
	}

	fp := Fingerprint(items, maxRecords, maxIterations)

	c.mu.RLock()
	points, ok := c.entries[fp]
	c.mu.RUnlock()
	if ok {
		return points, nil
	}

	v, err, _ := c.group.Do(fp, func() (any, error) {
		// A previous flight may have committed between our cache miss and
		// this call.
		c.mu.RLock()
		points, ok := c.entries[fp]
		c.mu.RUnlock()
		if ok {
			return points, nil
		}

		computed, err := c.compute(ctx, items, maxIterations, fp)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[fp] = computed
		c.mu.Unlock()
		return computed, nil
	})
	if err != nil {
		return nil, &ComputationError{Fingerprint: fp, Err: err}
	}
	return v.([]Point), nil
}

// Invalidate drops the cached entry for the given fingerprint. Call it when
// the underlying item set identified by the key has changed.
func (c *Cache) Invalidate(fingerprint string) {
	c.mu.Lock()
	delete(c.entries, fingerprint)
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string][]Point)
	c.mu.Unlock()
}

func (c *Cache) compute(ctx context.Context, items []Input, iterations int, fp string) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dim := len(items[0].Vector)
	if dim == 0 {
		return nil, fmt.Errorf("item %s has no embedding", items[0].ID)
	}
	data := make([]float64, 0, len(items)*dim)
	for _, it := range items {
		if len(it.Vector) != dim {
			return nil, fmt.Errorf("item %s: embedding dimension %d, want %d", it.ID, len(it.Vector), dim)
		}
		for _, v := range it.Vector {
			data = append(data, float64(v))
		}
	}

	start := time.Now()
	coords, err := c.reducer.Reduce(mat.NewDense(len(items), dim, data), iterations)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(items))
	for i, it := range items {
		points[i] = Point{
			ItemID: it.ID,
			X:      coords.At(i, 0),
			Y:      coords.At(i, 1),
			Z:      coords.At(i, 2),
			Level:  it.Level,
		}
	}

	c.log.Info("projection computed",
		zap.String("fingerprint", fp[:12]),
		zap.Int("items", len(items)),
		zap.Int("iterations", iterations),
		zap.Duration("elapsed", time.Since(start)))

	return points, nil
}
