package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/groupfit/pkg/cache"
	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// fitEntry is the cached form of a fit result.
type fitEntry struct {
	Diagram canvas.Diagram `json:"diagram"`
	Fitted  int            `json:"fitted"`
}

// Execute runs validate → fit → render on d.
func (r *Runner) Execute(ctx context.Context, d canvas.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.GroupCount = d.GroupCount()
	if h, err := cache.HashJSON(d); err == nil {
		result.DiagramHash = h
	}

	// Stage 1: Fit
	fitted := d
	if !opts.SkipFit {
		fitStart := time.Now()
		out, n, hit, err := r.FitWithCacheInfo(ctx, d, opts)
		if err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
		fitted = out
		result.Stats.FittedGroups = n
		result.Stats.FitTime = time.Since(fitStart)
		result.CacheInfo.FitHit = hit

		r.Logger.Info("fitted groups",
			"groups", result.Stats.GroupCount,
			"fitted", n,
			"cached", hit,
			"duration", result.Stats.FitTime)
	}
	result.Diagram = fitted

	// Stage 2: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, fitted, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// FitWithCacheInfo runs the fit stage with caching. It returns the fitted
// diagram, the number of resized groups and whether the result came from
// cache.
func (r *Runner) FitWithCacheInfo(ctx context.Context, d canvas.Diagram, opts Options) (canvas.Diagram, int, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return canvas.Diagram{}, 0, false, err
	}

	// Diagrams that cannot be encoded (NaN coordinates) are fitted uncached.
	cacheKey := ""
	if hash, err := cache.HashJSON(d); err == nil {
		cacheKey = r.Keyer.FitKey(hash, opts.FitKeyOpts())
	}

	if cacheKey != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var entry fitEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				return entry.Diagram, entry.Fitted, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnFitStart(ctx, len(d.Nodes), d.GroupCount())
	start := time.Now()
	out, n, err := FitDiagram(d, opts)
	hooks.OnFitComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return canvas.Diagram{}, 0, false, err
	}

	if cacheKey == "" {
		return out, n, false, nil
	}
	if data, err := json.Marshal(fitEntry{Diagram: out, Fitted: n}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		}
	}
	return out, n, false, nil
}

// Fit is FitWithCacheInfo without the counts.
func (r *Runner) Fit(ctx context.Context, d canvas.Diagram, opts Options) (canvas.Diagram, error) {
	out, _, _, err := r.FitWithCacheInfo(ctx, d, opts)
	return out, err
}

// RenderWithCacheInfo renders every format in opts.Formats with caching and
// reports whether all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d canvas.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hash, err := cache.HashJSON(d)
	if err != nil {
		r.Logger.Debug("diagram not hashable, rendering uncached", "error", err)
		return r.renderUncached(ctx, d, opts)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderDiagram(ctx, d, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return artifacts, false, nil
}

func (r *Runner) renderUncached(ctx context.Context, d canvas.Diagram, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	out, err := RenderDiagram(ctx, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return out, false, err
}

// Render is RenderWithCacheInfo without the cache flag.
func (r *Runner) Render(ctx context.Context, d canvas.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
