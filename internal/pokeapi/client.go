// Package pokeapi fetches and normalizes entity data from the upstream
// read-only API, applying the upstream-data cache tier. The upstream data
// is effectively immutable per id, so the cache is authoritative for the
// full response regardless of normal cache-control semantics.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/silkyrich/dexguide-edge/internal/cache"
	"github.com/silkyrich/dexguide-edge/internal/metrics"
)

// Client fetches entity and species resources with caching and rate
// limiting. All failure modes degrade to nil records, never errors, so
// callers can substitute generic fallbacks.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	artworkBaseURL string
	cache          *cache.Cache
	ttl            time.Duration
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	ArtworkBaseURL string
	Timeout        time.Duration
	TTL            time.Duration
	// RequestsPerMinute bounds upstream load; zero disables limiting.
	RequestsPerMinute int
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// NewClient creates a Client over the given cache tier.
func NewClient(opts Options, c *cache.Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), opts.RequestsPerMinute)
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        opts.BaseURL,
		artworkBaseURL: opts.ArtworkBaseURL,
		cache:          c,
		ttl:            opts.TTL,
		limiter:        limiter,
		logger:         logger,
	}
}

// Fetch resolves an entity by id. A nil return means "unknown entity":
// network errors, non-2xx responses, and malformed payloads all collapse
// to nil rather than propagating. Species data failures are absorbed and
// leave the species-dependent fields empty.
func (c *Client) Fetch(ctx context.Context, id int) *Record {
	body, err := c.getCached(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), "pokemon")
	if err != nil {
		c.logger.Debug("entity fetch failed", zap.Int("id", id), zap.Error(err))
		return nil
	}

	var p pokemonPayload
	if err := json.Unmarshal(body, &p); err != nil {
		c.logger.Debug("entity payload malformed", zap.Int("id", id), zap.Error(err))
		return nil
	}

	rec := &Record{
		ID:          p.ID,
		DisplayName: FormatName(p.Name),
		Height:      p.Height,
		Weight:      p.Weight,
		Stats:       make(map[string]int, len(StatKeys)),
	}
	for _, t := range p.Types {
		rec.Types = append(rec.Types, FormatName(t.Type.Name))
	}
	for _, key := range StatKeys {
		rec.Stats[key] = 0
	}
	for _, s := range p.Stats {
		if _, ok := rec.Stats[s.Stat.Name]; ok {
			rec.Stats[s.Stat.Name] = s.BaseStat
		}
	}
	for _, a := range p.Abilities {
		if a.IsHidden {
			if rec.HiddenAbility == "" {
				rec.HiddenAbility = FormatName(a.Ability.Name)
			}
			continue
		}
		rec.Abilities = append(rec.Abilities, FormatName(a.Ability.Name))
	}

	c.mergeSpecies(ctx, p.Species.URL, rec)
	return rec
}

// mergeSpecies overlays localized name, genus, and flavor text onto rec.
// Any failure leaves the primary record untouched.
func (c *Client) mergeSpecies(ctx context.Context, url string, rec *Record) {
	if url == "" {
		return
	}
	body, err := c.getCached(ctx, url, "species")
	if err != nil {
		c.logger.Debug("species fetch failed", zap.Int("id", rec.ID), zap.Error(err))
		return
	}
	var sp speciesPayload
	if err := json.Unmarshal(body, &sp); err != nil {
		c.logger.Debug("species payload malformed", zap.Int("id", rec.ID), zap.Error(err))
		return
	}
	for _, n := range sp.Names {
		if n.Language.Name == "en" {
			rec.DisplayName = n.Name
			break
		}
	}
	for _, g := range sp.Genera {
		if g.Language.Name == "en" {
			rec.Genus = g.Genus
			break
		}
	}
	// The last English entry tracks the most recent game version.
	for _, f := range sp.FlavorTextEntries {
		if f.Language.Name == "en" {
			rec.FlavorText = normalizeFlavor(f.FlavorText)
		}
	}
}

// ArtworkURL returns the raw artwork URL for an entity id.
func (c *Client) ArtworkURL(id int) string {
	return fmt.Sprintf("%s/%d.png", c.artworkBaseURL, id)
}

// ShinyArtworkURL returns the shiny artwork variant URL.
func (c *Client) ShinyArtworkURL(id int) string {
	return fmt.Sprintf("%s/shiny/%d.png", c.artworkBaseURL, id)
}

// Artwork fetches artwork bytes through the upstream cache tier. The
// second return reports success; the card renderer omits the artwork pane
// on failure rather than failing the render.
func (c *Client) Artwork(ctx context.Context, id int) ([]byte, bool) {
	body, err := c.getCached(ctx, c.ArtworkURL(id), "artwork")
	if err != nil {
		c.logger.Debug("artwork fetch failed", zap.Int("id", id), zap.Error(err))
		return nil, false
	}
	return body, true
}

// getCached is the single fetch path: cache lookup, rate-limited GET,
// cache populate. It returns raw bytes so records are always rebuilt from
// the cached representation.
func (c *Client) getCached(ctx context.Context, url, resource string) ([]byte, error) {
	if data, ok := c.cache.Get(url); ok {
		metrics.ObserveCacheLookup("upstream", true)
		return data, nil
	}
	metrics.ObserveCacheLookup("upstream", false)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	metrics.ObserveUpstreamFetch(resource, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", resource, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", resource, err)
	}

	c.cache.Set(url, body, c.ttl)
	return body, nil
}
