// Package edge implements the request interceptor that sits in front of
// the static site. It classifies agents, resolves routes, and renders
// preview responses for crawlers; every other request is forwarded to the
// next handler untouched.
package edge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/silkyrich/dexguide-edge/internal/agent"
	"github.com/silkyrich/dexguide-edge/internal/analytics"
	"github.com/silkyrich/dexguide-edge/internal/metrics"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
	"github.com/silkyrich/dexguide-edge/internal/preview"
	"github.com/silkyrich/dexguide-edge/internal/routes"
	"github.com/silkyrich/dexguide-edge/internal/storage"
)

// EntityClient is the slice of the upstream data client the interceptor
// uses directly.
type EntityClient interface {
	Fetch(ctx context.Context, id int) *pokeapi.Record
	Artwork(ctx context.Context, id int) ([]byte, bool)
	ArtworkURL(id int) string
	ShinyArtworkURL(id int) string
}

// CardRenderer rasterizes a record into PNG bytes.
type CardRenderer interface {
	Render(rec *pokeapi.Record, artwork []byte) ([]byte, error)
}

// Emitter is the analytics surface the interceptor fires events into.
type Emitter interface {
	Emit(r *http.Request, name string, fields map[string]any)
}

// Interceptor is the dispatcher: an http.Handler wrapping the next
// collaborator in the chain (the static asset host).
type Interceptor struct {
	next     http.Handler
	client   EntityClient
	composer *preview.Composer
	html     *preview.HTMLRenderer
	embed    *preview.EmbedRenderer
	cards    CardRenderer
	images   storage.Store
	emitter  Emitter
	logger   *zap.Logger

	htmlMaxAge  int
	imageMaxAge int
	// storeTimeout bounds the detached image cache write.
	storeTimeout time.Duration
}

// Options bundles the interceptor's collaborators.
type Options struct {
	Next        http.Handler
	Client      EntityClient
	Composer    *preview.Composer
	HTML        *preview.HTMLRenderer
	Embed       *preview.EmbedRenderer
	Cards       CardRenderer
	Images      storage.Store
	Emitter     Emitter
	Logger      *zap.Logger
	HTMLMaxAge  int
	ImageMaxAge int
}

// New creates an Interceptor.
func New(opts Options) *Interceptor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	images := opts.Images
	if images == nil {
		images = storage.NoOpStore{}
	}
	htmlMaxAge := opts.HTMLMaxAge
	if htmlMaxAge <= 0 {
		htmlMaxAge = 3600
	}
	imageMaxAge := opts.ImageMaxAge
	if imageMaxAge <= 0 {
		imageMaxAge = 604800
	}
	return &Interceptor{
		next:         opts.Next,
		client:       opts.Client,
		composer:     opts.Composer,
		html:         opts.HTML,
		embed:        opts.Embed,
		cards:        opts.Cards,
		images:       images,
		emitter:      opts.Emitter,
		logger:       logger,
		htmlMaxAge:   htmlMaxAge,
		imageMaxAge:  imageMaxAge,
		storeTimeout: 30 * time.Second,
	}
}

// ServeHTTP dispatches one request. Image card and embed routes are served
// to every caller; they are addressed directly by URLs embedded in
// previously rendered previews, never navigated by humans through the UI.
func (i *Interceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	intent := routes.Resolve(r.Method, r.URL.Path)

	switch intent.Kind {
	case routes.KindPassThrough:
		i.next.ServeHTTP(w, r)
	case routes.KindImageCard:
		i.serveCard(w, r, intent.ID)
	case routes.KindEmbed:
		i.serveEmbed(w, r, intent.ID)
	default:
		if !agent.IsCrawler(r.Header) {
			metrics.ObserveRequest(kindName(intent.Kind), "pass_through")
			i.next.ServeHTTP(w, r)
			return
		}
		i.emitter.Emit(r, analytics.EventCrawlerRequest, map[string]any{"path": r.URL.Path})
		i.servePreview(w, r, intent)
	}
}

// serveCard handles the image-card route: image cache first, then fetch,
// render, respond, and store the bytes off the response path.
func (i *Interceptor) serveCard(w http.ResponseWriter, r *http.Request, id int) {
	key := r.URL.RequestURI()

	data, ok, err := i.images.Get(r.Context(), key)
	if err != nil {
		i.logger.Warn("image cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	metrics.ObserveCacheLookup("image", ok)
	if ok {
		metrics.ObserveRequest("image_card", "cache_hit")
		i.writePNG(w, data)
		return
	}

	rec := i.client.Fetch(r.Context(), id)
	if rec == nil {
		metrics.ObserveRequest("image_card", "not_found")
		http.Error(w, "Pokemon not found", http.StatusNotFound)
		return
	}

	i.emitter.Emit(r, analytics.EventImageGenerate, map[string]any{
		"pokemon_id":   id,
		"pokemon_name": rec.DisplayName,
	})

	artwork, _ := i.client.Artwork(r.Context(), id)
	png, err := i.cards.Render(rec, artwork)
	if err != nil {
		metrics.ObserveRequest("image_card", "render_error")
		i.logger.Error("card render failed", zap.Int("id", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	metrics.ObserveRequest("image_card", "rendered")
	i.writePNG(w, png)

	// Detached store of the completed bytes; a torn-down process just
	// means a future cache miss.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), i.storeTimeout)
		defer cancel()
		if err := i.images.Put(ctx, key, png); err != nil {
			i.logger.Warn("image cache store failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

// serveEmbed handles the interactive player-card route.
func (i *Interceptor) serveEmbed(w http.ResponseWriter, r *http.Request, id int) {
	rec := i.client.Fetch(r.Context(), id)
	if rec == nil {
		metrics.ObserveRequest("embed", "not_found")
		http.Error(w, "Pokemon not found", http.StatusNotFound)
		return
	}

	i.emitter.Emit(r, analytics.EventEmbedView, map[string]any{
		"pokemon_id":   id,
		"pokemon_name": rec.DisplayName,
	})

	shiny := strings.EqualFold(r.URL.Query().Get("shiny"), "true")
	body := i.embed.Render(rec, shiny)

	metrics.ObserveRequest("embed", "rendered")
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", i.htmlMaxAge))
	w.Header().Set("X-Frame-Options", "ALLOW-FROM https://twitter.com")
	_, _ = w.Write(body)
}

// servePreview renders the crawler-facing HTML for the remaining intents.
// Upstream failures never surface as error statuses here; the composer
// substitutes generic fallbacks.
func (i *Interceptor) servePreview(w http.ResponseWriter, r *http.Request, intent routes.Intent) {
	var d preview.Descriptor
	switch intent.Kind {
	case routes.KindDetail:
		var rec *pokeapi.Record
		d, rec = i.composer.Pokemon(r.Context(), intent.ID)
		if rec == nil {
			i.emitter.Emit(r, analytics.EventCard404, map[string]any{"pokemon_id": intent.ID})
		} else {
			i.emitter.Emit(r, analytics.EventCardView, map[string]any{
				"pokemon_id":   rec.ID,
				"pokemon_name": rec.DisplayName,
				"types":        strings.Join(rec.Types, ","),
				"bst":          rec.BST(),
			})
		}
	case routes.KindBattle:
		d = i.composer.Battle(r.Context(), intent.ID, intent.SecondID)
	case routes.KindTypeMatchup:
		d = i.composer.TypeMatchup(intent.Attacking, intent.Defending)
	default:
		d = i.composer.Generic(intent.Path)
	}

	metrics.ObserveRequest(kindName(intent.Kind), "rendered")
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", i.htmlMaxAge))
	_, _ = w.Write(i.html.Render(d))
}

func (i *Interceptor) writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", i.imageMaxAge))
	_, _ = w.Write(data)
}

func kindName(k routes.Kind) string {
	switch k {
	case routes.KindImageCard:
		return "image_card"
	case routes.KindEmbed:
		return "embed"
	case routes.KindDetail:
		return "detail"
	case routes.KindBattle:
		return "battle"
	case routes.KindTypeMatchup:
		return "type_matchup"
	case routes.KindUnknown:
		return "unknown"
	default:
		return "pass_through"
	}
}
