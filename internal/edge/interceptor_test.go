package edge

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/silkyrich/dexguide-edge/internal/config"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
	"github.com/silkyrich/dexguide-edge/internal/preview"
	"github.com/silkyrich/dexguide-edge/internal/storage/memory"
)

const crawlerUA = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// fakeClient serves canned records and artwork; absent ids resolve to nil.
type fakeClient struct {
	mu         sync.Mutex
	records    map[int]*pokeapi.Record
	artwork    map[int][]byte
	fetchCalls int
}

func (f *fakeClient) Fetch(_ context.Context, id int) *pokeapi.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.records[id]
}

func (f *fakeClient) Artwork(_ context.Context, id int) ([]byte, bool) {
	data, ok := f.artwork[id]
	return data, ok
}

func (f *fakeClient) ArtworkURL(id int) string {
	return fmt.Sprintf("https://art.example/%d.png", id)
}

func (f *fakeClient) ShinyArtworkURL(id int) string {
	return fmt.Sprintf("https://art.example/shiny/%d.png", id)
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

// fakeCards returns fixed bytes per record and counts renders.
type fakeCards struct {
	mu      sync.Mutex
	renders int
	err     error
}

func (f *fakeCards) Render(rec *pokeapi.Record, _ []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + rec.DisplayName), nil
}

func (f *fakeCards) renderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders
}

type emitted struct {
	name   string
	fields map[string]any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) Emit(_ *http.Request, name string, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{name: name, fields: fields})
}

func (f *fakeEmitter) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.name
	}
	return out
}

// signalStore wraps the memory store and signals completed writes so tests
// can wait for the detached cache populate.
type signalStore struct {
	*memory.Store
	puts chan string
}

func (s *signalStore) Put(ctx context.Context, key string, data []byte) error {
	err := s.Store.Put(ctx, key, data)
	s.puts <- key
	return err
}

type fixture struct {
	interceptor *Interceptor
	client      *fakeClient
	cards       *fakeCards
	emitter     *fakeEmitter
	store       *signalStore
	nextHits    *int
}

func newFixture(records map[int]*pokeapi.Record) *fixture {
	client := &fakeClient{
		records: records,
		artwork: map[int][]byte{25: []byte("artwork-bytes")},
	}
	site := config.SiteConfig{
		Name:               "DexGuide",
		URL:                "https://dexguide.gg",
		DefaultDescription: "Stats, moves, and matchups for every Pokemon.",
		OGImageSource:      string(config.OGImageCard),
	}
	cards := &fakeCards{}
	emitter := &fakeEmitter{}
	store := &signalStore{Store: memory.New(time.Minute), puts: make(chan string, 8)}
	nextHits := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHits++
		fmt.Fprint(w, "static asset")
	})

	return &fixture{
		interceptor: New(Options{
			Next:     next,
			Client:   client,
			Composer: preview.NewComposer(client, site),
			HTML:     preview.NewHTMLRenderer(site.Name, 3),
			Embed:    preview.NewEmbedRenderer(site.URL, client),
			Cards:    cards,
			Images:   store,
			Emitter:  emitter,
		}),
		client:   client,
		cards:    cards,
		emitter:  emitter,
		store:    store,
		nextHits: &nextHits,
	}
}

func (f *fixture) get(path, ua string, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("User-Agent", ua)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.interceptor.ServeHTTP(w, r)
	return w
}

func parseDoc(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func ogContent(t *testing.T, doc *goquery.Document, property string) string {
	t.Helper()
	content, ok := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).Attr("content")
	require.True(t, ok, "missing %s", property)
	return content
}

func pikachu() *pokeapi.Record {
	return &pokeapi.Record{
		ID:          25,
		DisplayName: "Pikachu",
		Genus:       "Mouse Pokémon",
		FlavorText:  "It stores electricity in its cheek pouches.",
		Types:       []string{"Electric"},
		Height:      4,
		Weight:      60,
		Stats: map[string]int{
			"hp": 35, "attack": 55, "defense": 40,
			"special-attack": 50, "special-defense": 50, "speed": 90,
		},
	}
}

func TestInterceptor_CrawlerGetsDetailPreview(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	w := f.get("/pokemon/25", crawlerUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Pikachu #025 — DexGuide", ogContent(t, doc, "og:title"))
	require.Equal(t, "https://dexguide.gg/og/pokemon/25.png", ogContent(t, doc, "og:image"))
	require.Equal(t, "https://dexguide.gg/pokemon/25", ogContent(t, doc, "og:url"))

	require.Equal(t, []string{"crawler_request", "og_card_view"}, f.emitter.names())
	require.Zero(t, *f.nextHits)
}

func TestInterceptor_UnresolvedDetailFallsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/pokemon/9999", crawlerUA, nil)

	require.Equal(t, http.StatusOK, w.Code, "upstream failure never surfaces as an error status")

	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Pokemon #9999 — DexGuide", ogContent(t, doc, "og:title"))
	require.Equal(t, "Stats, moves, and matchups for every Pokemon.", ogContent(t, doc, "og:description"))
	require.Equal(t, "https://art.example/9999.png", ogContent(t, doc, "og:image"))

	require.Equal(t, []string{"crawler_request", "og_card_404"}, f.emitter.names())
}

func TestInterceptor_BattlePartialResolution(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{6: {ID: 6, DisplayName: "Charizard"}})
	w := f.get("/battle/6/9", crawlerUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Charizard vs #009 — Head to Head — DexGuide", ogContent(t, doc, "og:title"))
}

func TestInterceptor_TypeMatchupPreview(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/types/fire/vs/grass", crawlerUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Fire vs Grass — Type Matchup — DexGuide", ogContent(t, doc, "og:title"))
	require.Zero(t, f.client.fetchCount(), "matchup previews never hit the upstream")
}

func TestInterceptor_UnknownPathGenericPreview(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/team-builder", crawlerUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "DexGuide", ogContent(t, doc, "og:title"))
	require.Equal(t, "https://dexguide.gg/team-builder", ogContent(t, doc, "og:url"))
}

func TestInterceptor_BrowserPassesThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	w := f.get("/pokemon/25", browserUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "static asset", w.Body.String())
	require.Equal(t, 1, *f.nextHits)
	require.Zero(t, f.client.fetchCount())
	require.Empty(t, f.emitter.names())
}

func TestInterceptor_PreviewHeaderTreatedAsCrawler(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	w := f.get("/pokemon/25", browserUA, map[string]string{"Purpose": "preview"})

	require.Equal(t, http.StatusOK, w.Code)
	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Pikachu #025 — DexGuide", ogContent(t, doc, "og:title"))
	require.Zero(t, *f.nextHits)
}

func TestInterceptor_APIAlwaysPassesThrough(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/api/pokemon/25", crawlerUA, nil)

	require.Equal(t, "static asset", w.Body.String())
	require.Equal(t, 1, *f.nextHits)
	require.Empty(t, f.emitter.names())
}

func TestInterceptor_ImageCardRenderAndCache(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})

	first := f.get("/og/pokemon/25.png", browserUA, nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "image/png", first.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=604800", first.Header().Get("Cache-Control"))
	require.Equal(t, "png:Pikachu", first.Body.String())
	require.Equal(t, 1, f.cards.renderCount())

	select {
	case <-f.store.puts:
	case <-time.After(2 * time.Second):
		t.Fatal("rendered bytes were never stored")
	}
	fetchesAfterFirst := f.client.fetchCount()

	second := f.get("/og/pokemon/25.png", browserUA, nil)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, 1, f.cards.renderCount(), "cached bytes are served without re-rendering")
	require.Equal(t, fetchesAfterFirst, f.client.fetchCount())
}

func TestInterceptor_ImageCardNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/og/pokemon/9999.png", crawlerUA, nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Pokemon not found")

	_, ok, err := f.store.Get(context.Background(), "/og/pokemon/9999.png")
	require.NoError(t, err)
	require.False(t, ok, "misses never populate the image cache")
}

func TestInterceptor_ImageCardRenderError(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	f.cards.err = fmt.Errorf("rasterizer broken")

	w := f.get("/og/pokemon/25.png", browserUA, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestInterceptor_EmbedServedToBrowsers(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	w := f.get("/embed/pokemon/25", browserUA, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")

	doc := parseDoc(t, w.Body.Bytes())
	require.Equal(t, "Pikachu", doc.Find(".name").Text())
	src, _ := doc.Find(".artwork img").Attr("src")
	require.Equal(t, "https://art.example/25.png", src)
	require.Equal(t, []string{"embed_view"}, f.emitter.names())
}

func TestInterceptor_EmbedShinyVariant(t *testing.T) {
	t.Parallel()

	f := newFixture(map[int]*pokeapi.Record{25: pikachu()})
	w := f.get("/embed/pokemon/25?shiny=true", browserUA, nil)

	doc := parseDoc(t, w.Body.Bytes())
	src, _ := doc.Find(".artwork img").Attr("src")
	require.Equal(t, "https://art.example/shiny/25.png", src)
}

func TestInterceptor_EmbedNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	w := f.get("/embed/pokemon/9999", browserUA, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInterceptor_PostStaysUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	r := httptest.NewRequest(http.MethodPost, "/pokemon/25", nil)
	r.Header.Set("User-Agent", crawlerUA)
	w := httptest.NewRecorder()
	f.interceptor.ServeHTTP(w, r)

	require.Equal(t, "static asset", w.Body.String())
	require.Equal(t, 1, *f.nextHits)
}
