package card

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
)

func testRecord() *pokeapi.Record {
	return &pokeapi.Record{
		ID:          25,
		DisplayName: "Pikachu",
		Genus:       "Mouse Pokémon",
		Types:       []string{"Electric"},
		Height:      4,
		Weight:      60,
		Stats: map[string]int{
			"hp": 35, "attack": 55, "defense": 40,
			"special-attack": 50, "special-defense": 50, "speed": 90,
		},
	}
}

func testArtwork(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	fonts, err := LoadFonts("", "")
	require.NoError(t, err)
	return NewRenderer(fonts, "DexGuide", "dexguide.gg")
}

func TestRenderer_ProducesCardSizedPNG(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	out, err := r.Render(testRecord(), testArtwork(t))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, Width, img.Bounds().Dx())
	require.Equal(t, Height, img.Bounds().Dy())
}

func TestRenderer_DeterministicForSameInput(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	artwork := testArtwork(t)

	first, err := r.Render(testRecord(), artwork)
	require.NoError(t, err)
	second, err := r.Render(testRecord(), artwork)
	require.NoError(t, err)
	require.Equal(t, first, second, "identical input must rasterize to identical bytes")
}

func TestRenderer_NilArtwork(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	out, err := r.Render(testRecord(), nil)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
}

func TestRenderer_BadArtworkBytes(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	_, err := r.Render(testRecord(), []byte("definitely not an image"))
	require.Error(t, err)
}

func TestRenderer_DualTypeAndExtremeStats(t *testing.T) {
	t.Parallel()

	rec := testRecord()
	rec.Types = []string{"Water", "Flying"}
	rec.Stats["attack"] = 400
	rec.Stats["hp"] = 0

	r := newTestRenderer(t)
	out, err := r.Render(rec, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestMustHex(t *testing.T) {
	t.Parallel()

	require.Equal(t, color.RGBA{R: 0xF0, G: 0x80, B: 0x30, A: 255}, mustHex("#F08030"))
	require.Equal(t, color.Black, mustHex("not-a-color"))
}
