// Package card rasterizes fixed-size PNG preview cards for entities. The
// layout is deterministic for identical input, which the rendered-image
// cache tier relies on.
package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"github.com/silkyrich/dexguide-edge/internal/metrics"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
)

// Canvas size for general link previews.
const (
	Width  = 1200
	Height = 630
)

const (
	leftPad   = 56
	statBarW  = 244
	statMax   = 255
	brandBarH = 40
)

// Renderer composes entity records into 1200x630 PNG cards.
type Renderer struct {
	fonts    *FontSet
	siteName string
	siteHost string
}

// NewRenderer creates a Renderer. The FontSet must outlive the renderer;
// faces are derived from it per composition.
func NewRenderer(fonts *FontSet, siteName, siteHost string) *Renderer {
	return &Renderer{fonts: fonts, siteName: siteName, siteHost: siteHost}
}

// Render rasterizes one card. The artwork bytes are optional: a nil slice
// leaves the artwork pane empty rather than failing the render. Errors are
// fatal for the request (there is no per-request recovery from a broken
// rasterizer).
func (r *Renderer) Render(rec *pokeapi.Record, artwork []byte) ([]byte, error) {
	start := time.Now()

	primaryName := "normal"
	if len(rec.Types) > 0 {
		primaryName = rec.Types[0]
	}
	primary := ColorFor(primaryName)
	secondary := primary
	if len(rec.Types) > 1 {
		secondary = ColorFor(rec.Types[1])
	}

	dc := gg.NewContext(Width, Height)

	r.drawBackground(dc, primary, secondary)
	r.drawWatermark(dc)
	r.drawInfoColumn(dc, rec)
	if artwork != nil {
		if err := r.drawArtwork(dc, artwork); err != nil {
			return nil, err
		}
	}
	r.drawBrandingBar(dc)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	metrics.ObserveCardRender(time.Since(start))
	return buf.Bytes(), nil
}

// drawBackground paints the full-bleed diagonal gradient from the primary
// base through the secondary base into the primary dark shade.
func (r *Renderer) drawBackground(dc *gg.Context, primary, secondary TypeColor) {
	grad := gg.NewLinearGradient(0, 0, Width, Height)
	grad.AddColorStop(0, mustHex(primary.Base))
	grad.AddColorStop(0.5, mustHex(secondary.Base))
	grad.AddColorStop(1, mustHex(primary.Dark))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, Width, Height)
	dc.Fill()
}

// drawWatermark strokes the two concentric pokeball rings in the top
// right corner.
func (r *Renderer) drawWatermark(dc *gg.Context) {
	dc.SetRGBA(1, 1, 1, 0.06)
	dc.SetLineWidth(40)
	dc.DrawCircle(1080, 120, 200)
	dc.Stroke()
	dc.SetLineWidth(20)
	dc.DrawCircle(1080, 120, 40)
	dc.Stroke()
}

// drawInfoColumn stacks id, name, genus, type badges, stat bars, and the
// totals row down the left side.
func (r *Renderer) drawInfoColumn(dc *gg.Context, rec *pokeapi.Record) {
	y := 96.0

	dc.SetFontFace(r.fonts.Face(true, 22))
	dc.SetRGBA(1, 1, 1, 0.5)
	dc.DrawString("#"+pokeapi.PadID(rec.ID), leftPad, y)

	y += 62
	dc.SetFontFace(r.fonts.Face(true, 64))
	dc.SetRGB(1, 1, 1)
	dc.DrawString(rec.DisplayName, leftPad, y)

	if rec.Genus != "" {
		y += 36
		dc.SetFontFace(r.fonts.Face(false, 20))
		dc.SetRGBA(1, 1, 1, 0.7)
		dc.DrawString(rec.Genus, leftPad, y)
	}

	y += 28
	y = r.drawTypeBadges(dc, rec.Types, y)

	y += 28
	for _, key := range pokeapi.StatKeys {
		r.drawStatBar(dc, pokeapi.StatLabels[key], rec.Stats[key], y)
		y += 30
	}

	y += 8
	dc.SetFontFace(r.fonts.Face(false, 15))
	dc.SetRGBA(1, 1, 1, 0.5)
	totals := fmt.Sprintf("BST %d    %sm    %skg", rec.BST(), rec.HeightMeters(), rec.WeightKilograms())
	dc.DrawString(totals, leftPad, y)
}

// drawTypeBadges draws a row of rounded, per-type colored badges and
// returns the y cursor below them.
func (r *Renderer) drawTypeBadges(dc *gg.Context, types []string, y float64) float64 {
	const badgeH = 36
	x := float64(leftPad)
	face := r.fonts.Face(true, 18)
	dc.SetFontFace(face)
	for _, t := range types {
		label := strings.ToUpper(t)
		w, _ := dc.MeasureString(label)
		badgeW := w + 36

		dc.SetColor(mustHex(ColorFor(t).Base))
		dc.DrawRoundedRectangle(x, y, badgeW, badgeH, badgeH/2)
		dc.Fill()
		dc.SetRGBA(1, 1, 1, 0.4)
		dc.SetLineWidth(2)
		dc.DrawRoundedRectangle(x, y, badgeW, badgeH, badgeH/2)
		dc.Stroke()

		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(label, x+badgeW/2, y+badgeH/2, 0.5, 0.35)
		x += badgeW + 10
	}
	return y + badgeH
}

// drawStatBar draws one label / proportional fill / readout row. Fill is
// value/255 clamped to the full bar width.
func (r *Renderer) drawStatBar(dc *gg.Context, label string, value int, y float64) {
	const barH = 8
	labelX := float64(leftPad + 36)
	barX := labelX + 12
	barY := y - barH + 2

	dc.SetFontFace(r.fonts.Face(false, 16))
	dc.SetRGBA(1, 1, 1, 0.7)
	dc.DrawStringAnchored(label, labelX, y, 1, 0)

	frac := float64(value) / statMax
	if frac > 1 {
		frac = 1
	}

	dc.SetRGBA(0, 0, 0, 0.3)
	dc.DrawRoundedRectangle(barX, barY, statBarW, barH, barH/2)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	if frac > 0 {
		dc.DrawRoundedRectangle(barX, barY, statBarW*frac, barH, barH/2)
		dc.Fill()
	}

	dc.SetFontFace(r.fonts.Face(true, 18))
	dc.DrawString(fmt.Sprintf("%d", value), barX+statBarW+12, y)
}

// drawArtwork decodes and centers the artwork in the right column,
// preserving aspect ratio inside a 400x400 box.
func (r *Renderer) drawArtwork(dc *gg.Context, artwork []byte) error {
	img, _, err := image.Decode(bytes.NewReader(artwork))
	if err != nil {
		return fmt.Errorf("decode artwork: %w", err)
	}
	const box = 400.0
	cx, cy := 960.0, (Height-brandBarH)/2.0

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return nil
	}
	scale := box / w
	if s := box / h; s < scale {
		scale = s
	}

	dc.Push()
	dc.Translate(cx-w*scale/2, cy-h*scale/2)
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
	return nil
}

// drawBrandingBar paints the translucent footer with the site name and
// host.
func (r *Renderer) drawBrandingBar(dc *gg.Context) {
	dc.SetRGBA(0, 0, 0, 0.3)
	dc.DrawRectangle(0, Height-brandBarH, Width, brandBarH)
	dc.Fill()

	dc.SetFontFace(r.fonts.Face(true, 16))
	dc.SetRGBA(1, 1, 1, 0.6)
	dc.DrawStringAnchored(r.siteName, leftPad, Height-brandBarH/2, 0, 0.35)

	dc.SetFontFace(r.fonts.Face(false, 14))
	dc.SetRGBA(1, 1, 1, 0.4)
	dc.DrawStringAnchored(r.siteHost, Width-leftPad, Height-brandBarH/2, 1, 0.35)
}

// mustHex parses a #RRGGBB string. The color table is static, so a bad
// value is a programming error; it degrades to black rather than
// panicking.
func mustHex(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
