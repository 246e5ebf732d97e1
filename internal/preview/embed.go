package preview

import (
	"fmt"
	"strings"

	"github.com/silkyrich/dexguide-edge/internal/card"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
)

// ArtworkURLs resolves artwork image URLs for the embed card.
type ArtworkURLs interface {
	ArtworkURL(id int) string
	ShinyArtworkURL(id int) string
}

// EmbedRenderer produces the self-contained interactive card page served
// on the embed route, used as a Twitter player card.
type EmbedRenderer struct {
	siteURL string
	artwork ArtworkURLs
}

// NewEmbedRenderer creates an EmbedRenderer.
func NewEmbedRenderer(siteURL string, artwork ArtworkURLs) *EmbedRenderer {
	return &EmbedRenderer{siteURL: siteURL, artwork: artwork}
}

// Render serializes the styled card for one entity. The shiny flag swaps
// in the shiny artwork variant.
func (r *EmbedRenderer) Render(rec *pokeapi.Record, shiny bool) []byte {
	primary := "#777"
	if len(rec.Types) > 0 {
		primary = card.ColorFor(rec.Types[0]).Base
	}
	artworkURL := r.artwork.ArtworkURL(rec.ID)
	if shiny {
		artworkURL = r.artwork.ShinyArtworkURL(rec.ID)
	}

	var types strings.Builder
	for _, t := range rec.Types {
		fmt.Fprintf(&types,
			`<a href="%s/?type=%s" target="_top" class="type" style="background: %s">%s</a>`,
			escape(r.siteURL), escape(strings.ToLower(t)), card.ColorFor(t).Base, escape(t))
	}

	var abilities strings.Builder
	for _, a := range rec.Abilities {
		fmt.Fprintf(&abilities, `<div class="ability">%s</div>`, escape(a))
	}
	if rec.HiddenAbility != "" {
		fmt.Fprintf(&abilities, `<div class="ability">%s (Hidden)</div>`, escape(rec.HiddenAbility))
	}

	statRow := func(label, key string) string {
		value := rec.Stats[key]
		pct := float64(value) / 255 * 100
		if pct > 100 {
			pct = 100
		}
		return fmt.Sprintf(`
        <div class="stat">
          <span class="stat-name">%s</span>
          <div class="stat-bar"><div class="stat-fill" style="width: %.1f%%"></div></div>
          <span class="stat-value">%d</span>
        </div>`, label, pct, value)
	}

	doc := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s - Pokémon Card</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: 'Gill Sans', 'Gill Sans MT', Calibri, sans-serif;
      background: #2a2a2a;
      padding: 12px;
    }
    .card {
      background: linear-gradient(135deg, #f4e5a8 0%%, #e8d284 100%%);
      border-radius: 16px;
      padding: 6px;
      box-shadow: 0 8px 24px rgba(0,0,0,0.4);
    }
    .card-inner { background: #f5f0e8; border-radius: 12px; padding: 16px; }
    .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 8px; }
    .name { font-size: 28px; font-weight: bold; color: #333; }
    .hp { display: flex; align-items: center; gap: 4px; font-size: 24px; font-weight: bold; color: #d32f2f; }
    .stage { font-size: 12px; color: #666; margin-bottom: 10px; }
    .types { display: flex; gap: 6px; margin-bottom: 10px; }
    .type {
      padding: 4px 10px; border-radius: 10px; color: white; font-size: 11px;
      font-weight: bold; text-transform: uppercase; text-decoration: none; display: inline-block;
    }
    .artwork {
      background: linear-gradient(135deg, %[2]s20, %[2]s10);
      border: 2px solid %[2]s40;
      border-radius: 10px; padding: 12px; margin-bottom: 10px; text-align: center;
      height: 240px; display: flex; align-items: center; justify-content: center;
    }
    .artwork img { max-width: 90%%; max-height: 90%%; filter: drop-shadow(0 4px 8px rgba(0,0,0,0.15)); }
    .stats { background: white; border: 2px solid #ddd; border-radius: 8px; padding: 10px; margin-bottom: 8px; }
    .stat { display: flex; align-items: center; padding: 4px 0; gap: 8px; }
    .stat-name { font-size: 11px; font-weight: bold; color: #555; min-width: 40px; }
    .stat-bar { flex: 1; height: 5px; background: #eee; border-radius: 3px; overflow: hidden; }
    .stat-fill { height: 100%%; background: %[2]s; }
    .stat-value { font-size: 16px; font-weight: bold; color: %[2]s; min-width: 35px; text-align: right; }
    .abilities { background: white; border: 2px solid #ddd; border-radius: 8px; padding: 10px; margin-bottom: 8px; }
    .abilities-title { font-size: 10px; font-weight: bold; color: #999; text-transform: uppercase; margin-bottom: 6px; }
    .ability {
      font-size: 11px; color: #333; font-weight: 600; padding: 5px 8px;
      background: %[2]s15; border-left: 3px solid %[2]s; border-radius: 3px; margin-bottom: 4px;
    }
    .ability:last-child { margin-bottom: 0; }
    .footer { display: flex; justify-content: space-between; font-size: 10px; color: #666; padding-top: 6px; }
    .footer span { font-weight: 600; }
    .buttons { display: flex; gap: 6px; margin-top: 10px; }
    .btn {
      flex: 1; padding: 10px; background: %[2]s; color: white; text-decoration: none;
      text-align: center; border-radius: 6px; font-size: 12px; font-weight: bold; display: block;
    }
    .btn.secondary { background: white; color: %[2]s; border: 2px solid %[2]s; }
  </style>
</head>
<body>
  <div class="card">
    <div class="card-inner">
      <div class="header">
        <div class="name">%[1]s</div>
        <div class="hp"><span style="font-size:18px">HP</span> %[3]d</div>
      </div>

      <div class="stage">Basic Pokémon</div>

      <div class="types">%[4]s</div>

      <div class="artwork">
        <img src="%[5]s" alt="%[1]s">
      </div>

      <div class="stats">%[6]s
      </div>

      <div class="abilities">
        <div class="abilities-title">Abilities</div>
        %[7]s
      </div>

      <div class="footer">
        <span>#%[8]s</span>
        <span>%[9]sm • %[10]skg • BST %[11]d</span>
      </div>

      <div class="buttons">
        <a href="%[12]s/pokemon/%[13]d" class="btn" target="_top">View Details</a>
        <a href="%[12]s/team-builder?add=%[13]d" class="btn secondary" target="_top">Add to Team</a>
      </div>
    </div>
  </div>
</body>
</html>
`,
		escape(rec.DisplayName),
		primary,
		rec.Stats["hp"],
		types.String(),
		escape(artworkURL),
		statRow("ATK", "attack")+statRow("DEF", "defense")+statRow("SPD", "speed"),
		abilities.String(),
		pokeapi.PadID(rec.ID),
		rec.HeightMeters(),
		rec.WeightKilograms(),
		rec.BST(),
		escape(r.siteURL),
		rec.ID,
	)

	return []byte(doc)
}
