package preview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/silkyrich/dexguide-edge/internal/config"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
)

// Fetcher is the slice of the entity data client the composer needs.
type Fetcher interface {
	Fetch(ctx context.Context, id int) *pokeapi.Record
	ArtworkURL(id int) string
}

// Composer builds presentation descriptors from route intents. Unresolved
// entities always degrade to generic text, never to an error.
type Composer struct {
	fetcher       Fetcher
	siteName      string
	siteURL       string
	defaultDesc   string
	ogImageSource config.OGImageSource
}

// NewComposer creates a Composer bound to the site identity.
func NewComposer(fetcher Fetcher, site config.SiteConfig) *Composer {
	return &Composer{
		fetcher:       fetcher,
		siteName:      site.Name,
		siteURL:       site.URL,
		defaultDesc:   site.DefaultDescription,
		ogImageSource: config.OGImageSource(site.OGImageSource),
	}
}

// Pokemon composes the detail-page descriptor for one entity. The
// resolved record is returned alongside so callers can attach it to
// analytics; it is nil when the entity is unknown and the descriptor
// carries the generic fallback.
func (c *Composer) Pokemon(ctx context.Context, id int) (Descriptor, *pokeapi.Record) {
	canonical := fmt.Sprintf("%s/pokemon/%d", c.siteURL, id)
	rec := c.fetcher.Fetch(ctx, id)
	if rec == nil {
		return Descriptor{
			Title:        fmt.Sprintf("Pokemon #%s — %s", pokeapi.PadID(id), c.siteName),
			Description:  c.defaultDesc,
			Image:        c.fetcher.ArtworkURL(id),
			CanonicalURL: canonical,
			Card:         CardSummary,
		}, nil
	}

	image := fmt.Sprintf("%s/og/pokemon/%d.png", c.siteURL, rec.ID)
	if c.ogImageSource == config.OGImageArtwork {
		image = c.fetcher.ArtworkURL(rec.ID)
	}

	return Descriptor{
		Title:        fmt.Sprintf("%s #%s — %s", rec.DisplayName, pokeapi.PadID(rec.ID), c.siteName),
		Description:  c.describe(rec),
		Image:        image,
		CanonicalURL: canonical,
		Card:         CardSummary,
		PlayerURL:    fmt.Sprintf("%s/embed/pokemon/%d", c.siteURL, rec.ID),
		PlayerWidth:  520,
		PlayerHeight: 730,
	}, rec
}

// describe leads with the Pokedex flavor text when available and falls
// back to a compact stat summary.
func (c *Composer) describe(rec *pokeapi.Record) string {
	typeStr := joinTypes(rec.Types)
	if rec.FlavorText != "" {
		genusLine := ""
		if rec.Genus != "" {
			genusLine = fmt.Sprintf("The %s. ", rec.Genus)
		}
		return fmt.Sprintf("%s%s — %s type, BST %d.", genusLine, rec.FlavorText, typeStr, rec.BST())
	}
	return fmt.Sprintf("%s type · BST %d · %sm · %skg. Stats, moves, matchups, and more on %s.",
		typeStr, rec.BST(), rec.HeightMeters(), rec.WeightKilograms(), c.siteName)
}

// Battle composes the head-to-head descriptor. Both entities are resolved
// concurrently; either may come back nil and be shown as a padded-id
// placeholder.
func (c *Composer) Battle(ctx context.Context, id1, id2 int) Descriptor {
	var rec1, rec2 *pokeapi.Record
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rec1 = c.fetcher.Fetch(ctx, id1)
	}()
	go func() {
		defer wg.Done()
		rec2 = c.fetcher.Fetch(ctx, id2)
	}()
	wg.Wait()

	name1 := "#" + pokeapi.PadID(id1)
	if rec1 != nil {
		name1 = rec1.DisplayName
	}
	name2 := "#" + pokeapi.PadID(id2)
	if rec2 != nil {
		name2 = rec2.DisplayName
	}

	return Descriptor{
		Title: fmt.Sprintf("%s vs %s — Head to Head — %s", name1, name2, c.siteName),
		Description: fmt.Sprintf(
			"Compare %s and %s head to head. Type matchups, base stats, moves, and matchup analysis.",
			name1, name2),
		Image:        c.fetcher.ArtworkURL(id1),
		CanonicalURL: fmt.Sprintf("%s/battle/%d/%d", c.siteURL, id1, id2),
		Card:         CardSummary,
	}
}

// TypeMatchup composes the category matchup descriptor. No entity fetch is
// involved; the category names come straight from the path.
func (c *Composer) TypeMatchup(attacking, defending string) Descriptor {
	atkName := pokeapi.FormatName(attacking)
	defName := pokeapi.FormatName(defending)
	return Descriptor{
		Title: fmt.Sprintf("%s vs %s — Type Matchup — %s", atkName, defName, c.siteName),
		Description: fmt.Sprintf(
			"See how %s type attacks fare against %s type defenders. Effectiveness multipliers and analysis.",
			atkName, defName),
		Image:        c.defaultImage(),
		CanonicalURL: fmt.Sprintf("%s/types/%s/vs/%s", c.siteURL, attacking, defending),
		Card:         CardSummary,
	}
}

// Generic composes the site-wide fallback descriptor for unknown paths.
func (c *Composer) Generic(path string) Descriptor {
	return Descriptor{
		Title:        c.siteName,
		Description:  c.defaultDesc,
		Image:        c.defaultImage(),
		CanonicalURL: c.siteURL + path,
		Card:         CardSummary,
	}
}

// defaultImage is the Pikachu artwork, the site-wide fallback image.
func (c *Composer) defaultImage() string {
	return c.fetcher.ArtworkURL(25)
}

func joinTypes(types []string) string {
	return strings.Join(types, " / ")
}
