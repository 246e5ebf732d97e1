package pokeapi

import (
	"fmt"
	"strings"
)

// StatKeys is the fixed stat ordering used everywhere a record's stats are
// displayed. Upstream payloads are folded into exactly these six keys.
var StatKeys = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// StatLabels maps stat keys to the short labels used on rendered cards.
var StatLabels = map[string]string{
	"hp":              "HP",
	"attack":          "ATK",
	"defense":         "DEF",
	"special-attack":  "SPA",
	"special-defense": "SPD",
	"speed":           "SPE",
}

// Record is the resolved, display-ready view of one entity. It is built
// fresh per request from raw cached payloads and never mutated afterwards.
type Record struct {
	ID          int
	DisplayName string
	// Types preserves upstream order; the first entry drives primary
	// card theming.
	Types []string
	Stats map[string]int
	// Abilities holds non-hidden abilities in upstream order.
	Abilities     []string
	HiddenAbility string
	// Height is in decimeters, Weight in hectograms (upstream units).
	Height int
	Weight int
	Genus  string
	// FlavorText is whitespace-normalized; empty when species data was
	// unavailable.
	FlavorText string
}

// BST returns the base-stat total, derived from the stat map so it can
// never drift from the six stat values.
func (r *Record) BST() int {
	total := 0
	for _, v := range r.Stats {
		total += v
	}
	return total
}

// HeightMeters formats the height with one decimal.
func (r *Record) HeightMeters() string {
	return fmt.Sprintf("%.1f", float64(r.Height)/10)
}

// WeightKilograms formats the weight with one decimal.
func (r *Record) WeightKilograms() string {
	return fmt.Sprintf("%.1f", float64(r.Weight)/10)
}

// FormatName turns an upstream slug like "mr-mime" or "tapu-koko" into a
// display name ("Mr Mime", "Tapu Koko").
func FormatName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PadID renders a numeric id zero-padded to three digits, the form used in
// all text contexts.
func PadID(id int) string {
	return fmt.Sprintf("%03d", id)
}

// normalizeFlavor collapses the newlines, form feeds, and repeated spaces
// that upstream flavor text carries over from the games' text boxes.
func normalizeFlavor(s string) string {
	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\f", " ")
	return strings.Join(strings.Fields(replacer.Replace(s)), " ")
}
