// Package preview turns resolved route intents into presentation
// descriptors and serializes them as crawler-facing HTML.
package preview

// CardKind selects the Twitter card variant a descriptor renders as.
type CardKind string

// Supported card kinds.
const (
	CardSummary CardKind = "summary_large_image"
	CardPlayer  CardKind = "player"
)

// Descriptor carries everything the HTML renderer needs for one response.
// It is built once per request and consumed exactly once.
type Descriptor struct {
	Title        string
	Description  string
	Image        string
	CanonicalURL string
	Card         CardKind
	// PlayerURL and the dimensions are set only for descriptors that
	// offer an interactive embed card.
	PlayerURL    string
	PlayerWidth  int
	PlayerHeight int
}
