// Package analytics emits best-effort structured events for preview
// traffic. The emitter is a diagnostic side channel: it never blocks a
// request and its unavailability never alters a response.
package analytics

import "time"

// Well-known event names emitted by the edge.
const (
	EventCrawlerRequest = "crawler_request"
	EventCardView       = "og_card_view"
	EventCard404        = "og_card_404"
	EventImageGenerate  = "og_image_generate"
	EventEmbedView      = "embed_view"
)

// Event is one analytics record. The request-derived fields are filled by
// the emitter; Fields carries the caller's event-specific values.
type Event struct {
	Name      string
	TS        time.Time
	Path      string
	Referrer  string
	UserAgent string
	Country   string
	City      string
	Platform  string
	Fields    map[string]any
}
