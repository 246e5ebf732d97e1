package preview

import (
	"fmt"
	"strings"
)

// escape entity-escapes the characters that permit markup injection inside
// attribute values. Every dynamic string passes through here before
// interpolation; upstream-sourced names and flavor text are untrusted.
func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}

// HTMLRenderer serializes descriptors into complete crawler-facing HTML
// documents carrying Open Graph and Twitter Card metadata.
type HTMLRenderer struct {
	siteName string
	// redirectDelaySeconds is the meta-refresh delay. It is long enough
	// for crawlers to finish parsing meta tags and short enough that a
	// misclassified human is forwarded before the page feels broken.
	redirectDelaySeconds int
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer(siteName string, redirectDelaySeconds int) *HTMLRenderer {
	return &HTMLRenderer{
		siteName:             siteName,
		redirectDelaySeconds: redirectDelaySeconds,
	}
}

// Render produces the full HTML document for a descriptor.
func (r *HTMLRenderer) Render(d Descriptor) []byte {
	var b strings.Builder

	player := ""
	if d.Card == CardPlayer || d.PlayerURL != "" {
		width := d.PlayerWidth
		if width == 0 {
			width = 520
		}
		height := d.PlayerHeight
		if height == 0 {
			height = 730
		}
		player = fmt.Sprintf(`
  <!-- Twitter Player Card (Interactive Embed) -->
  <meta name="twitter:player" content="%s" />
  <meta name="twitter:player:width" content="%d" />
  <meta name="twitter:player:height" content="%d" />`,
			escape(d.PlayerURL), width, height)
	}

	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s</title>

  <!-- Open Graph -->
  <meta property="og:type" content="website" />
  <meta property="og:site_name" content="%s" />
  <meta property="og:title" content="%s" />
  <meta property="og:description" content="%s" />
  <meta property="og:image" content="%s" />
  <meta property="og:url" content="%s" />

  <!-- Twitter Card -->
  <meta name="twitter:card" content="%s" />
  <meta name="twitter:title" content="%s" />
  <meta name="twitter:description" content="%s" />
  <meta name="twitter:image" content="%s" />%s

  <!-- Redirect real users who somehow land here -->
  <meta http-equiv="refresh" content="%d;url=%s" />
</head>
<body>
  <p>Redirecting to <a href="%s">%s</a>...</p>
</body>
</html>
`,
		escape(d.Title),
		escape(r.siteName),
		escape(d.Title),
		escape(d.Description),
		escape(d.Image),
		escape(d.CanonicalURL),
		escape(string(d.Card)),
		escape(d.Title),
		escape(d.Description),
		escape(d.Image),
		player,
		r.redirectDelaySeconds,
		escape(d.CanonicalURL),
		escape(d.CanonicalURL),
		escape(r.siteName),
	)

	return []byte(b.String())
}
