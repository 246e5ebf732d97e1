// Package routes resolves request paths into preview rendering intents.
package routes

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Kind enumerates the closed set of intents a path can resolve to.
type Kind int

// Supported intent kinds, in resolution priority order.
const (
	KindPassThrough Kind = iota
	KindImageCard
	KindEmbed
	KindDetail
	KindBattle
	KindTypeMatchup
	KindUnknown
)

// Intent is the typed result of resolving a request path. Exactly the
// fields relevant to the Kind are populated.
type Intent struct {
	Kind Kind
	// ID is the entity id for ImageCard, Embed, and Detail intents, and
	// the first entity for Battle intents.
	ID int
	// SecondID is the second entity for Battle intents.
	SecondID int
	// Attacking and Defending are the category names for TypeMatchup.
	Attacking string
	Defending string
	// Path is the literal request path, kept for Unknown fallbacks.
	Path string
}

type pattern struct {
	re    *regexp.Regexp
	build func(m []string) Intent
}

// Patterns are checked in order; the first match wins. A segment that fails
// its character class (e.g. a non-numeric id) simply does not match, so
// malformed parameters fall through rather than erroring.
var patterns = []pattern{
	{
		re: regexp.MustCompile(`^/og/pokemon/(\d+)\.png$`),
		build: func(m []string) Intent {
			return Intent{Kind: KindImageCard, ID: mustInt(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`^/embed/pokemon/(\d+)$`),
		build: func(m []string) Intent {
			return Intent{Kind: KindEmbed, ID: mustInt(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`^/pokemon/(\d+)$`),
		build: func(m []string) Intent {
			return Intent{Kind: KindDetail, ID: mustInt(m[1])}
		},
	},
	{
		re: regexp.MustCompile(`^/battle/(\d+)/(\d+)$`),
		build: func(m []string) Intent {
			return Intent{Kind: KindBattle, ID: mustInt(m[1]), SecondID: mustInt(m[2])}
		},
	},
	{
		re: regexp.MustCompile(`^/types/([a-z]+)/vs/([a-z]+)$`),
		build: func(m []string) Intent {
			return Intent{Kind: KindTypeMatchup, Attacking: m[1], Defending: m[2]}
		},
	},
}

// Resolve maps a request method and path to an Intent. Only GET requests
// resolve to rendering intents; the reserved /api/ prefix is owned by
// another collaborator and always passes through.
func Resolve(method, path string) Intent {
	if method != http.MethodGet {
		return Intent{Kind: KindPassThrough, Path: path}
	}
	if strings.HasPrefix(path, "/api/") {
		return Intent{Kind: KindPassThrough, Path: path}
	}
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(path); m != nil {
			it := p.build(m)
			it.Path = path
			return it
		}
	}
	return Intent{Kind: KindUnknown, Path: path}
}

// mustInt parses a digits-only submatch. The regex guarantees the segment
// is numeric, so the only possible failure is overflow, which maps to 0
// and is handled downstream as an unknown entity.
func mustInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
