// Package agent decides whether a request comes from a link-preview crawler
// and labels the social platform behind a user agent.
package agent

import (
	"net/http"
	"strings"
)

// crawlerSignatures lists known crawler/bot user-agent substrings. Matching
// is case-insensitive. The list is intentionally conservative: a miss only
// means the request falls through to the default site behavior.
var crawlerSignatures = []string{
	"facebookexternalhit",
	"facebot",
	"twitterbot",
	"whatsapp",
	"slackbot",
	"linkedinbot",
	"discordbot",
	"telegrambot",
	"applebot",
	"googlebot",
	"bingbot",
	"pinterestbot",
	"redditbot",
	"embedly",
	"quora link preview",
	"showyoubot",
	"outbrain",
	"vkshare",
	"w3c_validator",
	"iframely",
}

// IsCrawler reports whether the request headers identify a crawler agent.
// It is a pure predicate: missing headers are treated as empty strings and
// no state or network access is involved.
func IsCrawler(h http.Header) bool {
	ua := strings.ToLower(h.Get("User-Agent"))
	for _, sig := range crawlerSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	// Some crawlers (iMessage) do not identify themselves clearly but
	// prerender services set an explicit preview-intent header.
	purpose := h.Get("Purpose")
	if purpose == "" {
		purpose = h.Get("X-Purpose")
	}
	return strings.EqualFold(purpose, "preview")
}

// Platform maps a user-agent string to a coarse social-platform label for
// analytics. Unrecognized agents map to "unknown".
func Platform(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "facebookexternalhit"), strings.Contains(lower, "facebot"):
		return "facebook"
	case strings.Contains(lower, "twitterbot"):
		return "twitter"
	case strings.Contains(lower, "whatsapp"):
		return "whatsapp"
	case strings.Contains(lower, "slackbot"):
		return "slack"
	case strings.Contains(lower, "linkedinbot"):
		return "linkedin"
	case strings.Contains(lower, "discordbot"):
		return "discord"
	case strings.Contains(lower, "telegrambot"):
		return "telegram"
	case strings.Contains(lower, "applebot"):
		return "imessage"
	default:
		return "unknown"
	}
}
