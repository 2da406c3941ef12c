package api

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// linkEntryRe matches one `<uri>; params` entry of a Link header
	linkEntryRe = regexp.MustCompile(`<([^>]*)>([^<]*)`)
	// linkRelRe extracts the rel parameter, quoted or bare
	linkRelRe = regexp.MustCompile(`(?i);\s*rel\s*=\s*(?:"([^"]*)"|([^\s";,]+))`)
)

// ParseNextLink returns the URI of the entry whose relation is "next".
// A rel value may list several space-separated relations.
func ParseNextLink(header string) (string, bool) {
	for _, m := range linkEntryRe.FindAllStringSubmatch(header, -1) {
		uri := strings.TrimSpace(m[1])
		if uri == "" {
			continue
		}
		rel := linkRelRe.FindStringSubmatch(m[2])
		if rel == nil {
			continue
		}
		value := rel[1]
		if value == "" {
			value = rel[2]
		}
		for _, r := range strings.Fields(value) {
			if strings.EqualFold(r, "next") {
				return uri, true
			}
		}
	}
	return "", false
}

// RateLimit is the informational quota reported by the API.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Known     bool
}

// ParseRateLimit reads the X-RateLimit-* headers. Known is false when the
// limit or remaining header is missing or malformed.
func ParseRateLimit(h http.Header) RateLimit {
	limit, errLimit := strconv.Atoi(strings.TrimSpace(h.Get("X-RateLimit-Limit")))
	remaining, errRemaining := strconv.Atoi(strings.TrimSpace(h.Get("X-RateLimit-Remaining")))
	if errLimit != nil || errRemaining != nil {
		return RateLimit{}
	}

	rl := RateLimit{Limit: limit, Remaining: remaining, Known: true}
	if reset, err := strconv.ParseInt(strings.TrimSpace(h.Get("X-RateLimit-Reset")), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	return rl
}
