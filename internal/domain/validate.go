package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// Input limits shared by all routes.
const (
	MaxURLLength      = 2048
	MaxFormatIDLength = 64
	MaxTitleLength    = 180
)

// allowedHosts are the media hostnames we accept, after stripping a leading
// "www." and lowercasing.
var allowedHosts = map[string]bool{
	"youtube.com":       true,
	"m.youtube.com":     true,
	"youtu.be":          true,
	"music.youtube.com": true,
}

var formatIDPattern = regexp.MustCompile(`^[a-zA-Z0-9+_.\-/]+$`)

// NormalizeInput trims surrounding whitespace from a request parameter.
func NormalizeInput(value string) string {
	return strings.TrimSpace(value)
}

// ValidMediaURL reports whether value is an http(s) URL whose hostname is on
// the allow-list of known media sites.
func ValidMediaURL(value string) bool {
	if value == "" || len(value) > MaxURLLength {
		return false
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	return allowedHosts[host]
}

// SafeFormatID reports whether value is a usable format identifier: non-empty,
// bounded length, restricted character class.
func SafeFormatID(value string) bool {
	if value == "" || len(value) > MaxFormatIDLength {
		return false
	}
	return formatIDPattern.MatchString(value)
}
