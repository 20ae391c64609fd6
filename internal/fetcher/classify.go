package fetcher

import (
	"regexp"
	"strings"

	"github.com/medba/medba/internal/domain"
)

// rule maps substrings of the tool's normalized error text to an error kind.
// Rules are checked in order; the first match wins.
type rule struct {
	needles []string
	kind    domain.Kind
}

// classifyRules is best-effort by nature: the upstream tool's error text is
// free-form and can change between releases. Anything unmatched falls through
// to the generic could-not-process kind rather than guessing.
var classifyRules = []rule{
	{[]string{"video unavailable"}, domain.KindVideoUnavailable},
	{[]string{"private video"}, domain.KindVideoPrivate},
	{[]string{"age-restricted", "confirm your age"}, domain.KindAgeRestricted},
	{[]string{"not available in your country", "geo-restricted"}, domain.KindRegionBlocked},
	{[]string{"requested format is not available"}, domain.KindQualityUnavailable},
	{[]string{"too many requests", "http error 429"}, domain.KindUpstreamBusy},
	{[]string{"timed out", "network", "connection"}, domain.KindNetworkTrouble},
	{[]string{"copyright", "unavailable", "forbidden"}, domain.KindBlockedDownload},
}

var (
	errorLinePattern  = regexp.MustCompile(`(?i)^ERROR:`)
	errorPrefixStrip  = regexp.MustCompile(`(?i)^ERROR:\s*`)
	bracketTagStrip   = regexp.MustCompile(`^\[[^\]]+\]\s*`)
	videoIDStrip      = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}:\s*`)
	downloadNoteStrip = regexp.MustCompile(`(?i)^Unable to download [^:]+:\s*`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Classify picks the most relevant line of the tool's output, strips log
// noise from it and maps it to an error kind. It returns the kind together
// with the cleaned line for logging.
func Classify(output []byte) (domain.Kind, string) {
	cleaned := cleanErrorLine(relevantLine(output))
	normalized := strings.ToLower(cleaned)

	if normalized == "" {
		return domain.KindVideoUnavailable, cleaned
	}

	for _, r := range classifyRules {
		for _, needle := range r.needles {
			if strings.Contains(normalized, needle) {
				return r.kind, cleaned
			}
		}
	}

	return domain.KindUnprocessable, cleaned
}

// relevantLine returns the last line starting with an error marker, else the
// last non-empty line.
func relevantLine(output []byte) string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if errorLinePattern.MatchString(lines[i]) {
			return lines[i]
		}
	}

	if len(lines) > 0 {
		return lines[len(lines)-1]
	}
	return ""
}

// cleanErrorLine drops the marker, bracketed extractor tags, leading video-id
// prefixes and download-note boilerplate, then collapses whitespace.
func cleanErrorLine(line string) string {
	line = errorPrefixStrip.ReplaceAllString(line, "")
	line = bracketTagStrip.ReplaceAllString(line, "")
	line = videoIDStrip.ReplaceAllString(line, "")
	line = downloadNoteStrip.ReplaceAllString(line, "")
	line = whitespaceRun.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}
