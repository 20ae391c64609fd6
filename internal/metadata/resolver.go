// Package metadata turns the external fetcher's JSON dump into the preview
// shown to clients: a ranked, deduplicated quality list plus title, duration,
// channel name and best thumbnail.
package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/medba/medba/internal/domain"
)

// maxQualities caps how many distinct qualities one listing may carry.
const maxQualities = 12

// fallbackTitle is used when the dump carries no title.
const fallbackTitle = "YouTube Video"

type dumpFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         float64 `json:"height"`
	TBR            float64 `json:"tbr"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

func (f *dumpFormat) hasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

func (f *dumpFormat) size() float64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

type dumpThumbnail struct {
	URL        string  `json:"url"`
	Ext        string  `json:"ext"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Preference float64 `json:"preference"`
}

type dump struct {
	Title      string          `json:"title"`
	Duration   float64         `json:"duration"`
	Thumbnail  string          `json:"thumbnail"`
	Thumbnails []dumpThumbnail `json:"thumbnails"`
	Channel    string          `json:"channel"`
	Uploader   string          `json:"uploader"`
	Creator    string          `json:"creator"`
	UploaderID string          `json:"uploader_id"`
	ChannelID  string          `json:"channel_id"`
	Formats    []dumpFormat    `json:"formats"`
}

// Resolve parses a metadata dump and derives the full preview. It returns a
// metadata-unreadable error for malformed JSON and a no-qualities error when
// no downloadable mp4 rendition survives filtering.
func Resolve(raw []byte) (*domain.Preview, error) {
	var meta dump
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, domain.E(domain.KindMetadataUnreadable, err)
	}

	qualities := deriveQualities(meta.Formats)
	if len(qualities) == 0 {
		return nil, domain.E(domain.KindNoQualitiesFound, nil)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = fallbackTitle
	}

	return &domain.Preview{
		Title:     title,
		Duration:  normalizeDuration(meta.Duration),
		Thumbnail: bestThumbnailURL(&meta),
		Channel:   channelName(&meta),
		Qualities: qualities,
	}, nil
}

// Thumbnail is the chosen thumbnail candidate: a normalized http(s) URL and
// the raw extension the dump reported for it, if any.
type Thumbnail struct {
	URL string
	Ext string
}

// BestThumbnail parses a metadata dump and returns the highest-scoring
// thumbnail with a usable URL.
func BestThumbnail(raw []byte) (*Thumbnail, error) {
	var meta dump
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, domain.E(domain.KindThumbnailUnavailable, err)
	}

	type candidate struct {
		url   string
		ext   string
		score float64
	}

	var best *candidate
	for _, t := range meta.Thumbnails {
		normalized := normalizeHTTPURL(t.URL)
		if normalized == "" {
			continue
		}
		score := thumbnailScore(&t)
		if best == nil || score > best.score {
			best = &candidate{url: normalized, ext: t.Ext, score: score}
		}
	}

	if best != nil {
		return &Thumbnail{URL: best.url, Ext: best.ext}, nil
	}

	if fallback := normalizeHTTPURL(meta.Thumbnail); fallback != "" {
		return &Thumbnail{URL: fallback}, nil
	}

	return nil, domain.E(domain.KindThumbnailUnavailable, nil)
}

// deriveQualities filters to downloadable mp4 video formats, ranks them and
// keeps the best candidate per vertical resolution.
func deriveQualities(formats []dumpFormat) []domain.QualityOption {
	var candidates []dumpFormat
	for _, f := range formats {
		if f.Ext != "mp4" {
			continue
		}
		if f.VCodec == "" || f.VCodec == "none" {
			continue
		}
		if f.FormatID == "" {
			continue
		}
		if !isFiniteHeight(f.Height) {
			continue
		}
		candidates = append(candidates, f)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		if a.hasAudio() != b.hasAudio() {
			return a.hasAudio()
		}
		if a.TBR != b.TBR {
			return a.TBR > b.TBR
		}
		return a.size() > b.size()
	})

	seen := make(map[int]bool)
	var qualities []domain.QualityOption
	for _, f := range candidates {
		height := int(f.Height)
		if seen[height] {
			continue
		}
		seen[height] = true

		qualities = append(qualities, domain.QualityOption{
			FormatID: f.FormatID,
			Quality:  fmt.Sprintf("%dp", height),
			HasAudio: f.hasAudio(),
		})

		if len(qualities) >= maxQualities {
			break
		}
	}

	return qualities
}

func isFiniteHeight(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h > 0
}

// bestThumbnailURL is the listing variant of thumbnail selection: only the
// URL matters, the extension is irrelevant.
func bestThumbnailURL(meta *dump) string {
	bestScore := math.Inf(-1)
	bestURL := ""
	for _, t := range meta.Thumbnails {
		normalized := normalizeHTTPURL(t.URL)
		if normalized == "" {
			continue
		}
		if score := thumbnailScore(&t); score > bestScore {
			bestScore = score
			bestURL = normalized
		}
	}

	if bestURL != "" {
		return bestURL
	}
	return normalizeHTTPURL(meta.Thumbnail)
}

func thumbnailScore(t *dumpThumbnail) float64 {
	return t.Width*t.Height + t.Preference
}

// channelName picks the first non-empty channel-ish field.
func channelName(meta *dump) string {
	for _, candidate := range []string{
		meta.Channel,
		meta.Uploader,
		meta.Creator,
		meta.UploaderID,
		meta.ChannelID,
	} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return ""
}

// normalizeDuration floors positive finite durations to whole seconds and
// drops everything else.
func normalizeDuration(seconds float64) *int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return nil
	}
	whole := int64(math.Floor(seconds))
	return &whole
}

// normalizeHTTPURL upgrades protocol-relative URLs to https and rejects
// anything that is not http(s).
func normalizeHTTPURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "//") {
		value = "https:" + value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}
