package domain

// MediaKind selects which rendition a request is after.
type MediaKind string

const (
	KindVideoDownload MediaKind = "video"
	KindAudioDownload MediaKind = "audio"
	KindThumbnail     MediaKind = "thumbnail"
	KindFormats       MediaKind = "formats"
)

// FallbackName returns the fixed download name used when no title can be
// resolved for this kind of media.
func (k MediaKind) FallbackName() string {
	switch k {
	case KindAudioDownload:
		return "audio"
	case KindThumbnail:
		return "thumbnail"
	default:
		return "video"
	}
}

// MediaRequest is the validated input for one download or listing call. It is
// built from request parameters, consumed once by a handler and discarded.
type MediaRequest struct {
	URL      string
	FormatID string
	HasAudio bool
	Title    string
	Kind     MediaKind
}

// QualityOption is one selectable video rendition.
type QualityOption struct {
	FormatID string `json:"formatId"`
	Quality  string `json:"quality"`
	HasAudio bool   `json:"hasAudio"`
}

// Preview is the derived metadata for one source video: title, duration,
// best thumbnail, channel name and the ranked quality list. Recomputed on
// every format-listing call, never persisted.
type Preview struct {
	Title     string
	Duration  *int64
	Thumbnail string
	Channel   string
	Qualities []QualityOption
}
