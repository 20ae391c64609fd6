package fetcher

import (
	"testing"

	"github.com/medba/medba/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   domain.Kind
	}{
		{
			name:   "private video with log noise",
			output: "[youtube] Extracting URL: https://youtu.be/abc\n[youtube] abc: Downloading webpage\nERROR: Private video\n",
			want:   domain.KindVideoPrivate,
		},
		{
			name:   "private video with bracketed tag on error line",
			output: "ERROR: [youtube] dQw4w9WgXcQ: Private video. Sign in if you've been granted access",
			want:   domain.KindVideoPrivate,
		},
		{
			name:   "video unavailable",
			output: "ERROR: Video unavailable",
			want:   domain.KindVideoUnavailable,
		},
		{
			name:   "age restricted",
			output: "ERROR: Sign in to confirm your age. This video may be inappropriate for some users.",
			want:   domain.KindAgeRestricted,
		},
		{
			name:   "region blocked",
			output: "ERROR: The uploader has not made this video available in your country",
			want:   domain.KindRegionBlocked,
		},
		{
			name:   "requested format missing",
			output: "ERROR: Requested format is not available. Use --list-formats for a list of available formats",
			want:   domain.KindQualityUnavailable,
		},
		{
			name:   "upstream 429",
			output: "ERROR: unable to download video data: HTTP Error 429: Too Many Requests",
			want:   domain.KindUpstreamBusy,
		},
		{
			name:   "network trouble",
			output: "ERROR: Unable to download webpage: The read operation timed out",
			want:   domain.KindNetworkTrouble,
		},
		{
			name:   "copyright takedown",
			output: "ERROR: This video is no longer available due to a copyright claim",
			want:   domain.KindBlockedDownload,
		},
		{
			name:   "last error line wins",
			output: "ERROR: Video unavailable\nWARNING: retrying\nERROR: Private video",
			want:   domain.KindVideoPrivate,
		},
		{
			name:   "no error marker uses last line",
			output: "some log line\nanother line about a private video",
			want:   domain.KindVideoPrivate,
		},
		{
			name:   "unknown error falls through",
			output: "ERROR: the moon is in the wrong phase",
			want:   domain.KindUnprocessable,
		},
		{
			name:   "empty output",
			output: "",
			want:   domain.KindVideoUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := Classify([]byte(tt.output))
			if got != tt.want {
				t.Errorf("Classify() kind = %v (detail %q), want %v", got, detail, tt.want)
			}
		})
	}
}

func TestCleanErrorLineStripsNoise(t *testing.T) {
	got, detail := Classify([]byte("ERROR: [youtube] dQw4w9WgXcQ: Video unavailable"))
	if got != domain.KindVideoUnavailable {
		t.Fatalf("kind = %v, want KindVideoUnavailable", got)
	}
	if detail != "Video unavailable" {
		t.Errorf("detail = %q, want %q", detail, "Video unavailable")
	}
}
