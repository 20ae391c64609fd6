package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/medba/medba/internal/domain"
	"github.com/medba/medba/internal/fetcher"
)

func getDownload(t *testing.T, handle http.HandlerFunc, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)
	rec := httptest.NewRecorder()
	handle(rec, req)
	return rec
}

func TestVideoRejectsDisallowedHost(t *testing.T) {
	spy := &spyRunner{}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Video, "/api/download/video", url.Values{
		"url":      {"https://dailymotion.com/video/x1"},
		"formatId": {"136"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if spy.callCount() != 0 {
		t.Errorf("runner invoked %d times for rejected input, want 0", spy.callCount())
	}
}

func TestVideoRejectsBadFormatID(t *testing.T) {
	spy := &spyRunner{}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Video, "/api/download/video", url.Values{
		"url":      {"https://youtube.com/watch?v=abc"},
		"formatId": {"136; rm -rf /"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if spy.callCount() != 0 {
		t.Errorf("runner invoked for rejected format id")
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != domain.KindQualityUnavailable.Message() {
		t.Errorf("error = %q", body["error"])
	}
}

func TestVideoHappyPath(t *testing.T) {
	content := []byte("fake mp4 payload")
	spy := &spyRunner{}
	spy.handle = func(args []string) (*fetcher.Result, error) {
		out := flagValue(args, "-o")
		if out == "" {
			t.Fatalf("no -o argument in %v", args)
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			t.Fatal(err)
		}
		return &fetcher.Result{}, nil
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Video, "/api/download/video", url.Values{
		"url":      {"https://youtube.com/watch?v=abc"},
		"formatId": {"136"},
		"hasAudio": {"true"},
		"title":    {"My Video"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != string(content) {
		t.Errorf("body = %q, want file content", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="My Video.mp4"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	if spy.callCount() != 1 {
		t.Fatalf("runner invoked %d times, want 1", spy.callCount())
	}
	args := spy.call(0)
	if sel := flagValue(args, "-f"); sel != "136/best[ext=mp4]/best" {
		t.Errorf("selector = %q", sel)
	}
	if !hasArg(args, "--merge-output-format") {
		t.Errorf("args = %v, missing merge output format", args)
	}

	out := flagValue(args, "-o")
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after streaming", out)
	}
}

func TestVideoSelectorWithoutAudio(t *testing.T) {
	spy := &spyRunner{}
	spy.handle = func(args []string) (*fetcher.Result, error) {
		if out := flagValue(args, "-o"); out != "" {
			if err := os.WriteFile(out, []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		return &fetcher.Result{}, nil
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	getDownload(t, h.Video, "/api/download/video", url.Values{
		"url":      {"https://youtube.com/watch?v=abc"},
		"formatId": {"137"},
		"title":    {"T"},
	})

	want := "137+bestaudio[ext=m4a]/137+bestaudio/137/best[ext=mp4]/best"
	if sel := flagValue(spy.call(0), "-f"); sel != want {
		t.Errorf("selector = %q, want %q", sel, want)
	}
}

func TestVideoReportsFetchFailure(t *testing.T) {
	spy := &spyRunner{
		handle: func(args []string) (*fetcher.Result, error) {
			return nil, domain.E(domain.KindVideoUnavailable, nil)
		},
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Video, "/api/download/video", url.Values{
		"url":      {"https://youtube.com/watch?v=abc"},
		"formatId": {"136"},
		"title":    {"T"},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "This video is unavailable." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAudioHappyPath(t *testing.T) {
	content := []byte("fake mp3 payload")
	spy := &spyRunner{}
	spy.handle = func(args []string) (*fetcher.Result, error) {
		out := flagValue(args, "-o")
		if out == "" {
			t.Fatalf("no -o argument in %v", args)
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			t.Fatal(err)
		}
		return &fetcher.Result{}, nil
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Audio, "/api/download/mp3", url.Values{
		"url":   {"https://youtube.com/watch?v=abc"},
		"title": {"My Song"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="My Song.mp3"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	args := spy.call(0)
	if !hasArg(args, "-x") || flagValue(args, "--audio-format") != "mp3" {
		t.Errorf("audio args = %v", args)
	}

	out := flagValue(args, "-o")
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after streaming", out)
	}
}

func TestAudioFallbackTitleInvokesLookup(t *testing.T) {
	content := []byte("y")
	spy := &spyRunner{}
	spy.handle = func(args []string) (*fetcher.Result, error) {
		if hasArg(args, "--print") {
			return &fetcher.Result{Stdout: []byte("Looked Up Title\n")}, nil
		}
		if out := flagValue(args, "-o"); out != "" {
			if err := os.WriteFile(out, content, 0o644); err != nil {
				t.Fatal(err)
			}
		}
		return &fetcher.Result{}, nil
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Audio, "/api/download/mp3", url.Values{
		"url": {"https://youtube.com/watch?v=abc"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Looked Up Title.mp3"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if spy.callCount() != 2 {
		t.Errorf("runner invoked %d times, want title lookup plus download", spy.callCount())
	}
}

func TestThumbnailHappyPath(t *testing.T) {
	image := []byte("png bytes here")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(image)
	}))
	defer upstream.Close()

	dump := `{"thumbnails":[{"url":"` + upstream.URL + `/thumb.png","width":640,"height":480}]}`
	spy := &spyRunner{
		handle: func(args []string) (*fetcher.Result, error) {
			return &fetcher.Result{Stdout: []byte(dump)}, nil
		},
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Thumbnail, "/api/download/thumbnail", url.Values{
		"url":   {"https://youtube.com/watch?v=abc"},
		"title": {"Cover"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != string(image) {
		t.Errorf("body = %q, want relayed image", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Cover.png"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestThumbnailNoneAvailable(t *testing.T) {
	spy := &spyRunner{
		handle: func(args []string) (*fetcher.Result, error) {
			return &fetcher.Result{Stdout: []byte(`{"thumbnails":[]}`)}, nil
		},
	}
	h := NewDownloadHandler(newTestService(t, spy), newTestRelay(), testLogger())

	rec := getDownload(t, h.Thumbnail, "/api/download/thumbnail", url.Values{
		"url":   {"https://youtube.com/watch?v=abc"},
		"title": {"Cover"},
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != domain.KindThumbnailUnavailable.Message() {
		t.Errorf("error = %q", body["error"])
	}
}
