package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/medba/medba/internal/delivery"
	"github.com/medba/medba/internal/domain"
	"github.com/medba/medba/internal/service"
)

// DownloadHandler handles the three download endpoints: video, audio and
// thumbnail. Input validation is a thin gate here; nothing downstream runs
// for a request that fails it.
type DownloadHandler struct {
	mediaSvc *service.MediaService
	relay    *delivery.ThumbnailRelay
	logger   *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(mediaSvc *service.MediaService, relay *delivery.ThumbnailRelay, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		mediaSvc: mediaSvc,
		relay:    relay,
		logger:   logger,
	}
}

// Video handles GET /api/download/video.
func (h *DownloadHandler) Video(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url := domain.NormalizeInput(q.Get("url"))
	title := capTitle(domain.NormalizeInput(q.Get("title")))
	formatID := q.Get("formatId")

	if !domain.ValidMediaURL(url) {
		writeMessage(w, http.StatusBadRequest, domain.KindInvalidInput.Message())
		return
	}
	if !domain.SafeFormatID(formatID) {
		writeMessage(w, http.StatusBadRequest, domain.KindQualityUnavailable.Message())
		return
	}

	req := domain.MediaRequest{
		URL:      url,
		FormatID: formatID,
		HasAudio: strings.EqualFold(q.Get("hasAudio"), "true"),
		Title:    title,
		Kind:     domain.KindVideoDownload,
	}

	baseName := h.mediaSvc.ResolveTitle(r.Context(), url, title, req.Kind)

	path, err := h.mediaSvc.PrepareVideo(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := delivery.ServeFile(w, r, path, "video/mp4", baseName+".mp4", h.logger); err != nil {
		writeError(w, h.logger, err)
	}
}

// Audio handles GET /api/download/mp3.
func (h *DownloadHandler) Audio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url := domain.NormalizeInput(q.Get("url"))
	title := capTitle(domain.NormalizeInput(q.Get("title")))

	if !domain.ValidMediaURL(url) {
		writeMessage(w, http.StatusBadRequest, domain.KindInvalidInput.Message())
		return
	}

	req := domain.MediaRequest{
		URL:   url,
		Title: title,
		Kind:  domain.KindAudioDownload,
	}

	baseName := h.mediaSvc.ResolveTitle(r.Context(), url, title, req.Kind)

	path, err := h.mediaSvc.PrepareAudio(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := delivery.ServeFile(w, r, path, "audio/mpeg", baseName+".mp3", h.logger); err != nil {
		writeError(w, h.logger, err)
	}
}

// Thumbnail handles GET /api/download/thumbnail.
func (h *DownloadHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	url := domain.NormalizeInput(q.Get("url"))
	title := capTitle(domain.NormalizeInput(q.Get("title")))

	if !domain.ValidMediaURL(url) {
		writeMessage(w, http.StatusBadRequest, domain.KindInvalidInput.Message())
		return
	}

	baseName := h.mediaSvc.ResolveTitle(r.Context(), url, title, domain.KindThumbnail)

	thumb, err := h.mediaSvc.BestThumbnail(r.Context(), url)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.relay.Relay(w, r, thumb.URL, thumb.Ext, baseName); err != nil {
		writeError(w, h.logger, err)
	}
}

// capTitle bounds a caller-supplied title before sanitization.
func capTitle(title string) string {
	runes := []rune(title)
	if len(runes) > domain.MaxTitleLength {
		runes = runes[:domain.MaxTitleLength]
	}
	return string(runes)
}
