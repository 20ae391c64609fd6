package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medba/medba/internal/domain"
	"github.com/medba/medba/internal/service"
)

// maxFormatsBodySize bounds the JSON request body for the listing endpoint.
const maxFormatsBodySize = 10 << 10

// FormatsHandler handles the format-listing endpoint.
type FormatsHandler struct {
	mediaSvc *service.MediaService
	logger   *slog.Logger
}

// NewFormatsHandler creates a new formats handler.
func NewFormatsHandler(mediaSvc *service.MediaService, logger *slog.Logger) *FormatsHandler {
	return &FormatsHandler{
		mediaSvc: mediaSvc,
		logger:   logger,
	}
}

// FormatsRequest is the JSON request body for a listing call.
type FormatsRequest struct {
	URL string `json:"url"`
}

// ChannelResponse carries the resolved channel name.
type ChannelResponse struct {
	Name string `json:"name"`
}

// FormatsResponse is the JSON response for a listing call.
type FormatsResponse struct {
	Title     string                 `json:"title"`
	Duration  *int64                 `json:"duration"`
	Thumbnail string                 `json:"thumbnail"`
	Channel   ChannelResponse        `json:"channel"`
	Formats   []domain.QualityOption `json:"formats"`
}

// List handles POST /api/formats.
func (h *FormatsHandler) List(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormatsBodySize)

	var req FormatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, domain.KindInvalidInput.Message())
		return
	}

	url := domain.NormalizeInput(req.URL)
	if !domain.ValidMediaURL(url) {
		writeMessage(w, http.StatusBadRequest, domain.KindInvalidInput.Message())
		return
	}

	preview, err := h.mediaSvc.ListFormats(r.Context(), url)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, FormatsResponse{
		Title:     preview.Title,
		Duration:  preview.Duration,
		Thumbnail: preview.Thumbnail,
		Channel:   ChannelResponse{Name: preview.Channel},
		Formats:   preview.Qualities,
	})
}
