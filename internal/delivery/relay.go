package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/domain"
)

// ThumbnailRelay fetches a remote thumbnail and pipes it straight through to
// the client, with its own (short) timeout independent of the fetcher's.
type ThumbnailRelay struct {
	client *http.Client
	logger *slog.Logger
}

// NewThumbnailRelay creates a relay using the configured remote-fetch timeout.
func NewThumbnailRelay(cfg config.DeliveryConfig, logger *slog.Logger) *ThumbnailRelay {
	return &ThumbnailRelay{
		client: &http.Client{Timeout: cfg.RemoteFetchTimeout},
		logger: logger,
	}
}

// Relay streams the thumbnail at srcURL to the client as an attachment named
// baseName plus a derived extension. srcExt is the extension the metadata
// dump reported for the thumbnail, used as a fallback when the upstream
// response does not declare a content type.
func (t *ThumbnailRelay) Relay(w http.ResponseWriter, r *http.Request, srcURL, srcExt, baseName string) error {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, srcURL, nil)
	if err != nil {
		return domain.E(domain.KindThumbnailUnavailable, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.E(domain.KindUpstreamTimeout, err)
		}
		return domain.E(domain.KindThumbnailUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.E(domain.KindThumbnailUnavailable, nil)
	}

	// Both the extension reported by the metadata dump and the URL path can
	// stand in for a missing upstream content type.
	sourceExt := SanitizeFileExtension(srcExt)
	if sourceExt == "" {
		sourceExt = fileExtensionFromURL(srcURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ContentTypeFromExtension(sourceExt)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	ext := ExtensionFromContentType(contentType)
	if ext == "" {
		ext = sourceExt
	}
	if ext == "" {
		ext = "jpg"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", BuildContentDisposition(baseName+"."+ext))
	w.Header().Set("Cache-Control", "no-store")
	if resp.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		t.logger.Warn("thumbnail relay interrupted",
			"url", srcURL,
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
		panic(http.ErrAbortHandler)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
