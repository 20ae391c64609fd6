// Package delivery streams media bytes back to HTTP clients: local temporary
// files produced by the fetcher, and remote thumbnails relayed from upstream.
// Its one hard guarantee is that a temporary file handed to it is deleted
// exactly once, no matter how the response terminates.
package delivery

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/medba/medba/internal/domain"
)

// ServeFile streams a local temporary file as an attachment and deletes it
// when done. Errors discovered before any bytes are written are returned so
// the caller can render a JSON body; once headers are out, a failed copy
// aborts the connection instead.
func ServeFile(w http.ResponseWriter, r *http.Request, path, contentType, downloadName string, logger *slog.Logger) error {
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove temp file", "path", path, "error", err)
			}
		})
	}
	defer cleanup()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return domain.E(domain.KindFilePreparationFailed, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.E(domain.KindFilePreparationFailed, err)
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", BuildContentDisposition(downloadName))
	w.Header().Set("Cache-Control", "no-store")

	if _, err := io.Copy(w, f); err != nil {
		// Headers are already on the wire; dropping the connection is
		// the only honest signal left. The deferred cleanup still runs.
		logger.Warn("stream interrupted",
			"path", path,
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
		panic(http.ErrAbortHandler)
	}

	return nil
}
