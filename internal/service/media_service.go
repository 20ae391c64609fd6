// Package service composes the fetcher and the metadata resolver into the
// operations the HTTP handlers expose: listing formats, preparing video and
// audio renditions as temporary files, and resolving thumbnails and titles.
package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/delivery"
	"github.com/medba/medba/internal/domain"
	"github.com/medba/medba/internal/fetcher"
	"github.com/medba/medba/internal/metadata"
)

// MediaService orchestrates fetcher invocations for one request at a time.
// It holds no per-request state; concurrent requests each get their own
// child process and temporary file, with no coalescing of identical URLs.
type MediaService struct {
	runner   fetcher.Runner
	tempPath string
	logger   *slog.Logger
}

// NewMediaService creates the orchestration service.
func NewMediaService(runner fetcher.Runner, cfg config.DeliveryConfig, logger *slog.Logger) *MediaService {
	return &MediaService{
		runner:   runner,
		tempPath: cfg.TempPath,
		logger:   logger,
	}
}

// ListFormats dumps metadata for url and derives the quality listing.
func (s *MediaService) ListFormats(ctx context.Context, url string) (*domain.Preview, error) {
	res, err := s.runner.Invoke(ctx, metadataArgs(url))
	if err != nil {
		return nil, err
	}
	return metadata.Resolve(res.Stdout)
}

// PrepareVideo downloads the requested rendition into a fresh temporary file
// and returns its path. Ownership of the file passes to the caller, who must
// see it deleted.
func (s *MediaService) PrepareVideo(ctx context.Context, req domain.MediaRequest) (string, error) {
	outputPath := filepath.Join(s.tempPath, "video-"+uuid.New().String()+".mp4")

	args := []string{
		"--no-playlist",
		"--concurrent-fragments", "4",
		"-f", formatSelector(req.FormatID, req.HasAudio),
		"--merge-output-format", "mp4",
		"-o", outputPath,
		req.URL,
	}

	if _, err := s.runner.Invoke(ctx, args); err != nil {
		s.discard(outputPath)
		return "", err
	}
	return outputPath, nil
}

// PrepareAudio extracts the audio track into a fresh temporary mp3 file and
// returns its path.
func (s *MediaService) PrepareAudio(ctx context.Context, req domain.MediaRequest) (string, error) {
	outputPath := filepath.Join(s.tempPath, "audio-"+uuid.New().String()+".mp3")

	args := []string{
		"--no-playlist",
		"--concurrent-fragments", "4",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", outputPath,
		req.URL,
	}

	if _, err := s.runner.Invoke(ctx, args); err != nil {
		s.discard(outputPath)
		return "", err
	}
	return outputPath, nil
}

// BestThumbnail dumps metadata for url and picks the best-scoring thumbnail.
func (s *MediaService) BestThumbnail(ctx context.Context, url string) (*metadata.Thumbnail, error) {
	res, err := s.runner.Invoke(ctx, metadataArgs(url))
	if err != nil {
		return nil, err
	}
	return metadata.BestThumbnail(res.Stdout)
}

// ResolveTitle picks the download base name: the sanitized caller-supplied
// title when present, else a title fetched with a metadata-only invocation,
// else the fixed per-kind fallback. It never fails; a broken title lookup
// just means the fallback name.
func (s *MediaService) ResolveTitle(ctx context.Context, url, requested string, kind domain.MediaKind) string {
	if safe := delivery.SanitizeBaseName(requested); safe != "" {
		return safe
	}

	res, err := s.runner.Invoke(ctx, titleArgs(url))
	if err != nil {
		s.logger.Debug("title lookup failed, using fallback", "url", url, "error", err)
		return kind.FallbackName()
	}

	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if title := delivery.SanitizeBaseName(strings.TrimSpace(line)); title != "" {
			return title
		}
	}
	return kind.FallbackName()
}

func (s *MediaService) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

func metadataArgs(url string) []string {
	return []string{"-J", "--no-playlist", "--no-warnings", url}
}

func titleArgs(url string) []string {
	return []string{"--no-playlist", "--no-warnings", "--skip-download", "--print", "%(title)s", url}
}

// formatSelector mirrors the selector the web client depends on: a stream
// that already carries audio downloads directly, a video-only stream gets the
// best audio merged in.
func formatSelector(formatID string, hasAudio bool) string {
	if hasAudio {
		return formatID + "/best[ext=mp4]/best"
	}
	return formatID + "+bestaudio[ext=m4a]/" + formatID + "+bestaudio/" + formatID + "/best[ext=mp4]/best"
}
