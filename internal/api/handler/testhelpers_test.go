package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/delivery"
	"github.com/medba/medba/internal/fetcher"
	"github.com/medba/medba/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spyRunner records every invocation and delegates to handle when set.
type spyRunner struct {
	mu     sync.Mutex
	calls  [][]string
	handle func(args []string) (*fetcher.Result, error)
}

func (s *spyRunner) Invoke(_ context.Context, args []string) (*fetcher.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), args...))
	s.mu.Unlock()

	if s.handle != nil {
		return s.handle(args)
	}
	return &fetcher.Result{}, nil
}

func (s *spyRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyRunner) call(i int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func newTestService(t *testing.T, runner fetcher.Runner) *service.MediaService {
	t.Helper()
	cfg := config.DeliveryConfig{
		TempPath:           t.TempDir(),
		RemoteFetchTimeout: 5 * time.Second,
	}
	return service.NewMediaService(runner, cfg, testLogger())
}

func newTestRelay() *delivery.ThumbnailRelay {
	cfg := config.DeliveryConfig{RemoteFetchTimeout: 5 * time.Second}
	return delivery.NewThumbnailRelay(cfg, testLogger())
}

// flagValue returns the argument following flag, or "" when absent.
func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
