package fetcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/medba/medba/internal/config"
	"github.com/medba/medba/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript drops an executable shell script into a temp dir and returns
// its path. These tests only run where /bin/sh exists.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-fetcher")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newRunner(binary string, timeout time.Duration) *YtDlp {
	return NewYtDlp(config.FetcherConfig{Binary: binary, Timeout: timeout}, testLogger())
}

func TestInvokeCapturesStdout(t *testing.T) {
	binary := writeScript(t, `echo "hello stdout"
echo "hello stderr" >&2
`)

	res, err := newRunner(binary, 5*time.Second).Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if got := strings.TrimSpace(string(res.Stdout)); got != "hello stdout" {
		t.Errorf("stdout = %q, want %q", got, "hello stdout")
	}
	if got := strings.TrimSpace(string(res.Stderr)); got != "hello stderr" {
		t.Errorf("stderr = %q, want %q", got, "hello stderr")
	}
}

func TestInvokeClassifiesNonzeroExit(t *testing.T) {
	binary := writeScript(t, `echo "[youtube] dQw4w9WgXcQ: Downloading webpage" >&2
echo "ERROR: Private video. Sign in if you've been granted access to this video" >&2
exit 1
`)

	_, err := newRunner(binary, 5*time.Second).Invoke(context.Background(), nil)
	if err == nil {
		t.Fatal("Invoke() expected error, got nil")
	}
	if kind := domain.KindOf(err); kind != domain.KindVideoPrivate {
		t.Errorf("kind = %v, want KindVideoPrivate", kind)
	}
}

func TestInvokeFallsBackToStdoutForErrorText(t *testing.T) {
	binary := writeScript(t, `echo "ERROR: Video unavailable"
exit 1
`)

	_, err := newRunner(binary, 5*time.Second).Invoke(context.Background(), nil)
	if err == nil {
		t.Fatal("Invoke() expected error, got nil")
	}
	if kind := domain.KindOf(err); kind != domain.KindVideoUnavailable {
		t.Errorf("kind = %v, want KindVideoUnavailable", kind)
	}
}

func TestInvokeKillsHungProcess(t *testing.T) {
	binary := writeScript(t, `exec sleep 30
`)

	start := time.Now()
	_, err := newRunner(binary, 200*time.Millisecond).Invoke(context.Background(), nil)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Invoke() expected timeout error, got nil")
	}
	if kind := domain.KindOf(err); kind != domain.KindUpstreamTimeout {
		t.Errorf("kind = %v, want KindUpstreamTimeout", kind)
	}
	if elapsed < 200*time.Millisecond {
		t.Errorf("returned after %v, before the timeout", elapsed)
	}
	if elapsed > 5*time.Second {
		t.Errorf("took %v to give up on a hung process", elapsed)
	}
}

func TestInvokeReportsLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "definitely-not-installed")

	_, err := newRunner(missing, time.Second).Invoke(context.Background(), nil)
	if err == nil {
		t.Fatal("Invoke() expected error, got nil")
	}
	if kind := domain.KindOf(err); kind != domain.KindServiceUnavailable {
		t.Errorf("kind = %v, want KindServiceUnavailable", kind)
	}
}
