package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groups.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestStartStop(t *testing.T) {
	w, err := New(writeTemp(t, "a"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsStarted() {
		t.Errorf("not started after Start")
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	if w.IsStarted() {
		t.Errorf("still started after Stop")
	}
	w.Stop() // idempotent
}

func TestDetectsWrite(t *testing.T) {
	path := writeTemp(t, "a")
	w, err := New(path, WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("bb"), 0o644); err != nil {
		t.Fatalf("rewriting file: %v", err)
	}

	select {
	case <-w.Changed():
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification after write")
	}
}

func TestPollingFallback(t *testing.T) {
	path := writeTemp(t, "a")
	changed := make(chan struct{}, 1)
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
		WithOnChange(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatalf("forced poll not honored")
	}

	// Size change guarantees detection even with coarse mtime resolution.
	if err := os.WriteFile(path, []byte("ccc"), 0o644); err != nil {
		t.Fatalf("rewriting file: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatalf("polling did not detect the write")
	}
}

func TestReportsRemoval(t *testing.T) {
	path := writeTemp(t, "a")
	errs := make(chan error, 1)
	w, err := New(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(e error) {
			select {
			case errs <- e:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing file: %v", err)
	}

	select {
	case e := <-errs:
		if e != ErrFileRemoved {
			t.Errorf("error = %v, want ErrFileRemoved", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("removal not reported")
	}
}
