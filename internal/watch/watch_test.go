package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_NoFiles(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected error for empty file list")
	}
}

func TestNew_Defaults(t *testing.T) {
	w, err := New([]string{"doc.xml"}, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", w.debounce)
	}
	abs, _ := filepath.Abs("doc.xml")
	if !w.files[abs] {
		t.Errorf("expected %s to be watched, got %v", abs, w.files)
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "iso-712.xml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(target, []byte("<iso-standard/>"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w, err := New([]string{target}, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, path string) error {
			changed <- path
			return errors.New("handler errors must not stop the watcher")
		})
	}()

	// The watch is registered asynchronously, so keep touching the file
	// until the first callback arrives.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got string
wait:
	for {
		select {
		case got = <-changed:
			break wait
		case <-tick.C:
			os.WriteFile(other, []byte("ignored"), 0644)
			os.WriteFile(target, []byte("<iso-standard><sections/></iso-standard>"), 0644)
		case <-deadline:
			t.Fatal("timed out waiting for change notification")
		}
	}

	if got != target {
		t.Errorf("expected callback for %s, got %s", target, got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error after cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
