package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestChangeKind(t *testing.T) {
	tests := []struct {
		path string
		want ChangeKind
	}{
		{"physics.yaml", ChangeConfig},
		{"scene.YML", ChangeConfig},
		{"scripts/filter.tengo", ChangeScript},
		{"notes.txt", 0},
		{"physics.yaml~", 0},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := changeKind(tc.path); got != tc.want {
				t.Fatalf("changeKind(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(target, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-w.Events:
			if filepath.Base(c.Path) == "ignored.txt" {
				t.Fatalf("unexpected change for %s", c.Path)
			}
			if c.Path == target && c.Kind == ChangeConfig {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for change")
		}
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := w.Poll(); len(got) != 0 {
		t.Fatalf("Poll after Close = %v", got)
	}
}
