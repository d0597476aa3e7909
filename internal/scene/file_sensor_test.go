package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func writeSVG(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write svg: %v", err)
	}
}

func TestFileSensor_Sense(t *testing.T) {
	ancli.Silent = true
	defer func() { ancli.Silent = false }()

	t.Run("reads trimmed svg", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "scene.svg")
		writeSVG(t, p, "\n<svg id=\"root\"></svg>\n")
		fs, err := NewFileSensor(p)
		if err != nil {
			t.Fatalf("NewFileSensor: %v", err)
		}
		got, err := fs.Sense(context.Background())
		if err != nil {
			t.Fatalf("Sense: %v", err)
		}
		testboil.FailTestIfDiff(t, got, `<svg id="root"></svg>`)
	})

	t.Run("missing file", func(t *testing.T) {
		fs, err := NewFileSensor(filepath.Join(t.TempDir(), "nope.svg"))
		if err != nil {
			t.Fatalf("NewFileSensor: %v", err)
		}
		_, err = fs.Sense(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		testboil.AssertStringContains(t, err.Error(), "does not exist")
	})

	t.Run("not an svg", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "scene.svg")
		writeSVG(t, p, "hello")
		fs, _ := NewFileSensor(p)
		if _, err := fs.Sense(context.Background()); err == nil {
			t.Fatal("expected error for non svg content")
		}
	})
}

func TestFileSensor_Watch(t *testing.T) {
	ancli.Silent = true
	defer func() { ancli.Silent = false }()

	t.Run("it should notify on write", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, "scene.svg")
		writeSVG(t, p, `<svg id="root"></svg>`)
		fs, err := NewFileSensor(p)
		if err != nil {
			t.Fatalf("NewFileSensor: %v", err)
		}
		changes, _, err := fs.Setup(context.Background())
		if err != nil {
			t.Fatalf("Setup: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			_ = fs.Watch(ctx)
		}()
		// Give the watcher time to register the directory
		time.Sleep(100 * time.Millisecond)

		writeSVG(t, p, `<svg id="root"><rect/></svg>`)
		select {
		case <-changes:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for change notification")
		}
	})

	t.Run("it should ignore other files", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, "scene.svg")
		writeSVG(t, p, `<svg id="root"></svg>`)
		fs, _ := NewFileSensor(p)
		changes, _, _ := fs.Setup(context.Background())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			_ = fs.Watch(ctx)
		}()
		time.Sleep(100 * time.Millisecond)

		writeSVG(t, filepath.Join(dir, "other.svg"), `<svg></svg>`)
		select {
		case <-changes:
			t.Fatal("unexpected change notification")
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("it should error on missing directory", func(t *testing.T) {
		fs, _ := NewFileSensor(filepath.Join(t.TempDir(), "gone", "scene.svg"))
		err := fs.Watch(context.Background())
		if err == nil {
			t.Fatal("expected error")
		}
		testboil.AssertStringContains(t, err.Error(), "failed to get file info")
	})

	t.Run("it should return on context cancel", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "scene.svg")
		writeSVG(t, p, `<svg></svg>`)
		fs, _ := NewFileSensor(p)
		testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
			_ = fs.Watch(ctx)
		}, time.Second)
	})
}
