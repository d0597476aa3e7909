package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func buttonEvent(id string) model.InputEvent {
	return model.InputEvent{
		ID:       id,
		Kind:     model.ButtonKind,
		Received: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Target:   model.Target("btn1"),
		Button: &model.ButtonEvent{
			ID:       "btn1",
			Type:     "BUTTON",
			Status:   model.ButtonClick,
			Position: model.Position{X: 120, Y: 45},
		},
	}
}

func TestJournal(t *testing.T) {
	ancli.Silent = true
	defer func() { ancli.Silent = false }()

	t.Run("missing file starts empty", func(t *testing.T) {
		j, err := New(filepath.Join(t.TempDir(), "journal.json"), 0)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		testboil.FailTestIfDiff(t, len(j.Get()), 0)
	})

	t.Run("events persist across instances", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "nested", "journal.json")
		j, err := New(p, 0)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := j.Add(buttonEvent("a"), buttonEvent("b")); err != nil {
			t.Fatalf("Add: %v", err)
		}

		reloaded, err := New(p, 0)
		if err != nil {
			t.Fatalf("New (reload): %v", err)
		}
		got := reloaded.Get()
		testboil.FailTestIfDiff(t, len(got), 2)
		testboil.FailTestIfDiff(t, got[0].ID, "a")
		testboil.FailTestIfDiff(t, *got[1].Button, *buttonEvent("b").Button)
		testboil.FailTestIfDiff(t, *got[1].Target, "btn1")
	})

	t.Run("limit evicts oldest", func(t *testing.T) {
		j, err := New(filepath.Join(t.TempDir(), "journal.json"), 2)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := range 5 {
			if err := j.Add(buttonEvent(fmt.Sprint(i))); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
		got := j.Get()
		testboil.FailTestIfDiff(t, len(got), 2)
		testboil.FailTestIfDiff(t, got[0].ID, "3")
		testboil.FailTestIfDiff(t, got[1].ID, "4")
	})

	t.Run("limit applies to loaded file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "journal.json")
		unbounded, err := New(p, 0)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := range 5 {
			if err := unbounded.Add(buttonEvent(fmt.Sprint(i))); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}

		bounded, err := New(p, 2)
		if err != nil {
			t.Fatalf("New (bounded): %v", err)
		}
		got := bounded.Get()
		testboil.FailTestIfDiff(t, len(got), 2)
		testboil.FailTestIfDiff(t, got[0].ID, "3")
		testboil.FailTestIfDiff(t, got[1].ID, "4")
	})

	t.Run("get returns a copy", func(t *testing.T) {
		j, _ := New(filepath.Join(t.TempDir(), "journal.json"), 0)
		_ = j.Add(buttonEvent("a"))
		got := j.Get()
		got[0].ID = "mutated"
		testboil.FailTestIfDiff(t, j.Get()[0].ID, "a")
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "journal.json")
		if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := New(p, 0); err == nil {
			t.Fatal("expected error for corrupt journal")
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		if _, err := New("", 0); err == nil {
			t.Error("expected error for empty path")
		}
		if _, err := New(filepath.Join(t.TempDir(), "j.json"), -1); err == nil {
			t.Error("expected error for negative limit")
		}
	})
}
