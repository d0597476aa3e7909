package serve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baalimago/avatarweb/internal/webserver"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func setupCommand(t *testing.T, args ...string) *command {
	t.Helper()
	ancli.Silent = true
	c := Command()
	fs := c.Flagset()
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return c
}

func Test_Setup(t *testing.T) {
	t.Run("error if flagset is not set", func(t *testing.T) {
		c := &command{}
		err := c.Setup(context.Background())
		if err == nil {
			t.Error("expected error for nil flagset")
		}
	})

	t.Run("stub sensor when no svg is set", func(t *testing.T) {
		c := setupCommand(t)
		if err := c.Setup(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, c.server.Scene(), webserver.DefaultScene)
		if c.agent == nil {
			t.Fatal("expected agent to be set")
		}
	})

	t.Run("initial scene read from svg file", func(t *testing.T) {
		svgPath := filepath.Join(t.TempDir(), "scene.svg")
		want := `<svg id="root"><rect id="r" /></svg>`
		if err := os.WriteFile(svgPath, []byte(want), 0o644); err != nil {
			t.Fatal(err)
		}
		c := setupCommand(t, "-svg", svgPath)
		if err := c.Setup(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testboil.FailTestIfDiff(t, c.server.Scene(), want)
	})

	t.Run("error on missing svg file", func(t *testing.T) {
		c := setupCommand(t, "-svg", filepath.Join(t.TempDir(), "nope.svg"))
		if err := c.Setup(context.Background()); err == nil {
			t.Fatal("expected error for missing svg file")
		}
	})

	t.Run("error on incomplete wasm dir", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "forwarder.wasm"), []byte("\x00asm"), 0o644); err != nil {
			t.Fatal(err)
		}
		c := setupCommand(t, "-wasm", dir)
		err := c.Setup(context.Background())
		if err == nil {
			t.Fatal("expected error for missing wasm_exec.js")
		}
		testboil.AssertStringContains(t, err.Error(), "wasm_exec.js")
	})

	t.Run("error on invalid queue size", func(t *testing.T) {
		c := setupCommand(t, "-queue", "0")
		if err := c.Setup(context.Background()); err == nil {
			t.Fatal("expected error for queue size 0")
		}
	})

	t.Run("journal is created at path", func(t *testing.T) {
		journalPath := filepath.Join(t.TempDir(), "journal.json")
		c := setupCommand(t, "-journal", journalPath)
		if err := c.Setup(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func Test_setupMux(t *testing.T) {
	wasmDir := t.TempDir()
	for _, f := range []string{"forwarder.wasm", "wasm_exec.js"} {
		if err := os.WriteFile(filepath.Join(wasmDir, f), []byte("content of "+f), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := setupCommand(t, "-wasm", wasmDir)
	if err := c.Setup(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mux, err := c.setupMux()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	get := func(t *testing.T, route string) *http.Response {
		t.Helper()
		resp, err := http.Get(srv.URL + route)
		if err != nil {
			t.Fatalf("GET %v failed: %v", route, err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("static assets", func(t *testing.T) {
		resp := get(t, "/static/handle_input.js")
		testboil.FailTestIfDiff(t, resp.StatusCode, http.StatusOK)
	})

	t.Run("wasm assets from dir", func(t *testing.T) {
		resp := get(t, "/wasm/forwarder.wasm")
		testboil.FailTestIfDiff(t, resp.StatusCode, http.StatusOK)
	})

	t.Run("index loads wasm forwarder", func(t *testing.T) {
		resp := get(t, "/")
		testboil.FailTestIfDiff(t, resp.StatusCode, http.StatusOK)
		b := new(strings.Builder)
		if _, err := b.ReadFrom(resp.Body); err != nil {
			t.Fatal(err)
		}
		testboil.AssertStringContains(t, b.String(), "/wasm/wasm_exec.js")
	})

	t.Run("input routes are mounted", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/on_visibility_change", "application/json", strings.NewReader(`{"visibility":"hidden"}`))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		testboil.FailTestIfDiff(t, resp.StatusCode, http.StatusOK)
		testboil.FailTestIfDiff(t, len(c.server.DrainEvents()), 1)
	})

	t.Run("input routes bypass request logging", func(t *testing.T) {
		for _, route := range []string{"/on_mouse_motion", "/on_mouse_button", "/on_visibility_change"} {
			req := httptest.NewRequest(http.MethodPost, route, strings.NewReader("{}"))
			_, pattern := mux.Handler(req)
			testboil.FailTestIfDiff(t, pattern, route)
		}
		req := httptest.NewRequest(http.MethodGet, "/svgsocket", nil)
		_, pattern := mux.Handler(req)
		testboil.FailTestIfDiff(t, pattern, "/")
	})

	t.Run("input routes keep method check", func(t *testing.T) {
		resp := get(t, "/on_mouse_motion")
		testboil.FailTestIfDiff(t, resp.StatusCode, http.StatusMethodNotAllowed)
	})
}

func Test_Run(t *testing.T) {
	t.Run("error if not setup", func(t *testing.T) {
		c := setupCommand(t)
		if err := c.Run(context.Background()); err == nil {
			t.Fatal("expected error when Run is called before Setup")
		}
	})

	t.Run("returns on context cancel", func(t *testing.T) {
		c := setupCommand(t, "-port", "0", "-cycle", "10ms")
		if err := c.Setup(context.Background()); err != nil {
			t.Fatal(err)
		}
		testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
			if err := c.Run(ctx); err != nil {
				t.Errorf("unexpected error during Run: %v", err)
			}
		}, time.Second)
	})
}
