package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/baalimago/avatarweb/internal/avatar"
	"github.com/baalimago/avatarweb/internal/journal"
	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/avatarweb/internal/scene"
	"github.com/baalimago/avatarweb/internal/webserver"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	wd41serve "github.com/baalimago/wd-41/cmd/serve"
)

func (c *command) Setup(ctx context.Context) error {
	if c.flagset == nil {
		return errors.New("flagset not set; use the Command function")
	}

	////////////
	// Sensor setup
	////////////
	var sensor scene.Sensor
	initialScene := webserver.DefaultScene
	if *c.svgPath != "" {
		fileSensor, err := scene.NewFileSensor(*c.svgPath)
		if err != nil {
			return fmt.Errorf("failed to create svg file sensor: %w", err)
		}
		svg, err := fileSensor.Sense(ctx)
		if err != nil {
			return fmt.Errorf("failed to read initial scene: %w", err)
		}
		initialScene = svg
		sensor = fileSensor
	} else {
		sensor = scene.NewStubSensor(*c.seed)
	}

	////////////
	// Wasm setup
	////////////
	if *c.wasmDir != "" {
		for _, f := range []string{"forwarder.wasm", "wasm_exec.js"} {
			if _, err := os.Stat(filepath.Join(*c.wasmDir, f)); err != nil {
				return fmt.Errorf("wasm dir '%v' is missing '%v': %w", *c.wasmDir, f, err)
			}
		}
	}

	////////////
	// Webserver setup
	////////////
	server, err := webserver.New(
		webserver.WithInitialScene(initialScene),
		webserver.WithQueueSize(*c.queueSize),
		webserver.WithWasm(*c.wasmDir != ""),
	)
	if err != nil {
		return fmt.Errorf("failed to create webserver: %w", err)
	}
	c.server = server

	////////////
	// Agent setup
	////////////
	opts := []avatar.Option{
		avatar.WithSensor(sensor),
		avatar.WithServer(server),
		avatar.WithCycle(*c.cycle),
	}
	if *c.journalPath != "" {
		p := *c.journalPath
		if p == "default" {
			p, err = journal.DefaultPath()
			if err != nil {
				return err
			}
		}
		j, err := journal.New(p, *c.journalLimit)
		if err != nil {
			return fmt.Errorf("failed to create journal: %w", err)
		}
		opts = append(opts, avatar.WithJournal(j))
	} else {
		ancli.Noticef("journal disabled")
	}
	c.agent = avatar.New(opts...)
	if err := c.agent.Setup(ctx); err != nil {
		return fmt.Errorf("failed to setup agent: %w", err)
	}

	return nil
}

var inputRoutes = []string{
	model.RouteMouseMotion,
	model.RouteMouseButton,
	model.RouteVisibilityChange,
}

func (c *command) setupMux() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	staticFs, err := c.server.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("c.setupMux failed to get static files: %w", err)
	}
	mux.Handle("/static/", http.StripPrefix("/static", c.assetHandler(http.FS(staticFs))))
	if *c.wasmDir != "" {
		mux.Handle("/wasm/", http.StripPrefix("/wasm", c.assetHandler(http.Dir(*c.wasmDir))))
	}
	h := c.server.Handler()
	// Input routes fire per mouse movement, keep them out of the request log.
	for _, route := range inputRoutes {
		mux.Handle(route, h)
	}
	mux.Handle("/", wd41serve.SlogHandler(h))
	return mux, nil
}

func (c *command) assetHandler(fs http.FileSystem) http.Handler {
	fsh := http.FileServer(fs)
	fsh = wd41serve.SlogHandler(fsh)
	fsh = wd41serve.CacheHandler(fsh, *c.cacheControl)
	fsh = wd41serve.CrossOriginIsolationHandler(fsh)
	return fsh
}
