package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/avatarweb/internal/avatar"
	"github.com/baalimago/avatarweb/internal/webserver"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

type command struct {
	server *webserver.Server
	agent  *avatar.Agent

	binPath string

	host *string
	port *int

	flagset      *flag.FlagSet
	cacheControl *string
	tlsCertPath  *string
	tlsKeyPath   *string

	svgPath      *string
	seed         *uint64
	cycle        *time.Duration
	queueSize    *int
	journalPath  *string
	journalLimit *int
	wasmDir      *string
}

func Command() *command {
	r, _ := os.Executable()
	return &command{
		binPath: r,
	}
}

func (c *command) startServeRoutine(mux *http.ServeMux, serverErrChan chan error) func(context.Context) error {
	s := http.Server{
		Addr:              fmt.Sprintf("%v:%v", *c.host, *c.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveTLS := *c.tlsCertPath != "" && *c.tlsKeyPath != ""

	protocol := "http"
	if serveTLS {
		protocol = "https"
	}
	baseURL := fmt.Sprintf("%s://%s:%d", protocol, *c.host, *c.port)

	ancli.Okf("Server started successfully:")
	ancli.Noticef("- URL: %s", baseURL)
	if *c.svgPath != "" {
		ancli.Noticef("- Scene from: '%v'", *c.svgPath)
	} else {
		ancli.Noticef("- Scene from: stub sensor")
	}
	if *c.wasmDir != "" {
		ancli.Noticef("- Forwarder wasm served from: '%v'", *c.wasmDir)
	}
	if serveTLS {
		ancli.Noticef("- TLS enabled (cert: '%v', key: '%v')", *c.tlsCertPath, *c.tlsKeyPath)
	} else {
		ancli.Noticef("- TLS disabled")
	}

	go func() {
		var err error
		if serveTLS {
			err = s.ListenAndServeTLS(*c.tlsCertPath, *c.tlsKeyPath)
		} else {
			err = s.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	return s.Shutdown
}

func (c *command) Run(ctx context.Context) error {
	if c.server == nil || c.agent == nil {
		return errors.New("command not setup, please run Setup")
	}
	mux, err := c.setupMux()
	if err != nil {
		return fmt.Errorf("c.Run failed, err: %v", err)
	}

	serverErrChan := make(chan error, 1)
	agentErrChan := make(chan error, 1)
	serverShutdown := c.startServeRoutine(mux, serverErrChan)
	go func() {
		ancli.Noticef("starting avatar agent, cycle: %v", *c.cycle)
		if agentErr := c.agent.Start(ctx); agentErr != nil {
			agentErrChan <- agentErr
		}
	}()
	var retErr error
	select {
	case <-ctx.Done():
	case serveErr := <-serverErrChan:
		retErr = serveErr
	case agentErr := <-agentErrChan:
		retErr = agentErr
	}
	ancli.PrintNotice("initiating webserver graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := serverShutdown(shutdownCtx); err != nil {
		ancli.Errf("failed to shutdown error: %v", err)
	}
	ancli.Okf("shutdown complete")
	return retErr
}

func (c *command) Help() string {
	return "Serve the avatar page and run the agent cycle. Input events forwarded by the page are drained and attempted every cycle."
}

func (c *command) Describe() string {
	return fmt.Sprintf("the avatar webserver. Usage: '%v serve [flags]'.", c.binPath)
}

func (c *command) Flagset() *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	c.host = fs.String("host", "localhost", "hostname to serve on")
	c.port = fs.Int("port", 8888, "port to serve on")
	c.cacheControl = fs.String("cacheControl", "no-cache", "set to configure the cache-control header of static assets")

	c.tlsCertPath = fs.String("tlsCertPath", "", "set to a path to a cert, requires tlsKeyPath to be set")
	c.tlsKeyPath = fs.String("tlsKeyPath", "", "set to a path to a key, requires tlsCertPath to be set")

	c.svgPath = fs.String("svg", "", "set to an svg file to serve as scene, it is watched for changes. If unset, a stub scene with a random colour each cycle is used.")
	c.seed = fs.Uint64("seed", 0, "seed for the stub scene colours, 0 seeds from the clock")
	c.cycle = fs.Duration("cycle", time.Second, "interval of the agent cycle")
	c.queueSize = fs.Int("queue", 1024, "maximum amount of input events kept between cycles, oldest are dropped")
	c.journalPath = fs.String("journal", "", "set to a json file to record every attempted input event. Use 'default' for the user cache dir.")
	c.journalLimit = fs.Int("journalLimit", 10000, "maximum amount of events kept in the journal, 0 for unbounded")
	c.wasmDir = fs.String("wasm", "", "set to a directory holding forwarder.wasm and wasm_exec.js to use the wasm input forwarder")

	c.flagset = fs
	return fs
}
