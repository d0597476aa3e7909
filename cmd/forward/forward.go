package forward

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/baalimago/avatarweb/internal/forwarder"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

var handlers = map[string]func(*forwarder.Forwarder, forwarder.DOMEvent){
	"motion": (*forwarder.Forwarder).OnMouseMotion,
	"down":   (*forwarder.Forwarder).OnMouseDown,
	"up":     (*forwarder.Forwarder).OnMouseUp,
	"click":  (*forwarder.Forwarder).OnMouseClick,
	"enter":  (*forwarder.Forwarder).OnMouseEnter,
	"exit":   (*forwarder.Forwarder).OnMouseExitWindow,
}

type command struct {
	binPath string
	flagset *flag.FlagSet

	url    *string
	id     *string
	tag    *string
	x, y   *float64
	dx, dy *float64
	button *int

	kind   string
	failed atomic.Int64
}

func Command() *command {
	r, _ := os.Executable()
	return &command{
		binPath: r,
	}
}

func (c *command) Setup(ctx context.Context) error {
	if c.flagset == nil {
		return errors.New("flagset not set; use the Command function")
	}
	args := c.flagset.Args()
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one event kind, got: %v", args)
	}
	if _, ok := handlers[args[0]]; !ok {
		return fmt.Errorf("unknown event kind: '%v', expected one of motion, down, up, click, enter, exit", args[0])
	}
	c.kind = args[0]
	return nil
}

func (c *command) errlog(msg string, a ...any) {
	c.failed.Add(1)
	ancli.Errf(msg, a...)
}

func (c *command) Run(ctx context.Context) error {
	handle, ok := handlers[c.kind]
	if !ok {
		return errors.New("command not setup, please run Setup")
	}
	f, err := forwarder.New(
		forwarder.WithBaseURL(*c.url),
		forwarder.WithContext(ctx),
		forwarder.WithErrorLog(c.errlog),
	)
	if err != nil {
		return fmt.Errorf("failed to create forwarder: %w", err)
	}
	handle(f, forwarder.DOMEvent{
		Target: forwarder.Element{
			ID:      *c.id,
			TagName: *c.tag,
		},
		ClientX:   *c.x,
		ClientY:   *c.y,
		MovementX: *c.dx,
		MovementY: *c.dy,
		Button:    *c.button,
	})
	f.Wait()
	if n := c.failed.Load(); n > 0 {
		return fmt.Errorf("failed to forward %v event", c.kind)
	}
	ancli.Okf("forwarded %v event to: %v", c.kind, *c.url)
	return nil
}

func (c *command) Help() string {
	return "Forward one synthetic input event to an avatar webserver, the same way the page does."
}

func (c *command) Describe() string {
	return fmt.Sprintf("forward a single input event. Usage: '%v forward [flags] <motion|down|up|click|enter|exit>'.", c.binPath)
}

func (c *command) Flagset() *flag.FlagSet {
	fs := flag.NewFlagSet("forward", flag.ContinueOnError)
	c.url = fs.String("url", "http://localhost:8888", "base url of the avatar webserver")
	c.id = fs.String("id", "", "id of the target element")
	c.tag = fs.String("tag", "svg", "tag name of the target element")
	c.x = fs.Float64("x", 0, "client x position")
	c.y = fs.Float64("y", 0, "client y position")
	c.dx = fs.Float64("dx", 0, "relative x movement, motion only")
	c.dy = fs.Float64("dy", 0, "relative y movement, motion only")
	c.button = fs.Int("button", 0, "mouse button, 0 primary, 1 middle, 2 secondary")
	c.flagset = fs
	return fs
}
