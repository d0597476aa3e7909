package main

import (
	"context"
	"os"

	"github.com/baalimago/avatarweb/cmd/forward"
	"github.com/baalimago/avatarweb/cmd/serve"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/wd-41/cmd"
	"github.com/baalimago/wd-41/cmd/version"
)

var commands = map[string]cmd.Command{
	"s|serve":   serve.Command(),
	"f|forward": forward.Command(),
	"v|version": version.Command(),
}

const usage = `== Avatarweb ==

This tool serves an svg scene to a browser and forwards every mouse
interaction inside of it back to an avatar agent.

The agent senses a new scene every cycle, either from a watched svg file
or from a stub which picks a random colour, pushes it to every connected
page over a websocket, and attempts the input events received since the
last cycle.

The page posts its mouse events with the forwarder, the forward command
posts the same payloads from a terminal. Useful to poke a running agent:

  avatarweb forward -url http://localhost:8888 -id circle -x 100 -y 100 click

Commands:
%v`

func run(args []string) int {
	ancli.Newline = true
	ancli.SetupSlog()
	version.Name = "Avatarweb"
	ctx, cancel := context.WithCancel(context.Background())
	exitCodeChan := make(chan int, 1)
	go func() {
		exitCodeChan <- cmd.Run(ctx, args, commands, usage)
		cancel()
	}()
	shutdown.MonitorV2(ctx, cancel)
	return <-exitCodeChan
}

func main() {
	os.Exit(run(os.Args))
}
