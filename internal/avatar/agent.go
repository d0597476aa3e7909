// Package avatar runs the agent cycle: sense a scene, push it to the browser, then
// act upon every input event the browser forwarded since the last cycle.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/avatarweb/internal/scene"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

type SceneServer interface {
	UpdateScene(svg string)
	DrainEvents() []model.InputEvent
}

type Actuator interface {
	Attempt(ctx context.Context, ev model.InputEvent) error
}

type Recorder interface {
	Add(events ...model.InputEvent) error
}

// errorListener forwards errors of a sub routine, prefixed with its name.
type errorListener struct {
	stopContext func()
	name        string
	in          <-chan error
	out         chan<- error
}

func (el *errorListener) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, open := <-el.in:
			if !open {
				return
			}
			select {
			case el.out <- fmt.Errorf("%v: %w", el.name, e):
			case <-ctx.Done():
				return
			}
		}
	}
}

type Agent struct {
	sensor   scene.Sensor
	server   SceneServer
	actuator Actuator
	journal  Recorder
	cycle    time.Duration

	lastScene     string
	sceneChanges  <-chan struct{}
	errorChannels map[string]errorListener
	errorUpdates  chan error
	errlog        func(msg string, a ...any)
}

type Option func(*Agent)

func WithSensor(s scene.Sensor) Option {
	return func(a *Agent) {
		a.sensor = s
	}
}

func WithServer(s SceneServer) Option {
	return func(a *Agent) {
		a.server = s
	}
}

func WithActuator(act Actuator) Option {
	return func(a *Agent) {
		a.actuator = act
	}
}

// WithJournal records every drained event after it has been attempted.
func WithJournal(r Recorder) Option {
	return func(a *Agent) {
		a.journal = r
	}
}

func WithCycle(d time.Duration) Option {
	return func(a *Agent) {
		a.cycle = d
	}
}

func New(opts ...Option) *Agent {
	a := &Agent{
		actuator:      &LogActuator{},
		cycle:         time.Second,
		errorChannels: make(map[string]errorListener),
		errorUpdates:  make(chan error, 100),
		errlog:        ancli.Errf,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) registerErrorChannel(ctx context.Context, subRoutineName string, errChan <-chan error) error {
	_, exists := a.errorChannels[subRoutineName]
	if exists {
		return fmt.Errorf("error channel with name '%v' already exists", subRoutineName)
	}

	errChanCtx, errChanCtxCancel := context.WithCancel(ctx)
	errL := errorListener{
		name:        subRoutineName,
		stopContext: errChanCtxCancel,
		in:          errChan,
		out:         a.errorUpdates,
	}
	go errL.start(errChanCtx)

	a.errorChannels[subRoutineName] = errL
	return nil
}

func (a *Agent) Setup(ctx context.Context) error {
	if a.sensor == nil {
		return errors.New("sensor must be set, please create Agent with some sensor")
	}
	if a.server == nil {
		return errors.New("server must be set, please create Agent with some server")
	}
	if a.actuator == nil {
		return errors.New("actuator must not be nil")
	}
	if a.cycle <= 0 {
		return fmt.Errorf("cycle must be positive, got: %v", a.cycle)
	}
	if w, ok := a.sensor.(scene.Watcher); ok {
		changes, watchErrors, err := w.Setup(ctx)
		if err != nil {
			return fmt.Errorf("setup sensor watcher: %w", err)
		}
		a.sceneChanges = changes
		if err := a.registerErrorChannel(ctx, "sensor", watchErrors); err != nil {
			return fmt.Errorf("failed to add sensor error chan: %w", err)
		}
	}
	ancli.Okf("avatar.Setup OK")
	return nil
}

// Start the cycle, blocking until ctx is cancelled. A cycle runs immediately so
// the first scene is pushed without waiting a full period.
func (a *Agent) Start(ctx context.Context) error {
	if a.server == nil || a.sensor == nil {
		return errors.New("agent not setup, please run Setup")
	}
	watchErrChan := make(chan error, 1)
	if w, ok := a.sensor.(scene.Watcher); ok && a.sceneChanges != nil {
		go func() {
			watchErrChan <- w.Watch(ctx)
		}()
	}

	tick := time.NewTicker(a.cycle)
	defer tick.Stop()
	a.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			a.Cycle(ctx)
		case <-a.sceneChanges:
			a.sense(ctx)
		case err := <-a.errorUpdates:
			a.errlog("avatar sub routine error: %v", err)
		case err := <-watchErrChan:
			if err != nil {
				a.errlog("sensor watcher stopped, scene updates limited to cycle: %v", err)
			}
			a.sceneChanges = nil
		}
	}
}

// Cycle runs one sense, push, act iteration.
func (a *Agent) Cycle(ctx context.Context) {
	a.sense(ctx)
	a.act(ctx)
}

func (a *Agent) sense(ctx context.Context) {
	svg, err := a.sensor.Sense(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.errlog("failed to sense scene: %v", err)
		}
		return
	}
	if svg == a.lastScene {
		return
	}
	a.lastScene = svg
	a.server.UpdateScene(svg)
}

func (a *Agent) act(ctx context.Context) {
	events := a.server.DrainEvents()
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		if err := a.actuator.Attempt(ctx, ev); err != nil {
			a.errlog("failed to attempt %v event '%v': %v", ev.Kind, ev.ID, err)
		}
	}
	if a.journal != nil {
		if err := a.journal.Add(events...); err != nil {
			a.errlog("failed to journal events: %v", err)
		}
	}
}
