// Package scene provides the svg sources the avatar agent senses each cycle.
package scene

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

type Sensor interface {
	// Sense the current svg root
	Sense(ctx context.Context) (string, error)
}

// Watcher is implemented by sensors that can signal a change between cycles.
type Watcher interface {
	// Setup returns the change and error channels, Watch must be called for them
	// to receive anything
	Setup(ctx context.Context) (<-chan struct{}, <-chan error, error)
	// Watch blocks until ctx is cancelled or watching fails catastrophically
	Watch(ctx context.Context) error
}

const stubTemplate = `<svg id="root" xmlns="http://www.w3.org/2000/svg"><circle id="circle" cx="100" cy="100" r="50" fill="%v"/></svg>`

// StubSensor returns a circle with a new random fill every time it is sensed.
type StubSensor struct {
	rng *rand.Rand
}

func NewStubSensor(seed uint64) *StubSensor {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &StubSensor{rng: rand.New(rand.NewSource(seed))}
}

func (s *StubSensor) Sense(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf(stubTemplate, s.randomColor()), nil
}

// randomColor as #RRGGBB
func (s *StubSensor) randomColor() string {
	return fmt.Sprintf("#%02X%02X%02X", s.rng.Intn(256), s.rng.Intn(256), s.rng.Intn(256))
}
