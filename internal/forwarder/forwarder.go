// Package forwarder translates browser mouse events into JSON payloads and posts
// them, fire-and-forget, to the avatar webserver.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// Element is the DOM element an event was dispatched to.
type Element struct {
	ID      string
	TagName string
}

// DOMEvent holds the subset of a MouseEvent the forwarder reads.
type DOMEvent struct {
	Target    Element
	ClientX   float64
	ClientY   float64
	MovementX float64
	MovementY float64
	Button    int
}

type Forwarder struct {
	ctx     context.Context
	baseURL *url.URL
	client  *http.Client

	errlog  func(msg string, a ...any)
	diaglog func(msg string, a ...any)

	inFlight sync.WaitGroup
}

type Option func(*Forwarder) error

// WithBaseURL sets the origin routes are resolved against. Required outside of a
// browser since routes are relative paths.
func WithBaseURL(raw string) Option {
	return func(f *Forwarder) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("failed to parse base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url must be absolute, got: '%v'", raw)
		}
		f.baseURL = u
		return nil
	}
}

// WithHTTPClient replaces http.DefaultClient. The forwarder applies no timeout of
// its own, inject a client with one if needed.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Forwarder) error {
		if c == nil {
			return errors.New("http client must not be nil")
		}
		f.client = c
		return nil
	}
}

// WithContext sets the context all requests are issued with.
func WithContext(ctx context.Context) Option {
	return func(f *Forwarder) error {
		f.ctx = ctx
		return nil
	}
}

// WithErrorLog sets the sink for transport failures.
func WithErrorLog(fn func(msg string, a ...any)) Option {
	return func(f *Forwarder) error {
		f.errlog = fn
		return nil
	}
}

// WithDiagnosticLog sets the sink used by OnMouseExitWindow.
func WithDiagnosticLog(fn func(msg string, a ...any)) Option {
	return func(f *Forwarder) error {
		f.diaglog = fn
		return nil
	}
}

func New(opts ...Option) (*Forwarder, error) {
	f := &Forwarder{
		ctx:     context.Background(),
		client:  http.DefaultClient,
		errlog:  ancli.Errf,
		diaglog: ancli.Noticef,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// OnMouseEnter is reserved, it has no side effects.
func (f *Forwarder) OnMouseEnter(ev DOMEvent) {}

// OnMouseExitWindow logs the raw event, nothing is sent.
func (f *Forwarder) OnMouseExitWindow(ev DOMEvent) {
	f.diaglog("mouse exit window: %+v", ev)
}

func (f *Forwarder) OnMouseMotion(ev DOMEvent) {
	f.Submit(model.RouteMouseMotion, model.MotionEvent{
		ID:       ev.Target.ID,
		Type:     ev.Target.TagName,
		Position: model.Position{X: ev.ClientX, Y: ev.ClientY},
		Relative: model.Position{X: ev.MovementX, Y: ev.MovementY},
	})
}

func (f *Forwarder) OnMouseButton(ev DOMEvent, status model.ButtonStatus) {
	f.Submit(model.RouteMouseButton, model.ButtonEvent{
		ID:       ev.Target.ID,
		Type:     ev.Target.TagName,
		Status:   status,
		Position: model.Position{X: ev.ClientX, Y: ev.ClientY},
		Button:   ev.Button,
	})
}

func (f *Forwarder) OnMouseDown(ev DOMEvent) { f.OnMouseButton(ev, model.ButtonDown) }

func (f *Forwarder) OnMouseUp(ev DOMEvent) { f.OnMouseButton(ev, model.ButtonUp) }

func (f *Forwarder) OnMouseClick(ev DOMEvent) { f.OnMouseButton(ev, model.ButtonClick) }

// Submit posts data as JSON to route without blocking the caller. The response
// body is decoded and discarded. Failures are logged once and dropped.
func (f *Forwarder) Submit(route string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		f.errlog("Error: failed to encode payload for '%v': %v", route, err)
		return
	}
	f.inFlight.Add(1)
	go func() {
		defer f.inFlight.Done()
		if err := f.post(route, body); err != nil {
			f.errlog("Error: %v", err)
		}
	}()
}

// Wait blocks until every submission issued so far has completed.
func (f *Forwarder) Wait() {
	f.inFlight.Wait()
}

func (f *Forwarder) resolve(route string) (string, error) {
	ref, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("failed to parse route '%v': %w", route, err)
	}
	if f.baseURL == nil {
		return ref.String(), nil
	}
	return f.baseURL.ResolveReference(ref).String(), nil
}

func (f *Forwarder) post(route string, body []byte) error {
	target, err := f.resolve(route)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(f.ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for '%v': %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to '%v': %w", target, err)
	}
	defer resp.Body.Close()

	// Content is unused, an error reported inside a 200 body goes unnoticed.
	var discard any
	if err := json.NewDecoder(resp.Body).Decode(&discard); err != nil {
		return fmt.Errorf("failed to decode response from '%v' (status: %v): %w", target, resp.StatusCode, err)
	}
	return nil
}
