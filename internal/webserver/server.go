// Package webserver hosts the avatar page, receives the forwarded input events and
// pushes svg scenes to connected browsers.
package webserver

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/baalimago/avatarweb/internal/loghandler"
	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// DefaultScene is shown until the first scene update.
const DefaultScene = `<svg id="root" xmlns="http://www.w3.org/2000/svg"></svg>`

const (
	defaultQueueSize = 1024
	defaultHeartbeat = 5 * time.Second
	defaultPongWait  = time.Second
)

type Server struct {
	title       string
	wasmEnabled bool
	page        *template.Template

	sceneMu     sync.RWMutex
	scene       string
	subscribers map[chan string]struct{}

	queueMu   sync.Mutex
	queue     []model.InputEvent
	queueSize int
	dropped   int

	heartbeat time.Duration
	pongWait  time.Duration

	now     func() time.Time
	newID   func() string
	warnlog func(msg string, a ...any)
}

type Option func(*Server)

// WithQueueSize bounds the amount of undrained input events, the oldest event is
// dropped once full.
func WithQueueSize(n int) Option {
	return func(s *Server) {
		s.queueSize = n
	}
}

func WithHeartbeat(interval, pongWait time.Duration) Option {
	return func(s *Server) {
		s.heartbeat = interval
		s.pongWait = pongWait
	}
}

func WithInitialScene(svg string) Option {
	return func(s *Server) {
		s.scene = svg
	}
}

// WithWasm makes the page load forwarder.wasm from /wasm/ on top of the js shim.
func WithWasm(enabled bool) Option {
	return func(s *Server) {
		s.wasmEnabled = enabled
	}
}

func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

func New(opts ...Option) (*Server, error) {
	page, err := template.ParseFS(frontendFiles, "frontend/index.html.tmpl")
	if err != nil {
		return nil, err
	}
	s := &Server{
		title:       "avatarweb",
		page:        page,
		scene:       DefaultScene,
		subscribers: make(map[chan string]struct{}),
		queueSize:   defaultQueueSize,
		heartbeat:   defaultHeartbeat,
		pongWait:    defaultPongWait,
		now:         time.Now,
		newID:       newEventID,
		warnlog:     ancli.Warnf,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.queueSize <= 0 {
		return nil, errors.New("queue size must be positive")
	}
	if s.heartbeat <= 0 || s.pongWait <= 0 {
		return nil, errors.New("heartbeat interval and pong wait must be positive")
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler())
	mux.HandleFunc("POST "+model.RouteMouseMotion, s.mouseMotionHandler())
	mux.HandleFunc("POST "+model.RouteMouseButton, s.mouseButtonHandler())
	mux.HandleFunc("POST "+model.RouteVisibilityChange, s.visibilityHandler())
	mux.HandleFunc("POST /log", loghandler.Func())
	mux.HandleFunc("GET /svgsocket", s.svgSocket())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// StaticFS holds the frontend scripts, mounted under /static/ by the caller.
func (s *Server) StaticFS() (fs.FS, error) {
	return fs.Sub(frontendFiles, "frontend/static")
}

// UpdateScene replaces the current svg root and notifies every connected socket.
func (s *Server) UpdateScene(svg string) {
	s.sceneMu.Lock()
	defer s.sceneMu.Unlock()
	s.scene = svg
	for sub := range s.subscribers {
		// Buffer holds one scene, a slow socket only ever gets the latest
		select {
		case <-sub:
		default:
		}
		sub <- svg
	}
}

func (s *Server) Scene() string {
	s.sceneMu.RLock()
	defer s.sceneMu.RUnlock()
	return s.scene
}

func (s *Server) subscribe() (<-chan string, func()) {
	sub := make(chan string, 1)
	s.sceneMu.Lock()
	s.subscribers[sub] = struct{}{}
	s.sceneMu.Unlock()
	return sub, func() {
		s.sceneMu.Lock()
		delete(s.subscribers, sub)
		s.sceneMu.Unlock()
	}
}

// Subscribers returns the amount of connected svg sockets.
func (s *Server) Subscribers() int {
	s.sceneMu.RLock()
	defer s.sceneMu.RUnlock()
	return len(s.subscribers)
}

func (s *Server) enqueue(ev model.InputEvent) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if len(s.queue) >= s.queueSize {
		s.queue = s.queue[1:]
		s.dropped++
		s.warnlog("input queue full, dropped oldest event (total dropped: %v)", s.dropped)
	}
	s.queue = append(s.queue, ev)
}

// DrainEvents returns every queued input event in arrival order and empties the queue.
func (s *Server) DrainEvents() []model.InputEvent {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	ret := s.queue
	s.queue = nil
	return ret
}
