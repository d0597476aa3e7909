package webserver

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"golang.org/x/net/websocket"
)

func (s *Server) svgSocket() http.HandlerFunc {
	return websocket.Handler(s.handleSocketConnection).ServeHTTP
}

func (s *Server) handleSocketConnection(ws *websocket.Conn) {
	defer ws.Close()
	updates, unsubscribe := s.subscribe()
	defer unsubscribe()
	ancli.Noticef("svg socket connected: %v", ws.Request().RemoteAddr)

	if err := s.sendScene(ws, s.Scene()); err != nil {
		ancli.Warnf("failed to send initial scene: %v", err)
		return
	}

	pongChan := make(chan struct{}, 1)
	// Buffer errChan so the read loop can exit once the write loop is gone
	errChan := make(chan error, 1)
	go s.readLoop(ws, pongChan, errChan)
	s.writeLoop(ws, updates, pongChan, errChan)
	ancli.Noticef("svg socket disconnected: %v", ws.Request().RemoteAddr)
}

func (s *Server) readLoop(ws *websocket.Conn, pongChan chan<- struct{}, errChan chan<- error) {
	for {
		var rawEvent struct {
			Type    model.EventType `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := websocket.JSON.Receive(ws, &rawEvent); err != nil {
			if err != io.EOF {
				s.warnlog("svg socket receive error: %v", err)
			}
			errChan <- err
			return
		}
		switch rawEvent.Type {
		case model.HealthEvent:
			select {
			case pongChan <- struct{}{}:
			default:
			}
		default:
			s.warnlog("svg socket got unexpected event type: '%v'", rawEvent.Type)
		}
	}
}

// writeLoop owns every write on ws. A ping is only sent once the previous one has
// been answered, a missing answer by the next tick closes the socket.
func (s *Server) writeLoop(ws *websocket.Conn, updates <-chan string, pongChan <-chan struct{}, errChan <-chan error) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	var pingSent time.Time

	for {
		select {
		case <-errChan:
			return
		case svg := <-updates:
			if err := s.sendScene(ws, svg); err != nil {
				s.warnlog("failed to send scene: %v", err)
				return
			}
		case <-pongChan:
			pingSent = time.Time{}
		case <-ticker.C:
			if !pingSent.IsZero() && time.Since(pingSent) >= s.pongWait {
				s.warnlog("svg socket health check timed out")
				return
			}
			if !pingSent.IsZero() {
				continue
			}
			if err := s.sendHealthPing(ws); err != nil {
				s.warnlog("failed to send health ping: %v", err)
				return
			}
			pingSent = time.Now()
		}
	}
}

func (s *Server) sendScene(ws *websocket.Conn, svg string) error {
	ev := model.Event[model.Scene]{
		Type:    model.SceneEvent,
		Created: s.now(),
		Payload: model.Scene{Root: svg},
	}
	if err := ws.SetWriteDeadline(time.Now().Add(time.Second)); err != nil {
		return err
	}
	return websocket.JSON.Send(ws, ev)
}

func (s *Server) sendHealthPing(ws *websocket.Conn) error {
	ping := model.Event[model.Health]{
		Type:    model.HealthEvent,
		Created: s.now(),
		Payload: model.Health{},
	}
	if err := ws.SetWriteDeadline(time.Now().Add(time.Second)); err != nil {
		return err
	}
	return websocket.JSON.Send(ws, ping)
}
