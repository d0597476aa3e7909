package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/google/uuid"
)

const maxBodySize = 1 << 20

func newEventID() string {
	return uuid.NewString()
}

// motionRequest and buttonRequest use pointers so that missing keys can be told
// apart from zero values.
type motionRequest struct {
	ID       *string         `json:"id"`
	Type     string          `json:"type"`
	Position *model.Position `json:"position"`
	Relative *model.Position `json:"relative"`
}

type buttonRequest struct {
	ID       *string             `json:"id"`
	Type     string              `json:"type"`
	Status   *model.ButtonStatus `json:"status"`
	Position *model.Position     `json:"position"`
	Button   *int                `json:"button"`
}

func missing(fields ...string) error {
	return fmt.Errorf("missing required field(s): %v", fields)
}

func (r motionRequest) toEvent() (model.MotionEvent, error) {
	var absent []string
	if r.ID == nil {
		absent = append(absent, "id")
	}
	if r.Position == nil {
		absent = append(absent, "position")
	}
	if r.Relative == nil {
		absent = append(absent, "relative")
	}
	if len(absent) > 0 {
		return model.MotionEvent{}, missing(absent...)
	}
	return model.MotionEvent{
		ID:       *r.ID,
		Type:     r.Type,
		Position: *r.Position,
		Relative: *r.Relative,
	}, nil
}

func (r buttonRequest) toEvent() (model.ButtonEvent, error) {
	var absent []string
	if r.ID == nil {
		absent = append(absent, "id")
	}
	if r.Position == nil {
		absent = append(absent, "position")
	}
	if r.Button == nil {
		absent = append(absent, "button")
	}
	if r.Status == nil {
		absent = append(absent, "status")
	}
	if len(absent) > 0 {
		return model.ButtonEvent{}, missing(absent...)
	}
	if !r.Status.Valid() {
		return model.ButtonEvent{}, fmt.Errorf("invalid value for `status` %q, valid values include: [`%v`, `%v`, `%v`]",
			*r.Status, model.ButtonDown, model.ButtonUp, model.ButtonClick)
	}
	return model.ButtonEvent{
		ID:       *r.ID,
		Type:     r.Type,
		Status:   *r.Status,
		Position: *r.Position,
		Button:   *r.Button,
	}, nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ancli.Errf("failed to encode response: %v", err)
	}
}

// invalidPost replies the way every input route fails: status 500 with the error
// message in the json body.
func invalidPost(w http.ResponseWriter, r *http.Request, err error) {
	ancli.Errf("invalid post request to '%v': %v", r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) accept(w http.ResponseWriter, ev model.InputEvent) {
	ev.ID = s.newID()
	ev.Received = s.now()
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Noticef("received input event:\n%v", debug.IndentedJsonFmt(ev))
	}
	s.enqueue(ev)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) mouseMotionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req motionRequest
		if err := decodeBody(r, &req); err != nil {
			invalidPost(w, r, err)
			return
		}
		motion, err := req.toEvent()
		if err != nil {
			invalidPost(w, r, err)
			return
		}
		s.accept(w, model.InputEvent{
			Kind:   model.MotionKind,
			Target: model.Target(motion.ID),
			Motion: &motion,
		})
	}
}

func (s *Server) mouseButtonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buttonRequest
		if err := decodeBody(r, &req); err != nil {
			invalidPost(w, r, err)
			return
		}
		button, err := req.toEvent()
		if err != nil {
			invalidPost(w, r, err)
			return
		}
		s.accept(w, model.InputEvent{
			Kind:   model.ButtonKind,
			Target: model.Target(button.ID),
			Button: &button,
		})
	}
}

func (s *Server) visibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var vis model.VisibilityEvent
		if err := decodeBody(r, &vis); err != nil {
			invalidPost(w, r, err)
			return
		}
		if err := vis.Validate(); err != nil {
			invalidPost(w, r, err)
			return
		}
		s.accept(w, model.InputEvent{
			Kind:       model.VisibilityKind,
			Visibility: &vis,
		})
	}
}
