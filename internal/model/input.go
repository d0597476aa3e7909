package model

import (
	"errors"
	"fmt"
	"time"
)

// Position is a pair of viewport coordinates, or a movement delta, as delivered by the
// browser. Browsers may report fractional values, so both axes are floats.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MotionEvent is posted to RouteMouseMotion for every mousemove in the page.
type MotionEvent struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Relative Position `json:"relative"`
}

type ButtonStatus string

const (
	ButtonDown  ButtonStatus = "down"
	ButtonUp    ButtonStatus = "up"
	ButtonClick ButtonStatus = "click"
)

func (s ButtonStatus) Valid() bool {
	switch s {
	case ButtonDown, ButtonUp, ButtonClick:
		return true
	}
	return false
}

// ButtonEvent is posted to RouteMouseButton for mousedown, mouseup and click.
// Button follows the DOM convention: 0 primary, 1 middle, 2 secondary.
type ButtonEvent struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Status   ButtonStatus `json:"status"`
	Position Position     `json:"position"`
	Button   int          `json:"button"`
}

type Visibility string

const (
	Visible Visibility = "visible"
	Hidden  Visibility = "hidden"
)

type VisibilityEvent struct {
	Visibility Visibility `json:"visibility"`
}

func (v VisibilityEvent) Validate() error {
	switch v.Visibility {
	case Visible, Hidden:
		return nil
	}
	return fmt.Errorf("invalid value for `visibility` %q, valid values include: [`%v`, `%v`]", v.Visibility, Visible, Hidden)
}

const (
	RouteMouseMotion      = "/on_mouse_motion"
	RouteMouseButton      = "/on_mouse_button"
	RouteVisibilityChange = "/on_visibility_change"
)

type InputKind string

const (
	MotionKind     InputKind = "motion"
	ButtonKind     InputKind = "button"
	VisibilityKind InputKind = "visibility"
)

// InputEvent is a received event as queued by the server, exactly one of the
// payload pointers is set and matches Kind.
type InputEvent struct {
	ID       string    `json:"id"`
	Kind     InputKind `json:"kind"`
	Received time.Time `json:"received"`
	// Target is the id of the element the event originated from, nil if the
	// element had no id.
	Target *string `json:"target,omitempty"`

	Motion     *MotionEvent     `json:"motion,omitempty"`
	Button     *ButtonEvent     `json:"button,omitempty"`
	Visibility *VisibilityEvent `json:"visibility,omitempty"`
}

// Target maps an element id to a target, an empty id means no target.
func Target(id string) *string {
	if len(id) == 0 {
		return nil
	}
	return &id
}

func (e InputEvent) Validate() error {
	var set int
	for _, p := range []bool{e.Motion != nil, e.Button != nil, e.Visibility != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("input event must carry exactly one payload, got: %v", set)
	}
	switch e.Kind {
	case MotionKind:
		if e.Motion == nil {
			return errors.New("motion event without motion payload")
		}
	case ButtonKind:
		if e.Button == nil {
			return errors.New("button event without button payload")
		}
	case VisibilityKind:
		if e.Visibility == nil {
			return errors.New("visibility event without visibility payload")
		}
	default:
		return fmt.Errorf("unknown input kind: %q", e.Kind)
	}
	return nil
}
