//go:build js && wasm

// Command forwarder-wasm is the in-browser input forwarder. Build with
// GOOS=js GOARCH=wasm and serve the binary as forwarder.wasm next to wasm_exec.js,
// it replaces the global handlers the #scene listeners dispatch to.
package main

import (
	"syscall/js"

	"github.com/baalimago/avatarweb/internal/forwarder"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

func toDOMEvent(ev js.Value) forwarder.DOMEvent {
	var target forwarder.Element
	if t := ev.Get("target"); t.Truthy() {
		target.ID = stringOr(t.Get("id"))
		target.TagName = stringOr(t.Get("tagName"))
	}
	return forwarder.DOMEvent{
		Target:    target,
		ClientX:   floatOr(ev.Get("clientX")),
		ClientY:   floatOr(ev.Get("clientY")),
		MovementX: floatOr(ev.Get("movementX")),
		MovementY: floatOr(ev.Get("movementY")),
		Button:    int(floatOr(ev.Get("button"))),
	}
}

func stringOr(v js.Value) string {
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func floatOr(v js.Value) float64 {
	if v.Type() != js.TypeNumber {
		return 0
	}
	return v.Float()
}

func bind(name string, handler func(forwarder.DOMEvent)) {
	js.Global().Set(name, js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		handler(toDOMEvent(args[0]))
		return nil
	}))
}

func main() {
	ancli.UseColor = false
	origin := js.Global().Get("location").Get("origin").String()
	f, err := forwarder.New(forwarder.WithBaseURL(origin))
	if err != nil {
		ancli.Errf("failed to create forwarder: %v", err)
		return
	}

	bind("handleMouseEnter", f.OnMouseEnter)
	bind("handleMouseExitWindow", f.OnMouseExitWindow)
	bind("handleMouseMotion", f.OnMouseMotion)
	bind("handleMouseDown", f.OnMouseDown)
	bind("handleMouseUp", f.OnMouseUp)
	bind("handleMouseClick", f.OnMouseClick)
	js.Global().Set("avatarForwarder", "wasm")
	ancli.Okf("input forwarder bound to '%v'", origin)

	select {}
}
