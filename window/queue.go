package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/wave-engine/wave/event"
)

// Queue buffers events between two polls. glfw runs callbacks on the thread
// calling PollEvents, so no locking is needed.
type Queue struct {
	events []event.Event
}

// Push appends ev.
func (q *Queue) Push(ev event.Event) { q.events = append(q.events, ev) }

// Len returns the number of pending events.
func (q *Queue) Len() int { return len(q.events) }

// Drain returns the pending events in arrival order and empties the queue.
func (q *Queue) Drain() []event.Event {
	out := q.events
	q.events = nil
	return out
}

func actionKind(action glfw.Action, press, hold, release event.Kind) event.Kind {
	switch action {
	case glfw.Press:
		return press
	case glfw.Repeat:
		return hold
	case glfw.Release:
		return release
	default:
		return event.Unknown
	}
}

func modifiers(mods glfw.ModifierKey) event.Modifier {
	var m event.Modifier
	if mods&glfw.ModShift != 0 {
		m |= event.ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= event.ModControl
	}
	if mods&glfw.ModAlt != 0 {
		m |= event.ModAlt
	}
	if mods&glfw.ModSuper != 0 {
		m |= event.ModSuper
	}
	return m
}

func keyEvent(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) event.Event {
	return event.Event{
		Kind: actionKind(action, event.KeyPress, event.KeyHold, event.KeyRelease),
		Key:  int(key),
		Mods: modifiers(mods),
	}
}

func mouseEvent(button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey, x, y float64) event.Event {
	return event.Event{
		Kind:   actionKind(action, event.MousePress, event.MouseHold, event.MouseRelease),
		Button: int(button),
		Mods:   modifiers(mods),
		X:      x,
		Y:      y,
	}
}
