// Package event defines the window and input events the engine reacts to.
package event

import "fmt"

// Kind is the closed set of event kinds.
type Kind uint8

const (
	Unknown Kind = iota
	WindowIconify
	WindowMaximize
	WindowClose
	WindowResize
	WindowMove
	WindowFocus
	KeyPress
	KeyHold
	KeyRelease
	MousePress
	MouseHold
	MouseRelease
	MouseScroll
	DragAndDrop
)

var kindNames = [...]string{
	Unknown:        "Unknown",
	WindowIconify:  "WindowIconify",
	WindowMaximize: "WindowMaximize",
	WindowClose:    "WindowClose",
	WindowResize:   "WindowResize",
	WindowMove:     "WindowMove",
	WindowFocus:    "WindowFocus",
	KeyPress:       "KeyPress",
	KeyHold:        "KeyHold",
	KeyRelease:     "KeyRelease",
	MousePress:     "MousePress",
	MouseHold:      "MouseHold",
	MouseRelease:   "MouseRelease",
	MouseScroll:    "MouseScroll",
	DragAndDrop:    "DragAndDrop",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Event is one window or input event. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind

	// Key is the key code of key events; Button the button of mouse events.
	Key    int
	Button int
	Mods   Modifier

	// X, Y hold the cursor position of mouse events, the scroll offsets of
	// MouseScroll and the window position of WindowMove.
	X, Y float64

	// Width, Height hold the framebuffer size of WindowResize.
	Width, Height int

	// Flag is true for iconified, maximized and focused; false for the reverse.
	Flag bool

	// Paths lists the dropped files of DragAndDrop.
	Paths []string
}

// Close returns a WindowClose event.
func Close() Event { return Event{Kind: WindowClose} }

// Resize returns a WindowResize event for a framebuffer of w x h pixels.
func Resize(w, h int) Event { return Event{Kind: WindowResize, Width: w, Height: h} }

// IsWindow reports whether the event concerns the window itself.
func (e Event) IsWindow() bool { return e.Kind >= WindowIconify && e.Kind <= WindowFocus }

// IsKey reports whether the event is a keyboard event.
func (e Event) IsKey() bool { return e.Kind >= KeyPress && e.Kind <= KeyRelease }

// IsMouse reports whether the event is a mouse button or scroll event.
func (e Event) IsMouse() bool { return e.Kind >= MousePress && e.Kind <= MouseScroll }

func (e Event) String() string {
	switch {
	case e.Kind == WindowResize:
		return fmt.Sprintf("%s(%dx%d)", e.Kind, e.Width, e.Height)
	case e.IsKey():
		return fmt.Sprintf("%s(key=%d mods=%d)", e.Kind, e.Key, e.Mods)
	case e.Kind == MouseScroll:
		return fmt.Sprintf("%s(%g, %g)", e.Kind, e.X, e.Y)
	case e.IsMouse():
		return fmt.Sprintf("%s(button=%d)", e.Kind, e.Button)
	case e.Kind == DragAndDrop:
		return fmt.Sprintf("%s(%d files)", e.Kind, len(e.Paths))
	}
	return e.Kind.String()
}
