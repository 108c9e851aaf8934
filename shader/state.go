package shader

import "fmt"

// State is the lifecycle state of a Program. States only move forward.
type State uint8

const (
	NotCreated State = iota
	Created
	Sourced
	Compiled
	Sent
	Freed
	Deleted
)

func (s State) String() string {
	switch s {
	case NotCreated:
		return "NotCreated"
	case Created:
		return "Created"
	case Sourced:
		return "Sourced"
	case Compiled:
		return "Compiled"
	case Sent:
		return "Sent"
	case Freed:
		return "Freed"
	case Deleted:
		return "Deleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Alive reports whether the program holds, or may still create, GPU resources.
func (s State) Alive() bool {
	return s >= Created && s <= Sent
}
