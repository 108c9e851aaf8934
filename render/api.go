package render

import (
	"fmt"
	"strings"
)

// API identifies a graphics backend. The set is closed.
type API uint8

const (
	// OpenGL selects the OpenGL 4.x core backend.
	OpenGL API = iota
	// Vulkan selects the Vulkan 1.x backend.
	Vulkan
)

// APIs lists every API in declaration order.
var APIs = []API{OpenGL, Vulkan}

// String returns the API name.
func (a API) String() string {
	switch a {
	case OpenGL:
		return "OpenGL"
	case Vulkan:
		return "Vulkan"
	default:
		return fmt.Sprintf("API(%d)", uint8(a))
	}
}

// Valid reports whether a is one of the known APIs.
func (a API) Valid() bool {
	return a <= Vulkan
}

// ParseAPI parses an API name, case-insensitively.
func ParseAPI(s string) (API, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opengl", "gl":
		return OpenGL, nil
	case "vulkan", "vk":
		return Vulkan, nil
	}
	return 0, fmt.Errorf("render: unknown api %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a API) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("render: invalid api %d", uint8(a))
	}
	return []byte(strings.ToLower(a.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *API) UnmarshalText(text []byte) error {
	v, err := ParseAPI(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
