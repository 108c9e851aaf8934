package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wave-engine/wave/render"
)

type fakeDevice struct {
	api        render.API
	extensions map[string]bool
	maxVersion int

	created  []*fakeBackend
	failNext error
}

func newFakeDevice(api render.API) *fakeDevice {
	return &fakeDevice{api: api, extensions: map[string]bool{}, maxVersion: 460}
}

func (d *fakeDevice) API() render.API               { return d.api }
func (d *fakeDevice) HasExtension(name string) bool { return d.extensions[name] }
func (d *fakeDevice) MaxShaderVersion() int          { return d.maxVersion }

func (d *fakeDevice) NewShaderBackend(cfg BackendConfig) (Backend, error) {
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return nil, err
	}
	b := &fakeBackend{api: d.api, cfg: cfg, uploads: map[string]Uniform{}}
	d.created = append(d.created, b)
	return b, nil
}

type fakeBackend struct {
	api render.API
	cfg BackendConfig

	sourced, compiled, linked, frees int
	failSource, failCompile, failLink error

	id      uint64
	uploads map[string]Uniform
}

func (b *fakeBackend) API() render.API { return b.api }

func (b *fakeBackend) Source(stages []*Stage) error {
	b.sourced++
	if err := b.failSource; err != nil {
		b.failSource = nil
		return err
	}
	return nil
}

func (b *fakeBackend) Compile(stages []*Stage) error {
	b.compiled++
	if err := b.failCompile; err != nil {
		b.failCompile = nil
		return err
	}
	return nil
}

func (b *fakeBackend) Link(stages []*Stage) error {
	b.linked++
	if err := b.failLink; err != nil {
		b.failLink = nil
		return err
	}
	b.id = 7
	return nil
}

func (b *fakeBackend) ID() uint64 { return b.id }

func (b *fakeBackend) Upload(name string, value Uniform) error {
	if name == "missing" {
		return ErrUniformNotFound
	}
	b.uploads[name] = value
	return nil
}

func (b *fakeBackend) Free() error {
	b.frees++
	b.id = 0
	return nil
}

const (
	vertexSource = `#version 330 core
layout(location = 0) in vec3 a_position;
void main() { gl_Position = vec4(a_position, 1.0); }
`
	fragmentSource = `#version 330 core
out vec4 color;
void main() { color = vec4(1.0); }
`
	portableSource = `#version 430 core
layout(binding = 0) uniform Camera { mat4 view; };
void main() {}
`
)

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// spirvModule returns a minimal byte stream starting with the SPIR-V magic.
func spirvModule() []byte {
	return Bytes([]uint32{SpirVMagic, 0x00010000, 0, 1, 0})
}
