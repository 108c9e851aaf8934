package main

import (
	"path/filepath"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/asset"
	"github.com/wave-engine/wave/engine"
	"github.com/wave-engine/wave/event"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/scene"
	"github.com/wave-engine/wave/shader"
)

const vertexSource = `#version 460 core
layout(location = 1) in vec3 a_position;
layout(location = 2) in vec3 a_normal;
layout(location = 3) in vec4 a_color;

layout(std140, binding = 0) uniform Camera {
  mat4 view;
  mat4 projection;
};

#ifdef Vulkan
layout(push_constant) uniform Push {
  float u_time;
  mat4 u_model_matrix;
};
#else
uniform float u_time;
uniform mat4 u_model_matrix;
#endif

layout(location = 0) out vec3 v_normal;
layout(location = 1) out vec4 v_color;

void main() {
  v_normal = mat3(u_model_matrix) * a_normal;
  v_color = a_color * (0.75 + 0.25 * sin(u_time));
  gl_Position = projection * view * u_model_matrix * vec4(a_position, 1.0);
}
`

const fragmentSource = `#version 460 core
layout(location = 0) in vec3 v_normal;
layout(location = 1) in vec4 v_color;
layout(location = 0) out vec4 out_color;

void main() {
  float light = max(dot(normalize(v_normal), normalize(vec3(0.4, 0.8, 0.6))), 0.15);
  out_color = vec4(v_color.rgb * light, v_color.a);
}
`

// cubeLayer spins a cube in front of the camera. Escape stops the engine.
type cubeLayer struct {
	engine.BaseLayer

	shaderDir string
	program   *shader.Program
	cube      *scene.Entity
	time      float32
	aspect    float32
}

func newCubeLayer(shaderDir string) *cubeLayer {
	return &cubeLayer{shaderDir: shaderDir, aspect: 16.0 / 9.0}
}

func (l *cubeLayer) stages() []shader.Stage {
	if l.shaderDir == "" {
		return []shader.Stage{
			shader.NewStage(shader.Vertex, shader.FromLiteral(vertexSource)),
			shader.NewStage(shader.Fragment, shader.FromLiteral(fragmentSource)),
		}
	}
	return []shader.Stage{
		shader.NewStage(shader.Vertex, shader.FromFile(filepath.Join(l.shaderDir, "default.vert"))),
		shader.NewStage(shader.Fragment, shader.FromFile(filepath.Join(l.shaderDir, "default.frag"))),
	}
}

func (l *cubeLayer) OnAttach(ctx *engine.Context) error {
	w, h := ctx.Window.FramebufferSize()
	if h > 0 {
		l.aspect = float32(w) / float32(h)
	}
	if err := l.build(ctx); err != nil {
		return err
	}
	l.cube = scene.New(asset.Cube(mgl32.Vec4{0.9, 0.45, 0.2, 1}))
	l.cube.Translate(mgl32.Vec3{0, 0, 3})
	if err := l.cube.Submit(ctx.Renderer, l.program); err != nil {
		return err
	}
	return l.camera(ctx)
}

func (l *cubeLayer) build(ctx *engine.Context) error {
	p, err := ctx.NewProgram(l.stages())
	if err != nil {
		return err
	}
	if err := p.Submit(); err != nil {
		return err
	}
	l.program = p
	return nil
}

func (l *cubeLayer) camera(ctx *engine.Context) error {
	view := mgl32.LookAtV(mgl32.Vec3{0, 1.5, 0}, mgl32.Vec3{0, 0, -3}, mgl32.Vec3{0, 1, 0})
	projection := mgl32.Perspective(mgl32.DegToRad(60), l.aspect, 0.1, 100)
	return ctx.Renderer.UpdateCamera(view, projection)
}

func (l *cubeLayer) OnEvent(ctx *engine.Context, ev event.Event) (bool, error) {
	switch {
	case ev.Kind == event.KeyPress && ev.Key == int(glfw.KeyEscape):
		ctx.Stop()
		return true, nil
	case ev.Kind == event.WindowResize && ev.Height > 0:
		l.aspect = float32(ev.Width) / float32(ev.Height)
		return false, l.camera(ctx)
	}
	return false, nil
}

func (l *cubeLayer) OnUpdate(ctx *engine.Context) error {
	dt := float32(ctx.Delta.Seconds())
	l.time += dt
	l.cube.Rotate(mgl32.Vec3{30 * dt, 45 * dt, 0})
	if err := l.cube.ResendTransform(ctx.Renderer); err != nil {
		return err
	}
	return l.program.UploadData("u_time", shader.Float(l.time))
}

// OnShaderChanged rebuilds the program from the modified sources and moves
// the cube onto it.
func (l *cubeLayer) OnShaderChanged(ctx *engine.Context, path string) error {
	log := wave.Component("Demo")
	old := l.program
	if err := l.build(ctx); err != nil {
		log.Error("keeping previous shader", "source", path, "err", err)
		l.program = old
		return nil
	}
	if err := l.cube.Free(ctx.Renderer); err != nil {
		return err
	}
	if err := l.cube.Submit(ctx.Renderer, l.program); err != nil {
		return err
	}
	log.Info("shader reloaded", "source", path)
	return old.Free()
}

func (l *cubeLayer) OnDetach(ctx *engine.Context) error {
	if ctx.Renderer.State() == renderer.Created && l.cube.IsSent() {
		_ = l.cube.Free(ctx.Renderer)
	}
	return l.program.Free()
}
