package wave

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/wave-engine/wave/render"
)

// Config is the engine configuration, usually read from a TOML file:
//
//	[window]
//	title = "Wave"
//	width = 1280
//	height = 720
//
//	[renderer]
//	api = "opengl"
//	call_checking = "sync"
//	depth_test = true
//	cull = "back"
//	msaa = 4
//
//	[shader]
//	cache_dir = "cache"
//	watch = true
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Shader   ShaderConfig   `toml:"shader"`
	Log      LogConfig      `toml:"log"`
}

// WindowConfig configures the main window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	VSync     bool   `toml:"vsync"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig selects the graphics API and its feature hints.
type RendererConfig struct {
	API          string `toml:"api"`
	CallChecking string `toml:"call_checking"`
	DepthTest    bool   `toml:"depth_test"`
	Cull         string `toml:"cull"`
	Wireframe    bool   `toml:"wireframe"`
	MSAA         int    `toml:"msaa"`
	SRGB         bool   `toml:"srgb"`
	Blending     bool   `toml:"blending"`
	BlendSrc     string `toml:"blend_src"`
	BlendDst     string `toml:"blend_dst"`
}

// ShaderConfig configures the shader pipeline.
type ShaderConfig struct {
	// CacheDir holds compiled SPIR-V, one file per stage.
	CacheDir string `toml:"cache_dir"`
	// Watch invalidates cache entries when their source file changes.
	Watch bool `toml:"watch"`
	// Glslc is the GLSL to SPIR-V compiler executable.
	Glslc string `toml:"glslc"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Level string `toml:"level"`
	Color bool   `toml:"color"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:     "Wave",
			Width:     1280,
			Height:    720,
			VSync:     true,
			Resizable: true,
		},
		Renderer: RendererConfig{
			API:          "opengl",
			CallChecking: "sync",
			DepthTest:    true,
			Cull:         "back",
		},
		Shader: ShaderConfig{
			CacheDir: "cache",
			Glslc:    "glslc",
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// ParseConfig decodes TOML data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("wave: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("wave: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := c.Renderer.GraphicsAPI(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Renderer.Hints(); err != nil {
		errs = append(errs, err)
	}
	if c.Shader.CacheDir == "" {
		errs = append(errs, errors.New("shader: empty cache_dir"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("wave: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// GraphicsAPI returns the configured API.
func (c RendererConfig) GraphicsAPI() (render.API, error) {
	return render.ParseAPI(c.API)
}

// Hints converts the section into renderer hints.
func (c RendererConfig) Hints() ([]render.Hint, error) {
	hints := []render.Hint{
		render.DepthTest(c.DepthTest),
		render.Wireframe(c.Wireframe),
		render.MSAA(c.MSAA),
		render.SRGB(c.SRGB),
	}

	mode := render.CallCheckNone
	if c.CallChecking != "" {
		m, err := render.ParseCallCheckMode(c.CallChecking)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	hints = append(hints, render.CallChecking(mode))

	cull, err := render.ParseCullMode(c.Cull)
	if err != nil {
		return nil, err
	}
	hints = append(hints, render.CullFace(cull))

	switch {
	case c.Blending && c.BlendSrc != "" && c.BlendDst != "":
		src, err := render.ParseBlendFactor(c.BlendSrc)
		if err != nil {
			return nil, err
		}
		dst, err := render.ParseBlendFactor(c.BlendDst)
		if err != nil {
			return nil, err
		}
		hints = append(hints, render.BlendingWith(render.BlendFunc{Src: src, Dst: dst}))
	case c.Blending:
		hints = append(hints, render.BlendingWith(render.AlphaBlend))
	default:
		hints = append(hints, render.Blending(false))
	}
	return hints, nil
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: unknown level %q", s)
	}
	return l, nil
}
