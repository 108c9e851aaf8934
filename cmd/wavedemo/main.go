// Command wavedemo opens a window and draws a spinning cube.
//
//	wavedemo -config wave.toml -api vulkan -shaders res/shaders
//
// The Vulkan backend is only available when built with -tags vulkan.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/wave-engine/wave"
	_ "github.com/wave-engine/wave/backend/opengl/glbind"
	_ "github.com/wave-engine/wave/backend/vulkan/vkbind"
	"github.com/wave-engine/wave/engine"
	"github.com/wave-engine/wave/render"
	"github.com/wave-engine/wave/renderer"
	"github.com/wave-engine/wave/window"
)

func init() {
	// glfw and the OpenGL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		apiName    = flag.String("api", "", "graphics api (opengl or vulkan), overrides the configuration")
		shaderDir  = flag.String("shaders", "", "directory holding default.vert and default.frag")
	)
	flag.Parse()

	cfg := wave.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = wave.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *apiName != "" {
		cfg.Renderer.API = *apiName
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	level, _ := wave.ParseLevel(cfg.Log.Level)
	wave.SetLogger(slog.New(wave.NewConsoleHandler(os.Stderr, &wave.ConsoleOptions{
		Level:   level,
		NoColor: !cfg.Log.Color,
	})))

	if err := run(cfg, *shaderDir); err != nil {
		log.Fatal(err)
	}
}

func run(cfg wave.Config, shaderDir string) (err error) {
	api, err := cfg.Renderer.GraphicsAPI()
	if err != nil {
		return err
	}
	r, err := renderer.New(api)
	if err != nil {
		return err
	}

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Terminate()

	var opts []window.Option
	if cfg.Renderer.MSAA > 1 {
		opts = append(opts, window.WithSamples(cfg.Renderer.MSAA))
	}
	if api == render.OpenGL {
		opts = append(opts, window.WithDebugContext(cfg.Renderer.CallChecking != "none"))
	}
	win, err := window.New(cfg.Window, api, opts...)
	if err != nil {
		return err
	}
	defer win.Destroy()

	e := engine.New(cfg, win, r, newCubeLayer(shaderDir))
	defer func() {
		err = errors.Join(err, e.Free())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
