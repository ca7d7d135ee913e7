package engine

import (
	"fmt"

	"github.com/spaghettifunk/parallax/engine/assets"
	"github.com/spaghettifunk/parallax/engine/astro"
	"github.com/spaghettifunk/parallax/engine/catalog"
	"github.com/spaghettifunk/parallax/engine/core"
	"github.com/spaghettifunk/parallax/engine/math"
	"github.com/spaghettifunk/parallax/engine/platform"
	"github.com/spaghettifunk/parallax/engine/renderer"
	"github.com/spaghettifunk/parallax/engine/renderer/vulkan"
)

const (
	// Pauses and debugger stops produce huge deltas; clamping keeps the
	// simulated sky from jumping.
	maxDeltaSeconds = 0.1

	// One scroll notch changes the field of view by 10%.
	zoomPerScrollNotch = 0.1

	// Arrow keys pan at half the field of view per second.
	arrowPanFOVPerSecond = 0.5

	statsIntervalSeconds = 5.0
)

// Application wires the subsystems together and runs the frame loop.
type Application struct {
	config   Config
	platform *platform.Platform
	renderer *vulkan.VulkanRenderer
	camera   *renderer.Camera
	watcher  *assets.ShaderWatcher

	stars    []catalog.StarEntry
	observer astro.ObserverLocation
	vertices []renderer.StarVertex

	// Simulated time as a Julian date, advanced by timeScale each frame.
	julianDate float64
	timeScale  float64

	clock         *core.Clock
	lastFrameTime float64
	lastStatsTime float64

	width  uint32
	height uint32

	isRunning   bool
	isSuspended bool
}

func NewApplication(configPath string) (*Application, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	core.LogSetLevel(cfg.Log.Level)
	core.LogInfo("Starting session %s", core.SessionID())

	if !core.EventInitialize() {
		return nil, fmt.Errorf("failed to initialize event subsystem")
	}
	if err := core.InputInitialize(); err != nil {
		return nil, err
	}
	if err := core.MetricsInitialize(); err != nil {
		return nil, err
	}

	var stars []catalog.StarEntry
	switch cfg.Catalog.Format {
	case "hipparcos":
		stars, err = catalog.LoadHipparcosCSV(cfg.Catalog.Path)
	default:
		stars, err = catalog.LoadBrightStarCSV(cfg.Catalog.Path)
	}
	if err != nil {
		return nil, err
	}

	p, err := platform.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, err
	}

	vr := vulkan.New(p, vulkan.RendererConfig{
		ApplicationName:  cfg.Window.Title,
		StarCapacity:     cfg.Renderer.StarCapacity,
		VertexShaderPath: cfg.Renderer.VertexShaderPath,
		FragShaderPath:   cfg.Renderer.FragShaderPath,
		EnableValidation: cfg.Renderer.EnableValidation,
	})
	if err := vr.Initialize(); err != nil {
		vr.Shutdown()
		p.Shutdown()
		return nil, err
	}

	width, height := p.FramebufferExtent()

	app := &Application{
		config:   cfg,
		platform: p,
		renderer: vr,
		camera:   renderer.NewCamera(),
		stars:    stars,
		observer: astro.ObserverLocation{
			LatitudeRad:  math.DegToRad(cfg.Observer.LatitudeDeg),
			LongitudeRad: math.DegToRad(cfg.Observer.LongitudeDeg),
		},
		vertices:   make([]renderer.StarVertex, cfg.Renderer.StarCapacity),
		julianDate: astro.NowAsJD(),
		timeScale:  1.0,
		clock:      core.NewClock(),
		width:      width,
		height:     height,
		isRunning:  true,
	}

	watcher, err := assets.NewShaderWatcher(cfg.Renderer.ShaderDir)
	if err != nil {
		core.LogWarn("shader hot reload disabled: %v", err)
	} else {
		app.watcher = watcher
	}

	app.registerEvents()
	return app, nil
}

func (app *Application) registerEvents() {
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, func(ctx core.EventContext) bool {
		core.LogInfo("Quit requested, shutting down.")
		app.isRunning = false
		return true
	})

	core.EventRegister(core.EVENT_CODE_RESIZED, func(ctx core.EventContext) bool {
		resize, ok := ctx.Data.(*core.ResizeEvent)
		if !ok {
			return false
		}
		app.width = resize.Width
		app.height = resize.Height

		suspend, resume := resizeDisposition(app.isSuspended, resize.Width, resize.Height)
		if suspend {
			core.LogInfo("Window minimized, suspending.")
			app.isSuspended = true
			return true
		}
		if resume {
			core.LogInfo("Window restored, resuming.")
			app.isSuspended = false
		}
		app.renderer.Resized(resize.Width, resize.Height)
		return true
	})

	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, func(ctx core.EventContext) bool {
		key, ok := ctx.Data.(*core.KeyEvent)
		if !ok {
			return false
		}
		if key.KeyCode == core.KEY_ESCAPE {
			core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
			return true
		}
		return false
	})
}

// resizeDisposition classifies a framebuffer size change: a zero extent
// suspends rendering until a later resize restores a drawable surface, at
// which point the renderer is resumed and notified of the new size.
func resizeDisposition(suspended bool, width, height uint32) (suspend, resume bool) {
	if width == 0 || height == 0 {
		return true, false
	}
	return false, suspended
}

// Run drives the frame loop until quit is requested or the window closes.
func (app *Application) Run() error {
	app.clock.Start()
	app.clock.Update()
	app.lastFrameTime = app.clock.Elapsed()
	app.lastStatsTime = app.lastFrameTime

	for app.isRunning && !app.platform.ShouldClose() {
		// Roll input state before new events arrive.
		core.InputUpdate(0)
		app.platform.PumpMessages()
		core.EventDispatchDeferred()

		app.clock.Update()
		now := app.clock.Elapsed()
		delta := now - app.lastFrameTime
		app.lastFrameTime = now
		if delta > maxDeltaSeconds {
			delta = maxDeltaSeconds
		}

		app.handleInput(delta)
		app.checkShaderReload()

		if app.isSuspended {
			continue
		}

		app.julianDate += delta * app.timeScale / astro.SecondsPerDay
		lst := astro.LMST(app.julianDate, app.observer.LongitudeRad)

		visible := renderer.TransformStars(app.stars, app.observer, lst, app.camera, app.vertices)
		app.renderer.UpdateStars(app.vertices[:visible])

		if err := app.renderer.DrawFrame(); err != nil {
			return err
		}

		core.MetricsUpdate(delta)
		core.MetricsSetVisibleStars(uint32(visible))
		if now-app.lastStatsTime >= statsIntervalSeconds {
			fps, ms, count := core.MetricsFrame()
			core.LogInfo("fps=%.0f frame=%.2fms stars=%d fov=%.1f°", fps, ms, count, app.camera.FOVDeg())
			app.lastStatsTime = now
		}
	}

	return nil
}

// handleInput maps the frame's input state onto the camera and simulation.
func (app *Application) handleInput(delta float64) {
	// Left drag pans; sensitivity scales with zoom so a drag always moves
	// the sky by the same fraction of the view.
	if dx, dy := core.InputMouseDragDelta(core.BUTTON_LEFT); (dx != 0 || dy != 0) && app.height > 0 {
		sensitivity := app.camera.FOVRad() / float64(app.height)
		app.camera.Pan(-float64(dx)*sensitivity, -float64(dy)*sensitivity)
	}

	if scroll := core.InputScrollDelta(); scroll != 0 {
		app.camera.Zoom(1.0 - scroll*zoomPerScrollNotch)
	}

	panStep := app.camera.FOVRad() * arrowPanFOVPerSecond * delta
	if core.InputIsKeyDown(core.KEY_LEFT) {
		app.camera.Pan(-panStep, 0)
	}
	if core.InputIsKeyDown(core.KEY_RIGHT) {
		app.camera.Pan(panStep, 0)
	}
	if core.InputIsKeyDown(core.KEY_UP) {
		app.camera.Pan(0, panStep)
	}
	if core.InputIsKeyDown(core.KEY_DOWN) {
		app.camera.Pan(0, -panStep)
	}

	if core.InputWasKeyPressed(core.KEY_SPACE) {
		if app.timeScale == 0 {
			app.timeScale = 1.0
			core.LogInfo("Time resumed.")
		} else {
			app.timeScale = 0
			core.LogInfo("Time paused.")
		}
	}
	if core.InputWasKeyPressed(core.KEY_R) {
		app.camera.Reset()
		core.LogInfo("Camera reset.")
	}
}

func (app *Application) checkShaderReload() {
	if app.watcher == nil {
		return
	}
	select {
	case path := <-app.watcher.Changed():
		core.LogInfo("Reloading pipeline after change to %s", path)
		if err := app.renderer.ReloadShaders(); err != nil {
			core.LogError("shader reload failed, keeping previous pipeline: %v", err)
		}
	default:
	}
}

// Shutdown releases all subsystems in reverse initialization order.
func (app *Application) Shutdown() {
	if app.watcher != nil {
		app.watcher.Close()
		app.watcher = nil
	}
	if app.renderer != nil {
		app.renderer.Shutdown()
		app.renderer = nil
	}
	if app.platform != nil {
		app.platform.Shutdown()
		app.platform = nil
	}
	core.InputShutdown()
	core.EventShutdown()
	core.LogInfo("Application shut down.")
}
