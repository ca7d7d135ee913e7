package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// Platform owns the window and translates GLFW callbacks into engine
// input and resize events.
type Platform struct {
	Window *glfw.Window
}

// New initializes GLFW, loads the Vulkan loader, and opens a window with
// no client API (rendering goes through Vulkan, not an OpenGL context).
func New(applicationName string, width, height uint32) (*Platform, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, fmt.Errorf("GLFW reports Vulkan is not supported")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize Vulkan loader: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	p := &Platform{Window: window}
	p.installCallbacks()

	core.LogInfo("Window created: %dx%d.", width, height)
	return p, nil
}

func (p *Platform) installCallbacks() {
	p.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		code, ok := translateKey(key)
		if !ok {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			core.InputProcessKey(code, true)
		case glfw.Release:
			core.InputProcessKey(code, false)
		}
	})

	p.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		engineButton, ok := translateButton(button)
		if !ok {
			return
		}
		core.InputProcessButton(engineButton, action == glfw.Press)
	})

	p.Window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		core.InputProcessMouseMove(int32(xpos), int32(ypos))
	})

	p.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		core.InputProcessMouseWheel(yoff)
	})

	p.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.ResizeEvent{Width: uint32(width), Height: uint32(height)},
		})
	})

	p.Window.SetCloseCallback(func(w *glfw.Window) {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	})
}

// PumpMessages processes pending window events. Must be called from the
// main thread each frame.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

// FramebufferExtent returns the drawable size in pixels, which can differ
// from the window size on high-DPI displays.
func (p *Platform) FramebufferExtent() (uint32, uint32) {
	width, height := p.Window.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// RequiredExtensionNames returns the instance extensions GLFW needs for
// surface creation on this platform.
func (p *Platform) RequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateVulkanSurface creates the window surface for the given instance.
func (p *Platform) CreateVulkanSurface(instance vk.Instance, allocator *vk.AllocationCallbacks) (vk.Surface, error) {
	surfaceHandle, err := p.Window.CreateWindowSurface(instance, unsafe.Pointer(allocator))
	if err != nil {
		return vk.NullSurface, fmt.Errorf("failed to create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(surfaceHandle), nil
}

func (p *Platform) Shutdown() {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	core.LogInfo("Platform shut down.")
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeySpace:
		return core.KEY_SPACE, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	case glfw.KeyR:
		return core.KEY_R, true
	default:
		return 0, false
	}
}

func translateButton(button glfw.MouseButton) (core.Button, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return core.BUTTON_LEFT, true
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT, true
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE, true
	default:
		return 0, false
	}
}
