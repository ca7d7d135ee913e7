package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions, aligned with the platform layer's translation table.
type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_R      KeyCode = 0x52
	KEYS_MAX_KEYS
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
}

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
	ScrollDelta      float64
}

var onceInput sync.Once
var inputInitialized bool = false
var inputState *InputState = nil

func InputInitialize() error {
	onceInput.Do(func() {
		inputState = &InputState{}
		inputInitialized = true
	})
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputInitialized = false
	return nil
}

// InputUpdate rolls current state into previous state and clears the
// per-frame scroll accumulator. Call once at the start of each frame,
// before the platform pumps new events.
func InputUpdate(deltaTime float64) error {
	if !inputInitialized {
		return nil
	}

	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.MousePrevious = inputState.MouseCurrent
	inputState.ScrollDelta = 0

	return nil
}

// keyboard input
func InputIsKeyDown(key KeyCode) bool {
	if !inputInitialized {
		return false
	}
	return inputState.KeyboardCurrent.Keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	if !inputInitialized {
		return false
	}
	return !inputState.KeyboardCurrent.Keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	if !inputInitialized {
		return false
	}
	return inputState.KeyboardPrevious.Keys[key]
}

// InputWasKeyPressed reports a down edge this frame (down now, up before).
func InputWasKeyPressed(key KeyCode) bool {
	if !inputInitialized {
		return false
	}
	return inputState.KeyboardCurrent.Keys[key] && !inputState.KeyboardPrevious.Keys[key]
}

func InputProcessKey(key KeyCode, pressed bool) error {
	if !inputInitialized || key >= 256 {
		return nil
	}
	// Only handle this if the state actually changed.
	if inputState.KeyboardCurrent.Keys[key] != pressed {
		inputState.KeyboardCurrent.Keys[key] = pressed

		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		EventFire(EventContext{
			Type: code,
			Data: &KeyEvent{KeyCode: key},
		})
	}
	return nil
}

// InputMouseDragDelta returns the cursor motion since the previous frame
// while the given button is held, else (0, 0).
func InputMouseDragDelta(button Button) (int32, int32) {
	if !inputInitialized || !inputState.MouseCurrent.Buttons[button] || !inputState.MousePrevious.Buttons[button] {
		return 0, 0
	}
	return inputState.MouseCurrent.X - inputState.MousePrevious.X,
		inputState.MouseCurrent.Y - inputState.MousePrevious.Y
}

// InputScrollDelta returns scroll wheel motion accumulated this frame.
func InputScrollDelta() float64 {
	if !inputInitialized {
		return 0
	}
	return inputState.ScrollDelta
}

func InputProcessButton(button Button, pressed bool) error {
	if !inputInitialized {
		return nil
	}
	// If the state changed, fire an event.
	if inputState.MouseCurrent.Buttons[button] != pressed {
		inputState.MouseCurrent.Buttons[button] = pressed

		code := EVENT_CODE_BUTTON_RELEASED
		if pressed {
			code = EVENT_CODE_BUTTON_PRESSED
		}
		EventFire(EventContext{
			Type: code,
			Data: &MouseEvent{Button: button},
		})
	}
	return nil
}

func InputProcessMouseMove(x int32, y int32) error {
	if !inputInitialized {
		return nil
	}
	// Only process if actually different
	if inputState.MouseCurrent.X != x || inputState.MouseCurrent.Y != y {
		inputState.MouseCurrent.X = x
		inputState.MouseCurrent.Y = y

		EventFire(EventContext{
			Type: EVENT_CODE_MOUSE_MOVED,
			Data: &MouseEvent{PosX: x, PosY: y},
		})
	}
	return nil
}

func InputProcessMouseWheel(yDelta float64) error {
	if !inputInitialized {
		return nil
	}
	inputState.ScrollDelta += yDelta
	EventFire(EventContext{
		Type: EVENT_CODE_MOUSE_WHEEL,
		Data: &MouseEvent{Scroll: yDelta},
	})
	return nil
}
