package core

import (
	"sync"

	"github.com/spaghettifunk/parallax/engine/containers"
)

// System internal event codes.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed/released. Data is *KeyEvent.
	EVENT_CODE_KEY_PRESSED  EventCode = 0x02
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed/released. Data is *MouseEvent.
	EVENT_CODE_BUTTON_PRESSED  EventCode = 0x04
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data is *MouseEvent.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel. Data is *MouseEvent (Scroll field).
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Framebuffer resized. Data is *ResizeEvent.
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   int32
	PosY   int32
	Scroll float64
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

type EventContext struct {
	Type EventCode
	Data interface{}
}

// Should return true if handled, stopping propagation to later listeners.
type FnOnEvent func(ctx EventContext) bool

// Deferred events fired from other goroutines wait here until the frame
// loop drains them on the main thread.
const deferredQueueCapacity = 64

type eventSystemState struct {
	registered [MAX_EVENT_CODE + 1][]FnOnEvent

	deferredMu sync.Mutex
	deferred   *containers.RingQueue[EventContext]
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

func EventInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			deferred: containers.NewRingQueue[EventContext](deferredQueueCapacity),
		}
	})
	return true
}

func EventShutdown() error {
	if eventState == nil {
		return nil
	}
	for i := range eventState.registered {
		eventState.registered[i] = nil
	}
	return nil
}

// EventRegister adds a listener for the given code.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if eventState == nil || code > MAX_EVENT_CODE {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire dispatches the context to listeners of ctx.Type in registration
// order. Returns true if a listener handled the event.
func EventFire(ctx EventContext) bool {
	if eventState == nil || ctx.Type > MAX_EVENT_CODE {
		return false
	}
	for _, cb := range eventState.registered[ctx.Type] {
		if cb(ctx) {
			return true
		}
	}
	return false
}

// EventFireDeferred queues the event for dispatch on the main thread.
// Safe to call from any goroutine. Returns false when the queue is full.
func EventFireDeferred(ctx EventContext) bool {
	if eventState == nil || ctx.Type > MAX_EVENT_CODE {
		return false
	}
	eventState.deferredMu.Lock()
	defer eventState.deferredMu.Unlock()
	return eventState.deferred.Enqueue(ctx) == nil
}

// EventDispatchDeferred drains the deferred queue, firing each event in
// arrival order. Call once per frame from the main loop.
func EventDispatchDeferred() {
	if eventState == nil {
		return
	}
	for {
		eventState.deferredMu.Lock()
		ctx, err := eventState.deferred.Dequeue()
		eventState.deferredMu.Unlock()
		if err != nil {
			return
		}
		EventFire(ctx)
	}
}
