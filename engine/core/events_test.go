package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRegisterAndFire(t *testing.T) {
	require.True(t, EventInitialize())
	t.Cleanup(func() { EventShutdown() })

	var got *ResizeEvent
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		got, _ = ctx.Data.(*ResizeEvent)
		return true
	})

	handled := EventFire(EventContext{
		Type: EVENT_CODE_RESIZED,
		Data: &ResizeEvent{Width: 640, Height: 480},
	})

	assert.True(t, handled)
	require.NotNil(t, got)
	assert.Equal(t, uint32(640), got.Width)
	assert.Equal(t, uint32(480), got.Height)
}

func TestEventFireStopsAfterHandled(t *testing.T) {
	require.True(t, EventInitialize())
	t.Cleanup(func() { EventShutdown() })

	calls := 0
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(ctx EventContext) bool {
		calls++
		return true
	})
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(ctx EventContext) bool {
		calls++
		return true
	})

	EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	assert.Equal(t, 1, calls)
}

func TestEventDeferredDispatchOrder(t *testing.T) {
	require.True(t, EventInitialize())
	t.Cleanup(func() { EventShutdown() })

	var order []EventCode
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) bool {
		order = append(order, ctx.Type)
		return true
	})
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(ctx EventContext) bool {
		order = append(order, ctx.Type)
		return true
	})

	require.True(t, EventFireDeferred(EventContext{Type: EVENT_CODE_KEY_PRESSED}))
	require.True(t, EventFireDeferred(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))

	// Nothing dispatched until the drain.
	assert.Empty(t, order)
	EventDispatchDeferred()
	assert.Equal(t, []EventCode{EVENT_CODE_KEY_PRESSED, EVENT_CODE_APPLICATION_QUIT}, order)

	// Queue is empty afterwards.
	order = nil
	EventDispatchDeferred()
	assert.Empty(t, order)
}

func TestEventFireUnregisteredCode(t *testing.T) {
	require.True(t, EventInitialize())
	t.Cleanup(func() { EventShutdown() })

	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL}))
}
