package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitAfterShutdownIsDropped(t *testing.T) {
	c := fakeConn()
	c.Emit("chat", map[string]any{"text": "hi"})
	require.Len(t, c.send, 1)

	c.shutdown()
	assert.NotPanics(t, func() {
		c.Emit("awaitingInput", map[string]any{"player": 1})
	})

	c.shutdown() // disconnect teardown may race a second close
}

func TestNudgeAfterDisconnectDoesNotPanic(t *testing.T) {
	h, _ := newTestHub(t)
	ann, bob := fakeConn(), fakeConn()

	roomID, err := h.CreateRoom(ann, "ann", 2, nil)
	require.NoError(t, err)
	require.NoError(t, h.Join(bob, roomID, "bob"))

	// The nudge loop copies the connection out under the hub lock, then the
	// owner disconnects before the emit lands.
	h.Drop(bob)
	bob.shutdown()
	assert.NotPanics(t, func() {
		bob.Emit("awaitingInput", map[string]any{"player": 1})
	})

	h.CloseRoom(roomID)
}
