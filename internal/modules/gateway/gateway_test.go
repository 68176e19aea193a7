package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceLifecycle(t *testing.T) {
	h := NewHub(nil, nil)

	online := h.registerSocket(presenceEvent{sid: "s1", userID: "u1"})
	assert.True(t, online)
	assert.True(t, h.IsOnline("u1"))
	assert.Equal(t, 1, h.OnlineCount())

	// second socket for the same user does not change presence
	online = h.registerSocket(presenceEvent{sid: "s2", userID: "u1"})
	assert.False(t, online)
	assert.Equal(t, 1, h.OnlineCount())

	// first disconnect keeps the user online
	offline := h.unregisterSocket("s1")
	assert.False(t, offline)
	assert.True(t, h.IsOnline("u1"))

	// last disconnect takes them offline
	offline = h.unregisterSocket("s2")
	assert.True(t, offline)
	assert.False(t, h.IsOnline("u1"))
	assert.Equal(t, 0, h.OnlineCount())
}

func TestPresenceDuplicateAnnounce(t *testing.T) {
	h := NewHub(nil, nil)

	assert.True(t, h.registerSocket(presenceEvent{sid: "s1", userID: "u1"}))
	// re-announcing the same user on the same socket is a no-op
	assert.False(t, h.registerSocket(presenceEvent{sid: "s1", userID: "u1"}))
	assert.Equal(t, 1, h.OnlineCount())

	// the socket switching identity moves its presence
	online := h.registerSocket(presenceEvent{sid: "s1", userID: "u2"})
	assert.True(t, online)
	assert.False(t, h.IsOnline("u1"))
	assert.True(t, h.IsOnline("u2"))
}

func TestPresenceUnknownSocket(t *testing.T) {
	h := NewHub(nil, nil)
	assert.False(t, h.unregisterSocket("ghost"))
}

func TestSnapshot(t *testing.T) {
	h := NewHub(nil, nil)
	h.registerSocket(presenceEvent{sid: "s1", userID: "u1"})
	h.registerSocket(presenceEvent{sid: "s2", userID: "u2"})

	snap := h.snapshot()
	assert.Equal(t, 2, snap["count"])
	assert.ElementsMatch(t, []string{"u1", "u2"}, snap["users"])
}
