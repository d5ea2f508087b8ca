package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{"single line data", "room-updated", `{"room_id":"r1"}`, "event: room-updated\ndata: {\"room_id\":\"r1\"}\n\n"},
		{"multi-line data", "test", "a\nb", "event: test\ndata: a\ndata: b\n\n"},
		{"empty data", "ping", "", "event: ping\ndata: \n\n"},
		{"carriage returns", "test", "line1\r\nline2", "event: test\ndata: line1\ndata: line2\n\n"},
		{"trailing newline", "test", "line1\n", "event: test\ndata: line1\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	hub := manager.GetOrCreateHub("room-1")
	a := NewClient(hub, "alice")
	b := NewClient(hub, "bob")
	hub.Register(a)
	hub.Register(b)
	waitForClients(t, hub, 2)

	hub.BroadcastEvent("room-updated", "x")

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "event: room-updated\ndata: x\n\n", string(msg))
		case <-time.After(time.Second):
			t.Fatal("client did not receive message")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	hub := manager.GetOrCreateHub("room-1")
	c := NewClient(hub, "alice")
	hub.Register(c)
	waitForClients(t, hub, 1)

	hub.Unregister(c)
	waitForClients(t, hub, 0)

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHubManagerReusesHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	assert.Nil(t, manager.GetHub("room-1"))
	first := manager.GetOrCreateHub("room-1")
	assert.Same(t, first, manager.GetOrCreateHub("room-1"))
	assert.Same(t, first, manager.GetHub("room-1"))

	manager.RemoveHub("room-1")
	assert.Nil(t, manager.GetHub("room-1"))
}

func TestCleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	busy := manager.GetOrCreateHub("busy")
	manager.GetOrCreateHub("idle")
	c := NewClient(busy, "alice")
	busy.Register(c)
	waitForClients(t, busy, 1)

	assert.Equal(t, 1, manager.CleanupEmptyHubs())
	assert.NotNil(t, manager.GetHub("busy"))
	assert.Nil(t, manager.GetHub("idle"))
}

func TestRegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub("room-1", testutil.NopLogger())
	hub.Close()

	c := NewClient(hub, "alice")
	hub.Register(c)
	_, ok := <-c.send
	assert.False(t, ok)
}
