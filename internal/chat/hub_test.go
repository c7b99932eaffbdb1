package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	default:
		t.Fatal("expected a pending message")
		return nil
	}
}

func TestJoinLeaveTeardown(t *testing.T) {
	hub := NewHub()
	alice := NewClient("alice")
	bob := NewClient("bob")

	hub.Join(alice, "room-1")
	hub.Join(bob, "room-1")
	assert.Equal(t, 1, hub.RoomCount())
	assert.Equal(t, 2, hub.RoomSize("room-1"))

	hub.Leave(alice, "room-1")
	assert.Equal(t, 1, hub.RoomSize("room-1"))

	// Last member out drops the room entirely.
	hub.Leave(bob, "room-1")
	assert.Equal(t, 0, hub.RoomCount())
	assert.Equal(t, 0, hub.RoomSize("room-1"))

	// Leaving a room you never joined is a no-op.
	hub.Leave(alice, "room-1")
	assert.Equal(t, 0, hub.RoomCount())
}

func TestPublishRoomScoped(t *testing.T) {
	hub := NewHub()
	alice := NewClient("alice")
	bob := NewClient("bob")
	carol := NewClient("carol")

	hub.Join(alice, "room-1")
	hub.Join(bob, "room-1")
	hub.Join(carol, "room-2")

	persisted := false
	err := hub.Publish("room-1", func() ([]byte, error) {
		persisted = true
		return []byte("hello"), nil
	})
	require.NoError(t, err)
	assert.True(t, persisted)

	assert.Equal(t, []byte("hello"), receive(t, alice))
	assert.Equal(t, []byte("hello"), receive(t, bob))
	assert.Empty(t, carol.Send, "other rooms stay quiet")
}

func TestPublishPersistFailureSkipsRelay(t *testing.T) {
	hub := NewHub()
	alice := NewClient("alice")
	hub.Join(alice, "room-1")

	failure := errors.New("persist failed")
	err := hub.Publish("room-1", func() ([]byte, error) {
		return nil, failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Empty(t, alice.Send, "nothing relayed when persistence fails")
}

func TestPublishWithoutRoomStillPersists(t *testing.T) {
	hub := NewHub()

	persisted := false
	err := hub.Publish("empty-room", func() ([]byte, error) {
		persisted = true
		return []byte("stored"), nil
	})
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, 0, hub.RoomCount())
}

func TestRemoveClosesClient(t *testing.T) {
	hub := NewHub()
	alice := NewClient("alice")
	bob := NewClient("bob")

	hub.Join(alice, "room-1")
	hub.Join(alice, "room-2")
	hub.Join(bob, "room-1")

	hub.Remove(alice)
	assert.Equal(t, 1, hub.RoomCount())
	assert.Equal(t, 1, hub.RoomSize("room-1"))

	_, open := <-alice.Send
	assert.False(t, open, "send channel closed on removal")

	require.NoError(t, hub.Publish("room-1", func() ([]byte, error) {
		return []byte("after"), nil
	}))
	assert.Equal(t, []byte("after"), receive(t, bob))
}

func TestPublishSkipsSaturatedClient(t *testing.T) {
	hub := NewHub()
	slow := NewClient("slow")
	hub.Join(slow, "room-1")

	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("fill")
	}

	// A full buffer must not block the room.
	require.NoError(t, hub.Publish("room-1", func() ([]byte, error) {
		return []byte("dropped"), nil
	}))
	assert.Len(t, slow.Send, cap(slow.Send))
}
