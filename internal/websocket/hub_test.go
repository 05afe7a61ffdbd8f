package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToUser(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, 1)
	other := mockClient(hub, 2)
	hub.Register(mine)
	hub.Register(other)

	msg := NewMessage("check_in", "created", 42, map[string]any{"streak": float64(3)})
	hub.Broadcast(1, msg)

	select {
	case data := <-mine.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "check_in_created" {
			t.Errorf("type = %s, want check_in_created", got.Type)
		}
		if got.Extra["streak"] != float64(3) {
			t.Errorf("streak extra = %v, want 3", got.Extra["streak"])
		}
	case <-time.After(time.Second):
		t.Fatal("own client did not receive broadcast")
	}

	select {
	case <-other.send:
		t.Fatal("other user's client should not receive the broadcast")
	default:
	}
}

func TestBroadcastFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize*2; i++ {
			hub.Broadcast(1, NewMessage("check_in", "created", int64(i), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
}
