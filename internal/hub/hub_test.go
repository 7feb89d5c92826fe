package hub

import (
	"encoding/json"
	"testing"
)

func TestRegisterUnregister(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)

	h.Register(conn)
	if h.ConnectionCount() != 1 {
		t.Fatalf("expected 1 connection, got %d", h.ConnectionCount())
	}

	h.Unregister(conn)
	if h.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", h.ConnectionCount())
	}

	// Unregister is idempotent.
	h.Unregister(conn)
	if h.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", h.ConnectionCount())
	}
}

func TestPushJSONAfterUnregister(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)
	h.Register(conn)
	h.Unregister(conn)

	if err := conn.PushJSON(map[string]string{"type": "x"}); err != ErrConnClosed {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}

func TestPushJSONBufferFull(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil)
	h.Register(conn)

	payload := map[string]string{"type": "x"}
	for i := 0; i < sendBufferSize; i++ {
		if err := conn.PushJSON(payload); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}
	if err := conn.PushJSON(payload); err != ErrBufferFull {
		t.Fatalf("expected ErrBufferFull, got %v", err)
	}
}

func TestBroadcastJSONReachesAllConnections(t *testing.T) {
	h := NewHub()
	first := h.NewConnection(nil)
	second := h.NewConnection(nil)
	h.Register(first)
	h.Register(second)

	if err := h.BroadcastJSON(map[string]string{"type": "presenceChanged"}); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}

	for name, conn := range map[string]*Connection{"first": first, "second": second} {
		select {
		case data := <-conn.Send:
			var decoded map[string]string
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("%s: bad payload: %v", name, err)
			}
			if decoded["type"] != "presenceChanged" {
				t.Fatalf("%s: unexpected payload: %v", name, decoded)
			}
		default:
			t.Fatalf("%s: no frame enqueued", name)
		}
	}
}
