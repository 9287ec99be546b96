package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ekokodan/orbion-experience/core/protocol"
)

var upgrader = websocket.Upgrader{}

func newTestEndpoint(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func acknowledgeSetup(t *testing.T, conn *websocket.Conn) protocol.ClientMessage {
	t.Helper()

	var msg protocol.ClientMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Errorf("expected a setup message, got read error: %v", err)
		return msg
	}
	if err := conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}}); err != nil {
		t.Errorf("failed to acknowledge setup: %v", err)
	}
	return msg
}

func TestClientOpenPerformsSetupHandshake(t *testing.T) {
	received := make(chan protocol.ClientMessage, 1)
	endpoint := newTestEndpoint(t, func(conn *websocket.Conn) {
		received <- acknowledgeSetup(t, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	client := NewClient(WithEndpoint(endpoint), WithAPIKey("test-key"))
	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/demo"}); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	defer client.Close()

	select {
	case msg := <-received:
		if msg.Setup == nil || msg.Setup.Model != "models/demo" {
			t.Fatalf("expected a setup envelope for models/demo, got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the setup message")
	}
}

func TestClientOpenRejectsRemoteSetupError(t *testing.T) {
	endpoint := newTestEndpoint(t, func(conn *websocket.Conn) {
		var msg protocol.ClientMessage
		_ = conn.ReadJSON(&msg)
		_ = conn.WriteJSON(map[string]any{"error": map[string]any{"message": "invalid model"}})
	})

	client := NewClient(WithEndpoint(endpoint), WithAPIKey("test-key"))
	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/bad"}); err == nil {
		t.Fatalf("expected open to fail on a remote setup error")
	}
}

func TestClientDeliversMessagesUntilNormalClose(t *testing.T) {
	endpoint := newTestEndpoint(t, func(conn *websocket.Conn) {
		acknowledgeSetup(t, conn)
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	})

	client := NewClient(WithEndpoint(endpoint), WithAPIKey("test-key"))
	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/demo"}); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	defer client.Close()

	select {
	case msg := <-client.Messages():
		if msg.ServerContent == nil || !msg.ServerContent.TurnComplete {
			t.Fatalf("expected the turn-complete content message, got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the content message")
	}

	select {
	case msg, ok := <-client.Messages():
		if ok {
			t.Fatalf("expected channel close after a normal remote close, got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the channel to close")
	}
}

func TestClientSurfacesAbnormalClose(t *testing.T) {
	endpoint := newTestEndpoint(t, func(conn *websocket.Conn) {
		acknowledgeSetup(t, conn)
		// Drop the connection without a close frame.
		_ = conn.UnderlyingConn().Close()
	})

	client := NewClient(WithEndpoint(endpoint), WithAPIKey("test-key"))
	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/demo"}); err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	defer client.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case msg, ok := <-client.Messages():
			if !ok {
				t.Fatalf("expected an error message before the channel close")
			}
			if msg.Error != nil {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for the connection-lost error")
		}
	}
}

func TestClientReopensAfterClose(t *testing.T) {
	received := make(chan protocol.ClientMessage, 2)
	endpoint := newTestEndpoint(t, func(conn *websocket.Conn) {
		received <- acknowledgeSetup(t, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	client := NewClient(WithEndpoint(endpoint), WithAPIKey("test-key"))
	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/demo"}); err != nil {
		t.Fatalf("expected first open to succeed, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}

	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Fatalf("expected the channel of the closed connection to close")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the first channel to close")
	}

	if err := client.Open(context.Background(), protocol.SessionConfig{Model: "models/demo"}); err != nil {
		t.Fatalf("expected reopen to succeed, got %v", err)
	}
	defer client.Close()

	if err := client.Send(protocol.ClientMessage{RealtimeInput: &protocol.RealtimeInput{}}); err != nil {
		t.Fatalf("expected send on the reopened connection to succeed, got %v", err)
	}

	select {
	case msg, ok := <-client.Messages():
		if !ok {
			t.Fatalf("expected the fresh channel to stay open")
		}
		t.Fatalf("expected no inbound messages, got %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	if err := client.Close(); err != nil {
		t.Fatalf("expected second close to succeed, got %v", err)
	}
}

func TestClientSendRequiresOpenConnection(t *testing.T) {
	client := NewClient(WithEndpoint("ws://127.0.0.1:9"), WithAPIKey("test-key"))

	if err := client.Send(protocol.ClientMessage{}); err == nil {
		t.Fatalf("expected send on an unopened client to fail")
	}

	if err := client.Close(); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}
	if err := client.Send(protocol.ClientMessage{}); err == nil {
		t.Fatalf("expected send after close to fail")
	}
}
