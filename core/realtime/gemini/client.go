// Package gemini implements the realtime session transport over the
// Gemini Live websocket endpoint.
package gemini

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ekokodan/orbion-experience/core/protocol"
)

const (
	defaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// handshakeTimeout bounds the wait for the remote setup acknowledgement
	// when the caller's context carries no deadline.
	handshakeTimeout = 15 * time.Second

	// messageBacklog sizes the inbound channel; the session consumes it in a
	// tight loop, the backlog only absorbs dispatch jitter.
	messageBacklog = 64
)

// Client is a re-openable transport: after a Close, or after the remote
// endpoint drops the connection, Open starts a fresh connection with a
// fresh inbound channel. The read loop of each connection owns that
// connection's channel and closes it when the connection ends.
type Client struct {
	endpoint string
	apiKey   string

	mu       sync.Mutex
	conn     *websocket.Conn
	messages chan protocol.ServerMessage
	// closed records, while conn is nil, whether the current messages
	// channel has already been closed.
	closed bool
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		endpoint: defaultEndpoint,
		messages: make(chan protocol.ServerMessage, messageBacklog),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Open dials the endpoint, declares cfg and waits for the remote setup
// acknowledgement. The connection is not usable before Open returns nil.
// Opening an already-open client is an error; a closed client can be
// opened again.
func (c *Client) Open(ctx context.Context, cfg protocol.SessionConfig) error {
	ctx, span := tracer.Start(ctx, "open realtime connection")
	defer span.End()

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("connection already open")
	}
	c.mu.Unlock()

	apiKey := c.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("GEMINI_API_KEY"); !ok {
			return fmt.Errorf("gemini api key not found")
		}
	}

	endpointURL, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	queryParams := endpointURL.Query()
	queryParams.Set("key", apiKey)
	endpointURL.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to open socket connection: %w", err)
	}

	if err := conn.WriteJSON(protocol.ClientMessage{Setup: protocol.NewSetup(cfg)}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to send setup: %w", err)
	}

	if err := awaitSetupComplete(ctx, conn); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("connection already open")
	}
	messages := make(chan protocol.ServerMessage, messageBacklog)
	c.conn = conn
	c.messages = messages
	c.closed = false
	c.mu.Unlock()

	go c.readLoop(conn, messages)
	return nil
}

func awaitSetupComplete(ctx context.Context, conn *websocket.Conn) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(handshakeTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("failed to arm handshake deadline: %w", err)
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("connection closed before setup acknowledgement: %w", err)
	}

	msg, err := protocol.DecodeServerMessage(data)
	if err != nil {
		return err
	}
	if msg.Error != nil {
		return fmt.Errorf("remote rejected setup: %w", msg.Error)
	}
	if msg.SetupComplete == nil {
		return fmt.Errorf("expected setup acknowledgement, got a different message")
	}

	return nil
}

// Send writes one outbound envelope. It does not wait for any remote
// acknowledgement.
func (c *Client) Send(msg protocol.ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection not open")
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to realtime endpoint: %w", err)
	}
	return nil
}

// Messages yields inbound envelopes of the current connection in arrival
// order. The channel closes when the connection ends for any reason; a
// fatal remote error is delivered as the final message before the close.
func (c *Client) Messages() <-chan protocol.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages
}

// Close tears the current connection down. It is safe to call more than
// once and does not wait for the remote endpoint to acknowledge closure.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.conn == nil && c.closed {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	messages := c.messages
	c.conn = nil
	c.closed = true
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second),
		)
		_ = conn.Close()
		// The read loop of this connection closes the channel.
		return nil
	}

	close(messages)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, messages chan protocol.ServerMessage) {
	defer close(messages)
	defer c.detach(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isDetached(conn) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}

			deliver(messages, protocol.ServerMessage{Error: &protocol.SessionError{Message: err.Error()}})
			return
		}

		msg, err := protocol.DecodeServerMessage(data)
		if err != nil {
			logger.Warn("dropping undecodable frame", "error", err)
			continue
		}

		deliver(messages, *msg)
	}
}

// detach releases the connection slot when the read loop exits on its own,
// leaving the client open for a later Open. A connection already torn down
// by Close is left alone.
func (c *Client) detach(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		c.conn = nil
		c.closed = true
	}
}

// isDetached reports whether conn was already torn down locally.
func (c *Client) isDetached(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != conn
}

func deliver(messages chan protocol.ServerMessage, msg protocol.ServerMessage) {
	select {
	case messages <- msg:
	default:
		// The session stopped consuming; dropping beats deadlocking the
		// read loop.
		logger.Warn("inbound message dropped, backlog full")
	}
}
