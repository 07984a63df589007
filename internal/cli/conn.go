package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/spyword/internal/protocol"
)

// ErrConnClosed is returned for requests on a closed connection
var ErrConnClosed = errors.New("connection closed")

// RequestError is a failed request as reported by the server
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Conn is a live event channel connection.
// Requests may be issued from any goroutine; events arrive on Events.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	mu      sync.Mutex
	nextID  int
	pending map[string]chan protocol.Frame
	closed  bool

	events chan protocol.Frame
	done   chan struct{}
}

// Dial opens the event channel at serverURL
func Dial(ctx context.Context, serverURL string) (*Conn, error) {
	wsURL, err := eventChannelURL(serverURL)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	c := &Conn{
		ws:      ws,
		pending: make(map[string]chan protocol.Frame),
		events:  make(chan protocol.Frame, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func eventChannelURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	return u.String(), nil
}

func (c *Conn) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.events)
		close(c.done)
	}()

	for {
		var frame protocol.Frame
		if err := c.ws.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Kind {
		case protocol.KindResponse:
			c.mu.Lock()
			ch, ok := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()
			if ok {
				ch <- frame
			}
		case protocol.KindEvent:
			c.events <- frame
		}
	}
}

// Request sends a request and waits for its response.
// A non-nil result receives the response payload.
func (c *Conn) Request(ctx context.Context, typ string, payload, result any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnClosed
	}
	c.nextID++
	id := strconv.Itoa(c.nextID)
	ch := make(chan protocol.Frame, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err = c.ws.WriteJSON(protocol.Frame{Kind: protocol.KindRequest, ID: id, Type: typ, Payload: raw})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("send failed: %w", err)
	}

	select {
	case frame, ok := <-ch:
		if !ok {
			return ErrConnClosed
		}
		if frame.Error != nil {
			return &RequestError{Code: frame.Error.Code, Message: frame.Error.Message}
		}
		if result != nil && len(frame.Payload) > 0 {
			if err := json.Unmarshal(frame.Payload, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

func (c *Conn) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Events returns server-pushed events. The channel closes with the connection.
func (c *Conn) Events() <-chan protocol.Frame {
	return c.events
}

// Done is closed once the connection has gone away
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and shuts the connection
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.ws.Close()
}
