package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"drawify/internal/app/protocol"
	"drawify/internal/pkg/logx"
)

var errClosedLocally = fmt.Errorf("%w: closed locally", ErrConnectionLost)

const (
	writeWait      = 10 * time.Second
	inboundBuffer  = 64
	snapshotPath   = "/api/chats/"
	websocketPath  = "/ws"
	tokenQueryName = "token"
)

// FetchSnapshot reads the room's current shapes over HTTP. The caller must
// not enter the room when it fails.
func FetchSnapshot(ctx context.Context, client *http.Client, baseURL, token string, roomID int64) ([]protocol.Record, error) {
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := strings.TrimRight(baseURL, "/") + snapshotPath + strconv.FormatInt(roomID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer res.Body.Close()

	var body struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    protocol.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode snapshot (HTTP %d): %w", res.StatusCode, err)
	}
	if res.StatusCode != http.StatusOK || body.Code != 0 {
		return nil, fmt.Errorf("fetch snapshot: HTTP %d, code %d: %s", res.StatusCode, body.Code, body.Message)
	}
	return body.Data.Chats, nil
}

// websocketURL derives ws(s)://host/ws?token=... from an http(s) base URL.
func websocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + websocketPath

	q := u.Query()
	q.Set(tokenQueryName, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Conn is a client websocket connection. Send may be called from any
// goroutine; inbound events arrive on Inbound in order.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	inbound chan protocol.Envelope
	done    chan struct{}
	once    sync.Once

	// err is set before inbound is closed.
	err error

	logger zerolog.Logger
}

// Dial opens the room connection for token against baseURL.
func Dial(ctx context.Context, dialer *websocket.Dialer, baseURL, token string) (*Conn, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	target, err := websocketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	ws, res, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("dial %s: HTTP %d: %w", websocketPath, res.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", websocketPath, err)
	}
	ws.SetReadLimit(protocol.MaxMessageSize)

	c := &Conn{
		ws:      ws,
		inbound: make(chan protocol.Envelope, inboundBuffer),
		done:    make(chan struct{}),
		logger:  logx.Component("CanvasConn"),
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	defer close(c.inbound)

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				c.err = errClosedLocally
			default:
				c.err = fmt.Errorf("%w: %v", ErrConnectionLost, err)
			}
			return
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Dropping undecodable server frame")
			continue
		}

		select {
		case c.inbound <- env:
		case <-c.done:
			c.err = errClosedLocally
			return
		}
	}
}

// Inbound delivers server events. It is closed when the connection ends;
// Err then reports why.
func (c *Conn) Inbound() <-chan protocol.Envelope { return c.inbound }

// Err returns the reason the connection ended. Only valid after Inbound is closed.
func (c *Conn) Err() error { return c.err }

// Send writes one envelope.
func (c *Conn) Send(env protocol.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return ErrConnectionLost
	default:
	}

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	if err := c.ws.WriteJSON(env); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

// Close sends a close frame and closes the socket. It is safe to call more
// than once.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.writeMu.Lock()
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.writeMu.Unlock()

		err = c.ws.Close()
	})
	return err
}

// Options configures Open.
type Options struct {
	BaseURL string
	Token   string
	RoomID  int64

	// Canvas receives repaints; nil runs headless.
	Canvas Canvas

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
}

// Session couples an Editor to its connection.
type Session struct {
	editor *Editor
	conn   *Conn
	logger zerolog.Logger
}

// Open fetches the room snapshot, then connects. A snapshot failure is
// returned before any connection is made.
func Open(ctx context.Context, opts Options) (*Session, error) {
	records, err := FetchSnapshot(ctx, opts.HTTPClient, opts.BaseURL, opts.Token, opts.RoomID)
	if err != nil {
		return nil, err
	}

	conn, err := Dial(ctx, opts.Dialer, opts.BaseURL, opts.Token)
	if err != nil {
		return nil, err
	}

	editor := NewEditor(opts.RoomID, conn, opts.Canvas)
	editor.Load(records)

	return &Session{
		editor: editor,
		conn:   conn,
		logger: logx.Logger().With().Int64("room_id", opts.RoomID).Logger(),
	}, nil
}

// Editor returns the session's editor. Only touch it from the goroutine
// running Run, or after Run has returned.
func (s *Session) Editor() *Editor { return s.editor }

// Run joins the room and then drives the editor from events and server
// messages on the calling goroutine. It returns nil when events is closed,
// ctx.Err() on cancellation, and an ErrConnectionLost error when the
// server goes away.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	if err := s.conn.Send(protocol.NewJoin(s.editor.RoomID())); err != nil {
		s.editor.ConnectionLost(err)
		_ = s.conn.Close()
		return err
	}

	inbound := s.conn.Inbound()
	for {
		select {
		case <-ctx.Done():
			s.leave()
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				s.leave()
				return nil
			}
			if err := ev.apply(s.editor); err != nil {
				if errors.Is(err, ErrConnectionLost) {
					s.editor.ConnectionLost(err)
				}
				s.logger.Warn().Err(err).Msg("Edit was not sent")
			}

		case env, ok := <-inbound:
			if !ok {
				err := s.conn.Err()
				if err == nil {
					err = ErrConnectionLost
				}
				s.editor.ConnectionLost(err)
				_ = s.conn.Close()
				return err
			}
			if err := s.editor.Apply(env); err != nil {
				s.logger.Warn().Err(err).Str("type", string(env.Type)).Msg("Ignoring server event")
			}
		}
	}
}

func (s *Session) leave() {
	if err := s.conn.Send(protocol.NewLeave(s.editor.RoomID())); err != nil {
		s.logger.Debug().Err(err).Msg("Leave not sent")
	}
	if err := s.conn.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("Close failed")
	}
}
