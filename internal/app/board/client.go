/*
Package board runs the server side of a shared drawing room.

This file defines Client, one authenticated websocket connection. ReadPump
handles the client's frames strictly in arrival order: each edit is
persisted before its authoritative event is broadcast, so every member sees
a room's events in persistence order. WritePump drains the send queue.
*/
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"drawify/internal/app/protocol"
	"drawify/internal/app/store"
	"drawify/internal/pkg/errs"
	"drawify/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of one inbound frame. Freehand strokes are long.
	maxMessageSize = protocol.MaxMessageSize

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256

	// upper bound for one store call made on behalf of a frame.
	storeTimeout = 5 * time.Second
)

// Client is one live connection bound to a verified user identity.
type Client struct {
	// sessionID distinguishes connections of the same user.
	sessionID string

	// userID is the verified identity behind the connection.
	userID string

	// underlying WebSocket connection object. Nil in unit tests.
	conn *websocket.Conn

	registry *Registry
	chats    store.ChatStore

	// ctx scopes store calls to the connection's lifetime.
	ctx context.Context

	// roomID is the joined room, 0 when none. Rooms reset it on removal.
	roomID atomic.Int64

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// structured logger with session and user context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(ctx context.Context, conn *websocket.Conn, userID string, registry *Registry, chats store.ChatStore) *Client {
	sessionID := uuid.NewString()

	return &Client{
		sessionID: sessionID,
		userID:    userID,
		conn:      conn,
		registry:  registry,
		chats:     chats,
		ctx:       ctx,
		send:      make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().
			Str("session_id", sessionID).
			Str("user_id", userID).
			Logger(),
	}
}

// UserID returns the identity the connection was authenticated as.
func (c *Client) UserID() string { return c.userID }

// RoomID returns the joined room, or 0.
func (c *Client) RoomID() int64 { return c.roomID.Load() }

// ReadPump reads frames until the connection fails or a connection-fatal
// error is reported, then leaves the room and closes the send queue.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		if fatal := c.handleFrame(frame); fatal {
			c.logger.Info().Msg("Closing connection after fatal error.")
			break
		}
	}
}

// cleanupOnDisconnect leaves the joined room before closing send, so no
// Room can queue to a closed channel.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	if roomID := c.roomID.Load(); roomID != 0 {
		c.registry.leaveClient(roomID, c)
		c.roomID.Store(0)
	}

	close(c.send)
}

// handleFrame dispatches one frame and reports whether the connection
// must be closed.
func (c *Client) handleFrame(frame []byte) bool {
	env, err := protocol.Decode(frame)
	if err != nil {
		c.logger.Warn().Err(err).Int("frame_bytes", len(frame)).Msg("Client sent malformed frame")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, err))
		return false
	}

	switch env.Type {
	case protocol.TypeJoinRoom:
		return c.handleJoin(env)

	case protocol.TypeLeaveRoom:
		c.handleLeave(env)

	case protocol.TypeChat:
		c.handleCreate(env)

	case protocol.TypeUpdate:
		c.handleUpdate(env)

	case protocol.TypeDelete:
		c.handleDelete(env)

	default:
		c.logger.Warn().Str("msg_type", string(env.Type)).Msg("Client sent unsupported message type")
		c.SendError(errs.NewError(errs.ErrUnsupportedMessageType, string(env.Type)))
	}
	return false
}

// handleJoin moves the connection into env.RoomID. An unknown room is fatal.
func (c *Client) handleJoin(env protocol.Envelope) bool {
	if current := c.roomID.Load(); current != 0 && current != env.RoomID {
		c.registry.leaveClient(current, c)
		c.roomID.CompareAndSwap(current, 0)
	}

	ctx, cancel := context.WithTimeout(c.ctx, storeTimeout)
	defer cancel()

	if err := c.registry.Join(ctx, env.RoomID, c); err != nil {
		if store.IsRoomNotFound(err) {
			c.logger.Warn().Int64("room_id", env.RoomID).Msg("Client tried to join unknown room")
			c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrRoomNotFound))
		} else {
			c.logger.Error().Err(err).Int64("room_id", env.RoomID).Msg("Failed to join room")
			c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrUnknown, err))
		}
		return true
	}
	return false
}

func (c *Client) handleLeave(env protocol.Envelope) {
	removed := c.registry.Leave(env.RoomID, c.userID)
	c.logger.Debug().Int64("room_id", env.RoomID).Int("connections", removed).Msg("User left room")
}

// joined reports whether env targets the room this connection is in,
// reporting an error to the client when it does not.
func (c *Client) joined(env protocol.Envelope) bool {
	if env.RoomID != 0 && env.RoomID == c.roomID.Load() {
		return true
	}
	c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrRoomNotJoined, env.RoomID))
	return false
}

func (c *Client) handleCreate(env protocol.Envelope) {
	if !c.joined(env) {
		return
	}

	s, err := env.Shape()
	if err != nil {
		c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrShapeInvalid, err))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, storeTimeout)
	defer cancel()

	chat, err := c.chats.InsertChat(ctx, env.RoomID, c.userID, s)
	if err != nil {
		c.reportStoreError(env.RoomID, 0, err)
		return
	}
	c.publish(protocol.TypeChat, chat)
}

func (c *Client) handleUpdate(env protocol.Envelope) {
	if !c.joined(env) {
		return
	}

	p, err := env.Update()
	if err != nil {
		c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrShapeInvalid, err))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, storeTimeout)
	defer cancel()

	chat, err := c.chats.UpdateChat(ctx, p.ID, env.RoomID, p.Shape)
	if err != nil {
		c.reportStoreError(env.RoomID, p.ID, err)
		return
	}
	c.publish(protocol.TypeUpdate, chat)
}

func (c *Client) handleDelete(env protocol.Envelope) {
	if !c.joined(env) {
		return
	}

	p, err := env.Delete()
	if err != nil {
		c.SendErrorFor(env.RoomID, errs.NewError(errs.ErrMalformedMessage, err))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, storeTimeout)
	defer cancel()

	chat, err := c.chats.DeleteChat(ctx, p.ID, env.RoomID)
	if err != nil {
		c.reportStoreError(env.RoomID, p.ID, err)
		return
	}
	c.publish(protocol.TypeDelete, chat)
}

// reportStoreError maps a store failure onto the error event sent back to
// the originator. Nothing is broadcast.
func (c *Client) reportStoreError(roomID, id int64, err error) {
	switch {
	case store.IsChatNotFound(err):
		c.SendErrorFor(roomID, errs.NewError(errs.ErrShapeNotFound, id))
	case store.IsRoomNotFound(err):
		c.SendErrorFor(roomID, errs.NewError(errs.ErrRoomNotFound))
	case store.IsInvalidShape(err):
		c.SendErrorFor(roomID, errs.NewError(errs.ErrShapeInvalid, err))
	default:
		c.logger.Error().Err(err).Int64("room_id", roomID).Int64("chat_id", id).Msg("Store call failed")
		c.SendErrorFor(roomID, errs.NewError(errs.ErrPersistenceFailed))
	}
}

// publish broadcasts the authoritative event for a persisted record.
func (c *Client) publish(t protocol.Type, chat store.Chat) {
	env, err := protocol.NewRecordEvent(t, chat.Record())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build record event for broadcast")
		return
	}
	if err := c.registry.Broadcast(chat.RoomID, env); err != nil {
		c.logger.Error().Err(err).Int64("room_id", chat.RoomID).Msg("Broadcast failed")
	}
}

// WritePump writes queued messages and heartbeats until send is closed or
// a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one message, or the close frame once send is
// closed. It returns false when the pump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendMessage marshals data onto the send queue without blocking.
func (c *Client) sendMessage(data any) error {
	messageBytes, err := json.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling data for client")
		return err
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return fmt.Errorf("client send queue full")
	}
}

// SendError reports err to this connection only, tagged with the joined room.
func (c *Client) SendError(err error) {
	c.SendErrorFor(c.roomID.Load(), err)
}

// SendErrorFor reports err to this connection only, tagged with roomID.
func (c *Client) SendErrorFor(roomID int64, err error) {
	if sendErr := c.sendMessage(protocol.NewError(roomID, errs.Message(err))); sendErr != nil {
		c.logger.Warn().Err(sendErr).Msg("Failed to queue error event")
	}
}

func (c *Client) closeConn() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection already closed")
	}
}

// RejectConnection writes a single ERROR event and a close frame to a
// connection that never became a Client, then closes it.
func RejectConnection(conn *websocket.Conn, err error) {
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logx.Debug("rejected connection close error", "error", cerr.Error())
		}
	}()

	deadline := time.Now().Add(writeWait)
	if werr := conn.SetWriteDeadline(deadline); werr != nil {
		return
	}

	if werr := conn.WriteJSON(protocol.NewError(0, errs.Message(err))); werr != nil {
		logx.Warn("failed to write rejection", "error", werr.Error())
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, errs.Message(err))
	if werr := conn.WriteControl(websocket.CloseMessage, closeMsg, deadline); werr != nil {
		logx.Debug("failed to write close frame", "error", werr.Error())
	}
}
