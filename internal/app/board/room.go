/*
Package board runs the server side of a shared drawing room.

This file defines Room, the single goroutine that owns a room's membership.
Joins, leaves and broadcasts are requests sent to that goroutine, so the
member set is never touched concurrently and every broadcast fans out over
the membership as it stands when the message is dequeued.
*/
package board

import (
	"time"

	"github.com/rs/zerolog"

	"drawify/internal/pkg/logx"
)

const (
	broadcastChannelBuffer = 1024

	// RoomInactivityTimeout is how long an empty room lingers before its goroutine exits.
	RoomInactivityTimeout = 5 * time.Minute
)

type joinRequest struct {
	client *Client
	done   chan struct{}
}

// leaveRequest removes either one connection or, when client is nil,
// every connection of userID.
type leaveRequest struct {
	client *Client
	userID string
	done   chan []*Client
}

// Room is the live membership of one drawing room.
type Room struct {
	// ID is the persistent room identifier.
	ID int64

	// members is owned by the Run goroutine.
	members map[*Client]struct{}

	join      chan joinRequest
	leave     chan leaveRequest
	broadcast chan []byte
	snapshot  chan chan []*Client

	// cleanup notifies the Registry that this room has stopped.
	cleanup chan<- *Room

	stop chan struct{}
	done chan struct{}

	idleTimeout time.Duration

	logger zerolog.Logger
}

func newRoom(id int64, idleTimeout time.Duration, cleanup chan<- *Room) *Room {
	return &Room{
		ID:          id,
		members:     make(map[*Client]struct{}),
		join:        make(chan joinRequest),
		leave:       make(chan leaveRequest),
		broadcast:   make(chan []byte, broadcastChannelBuffer),
		snapshot:    make(chan chan []*Client),
		cleanup:     cleanup,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		logger:      logx.Logger().With().Int64("room_id", id).Logger(),
	}
}

// Run is the room's event loop. It returns when the room has been empty for
// idleTimeout or when Stop is called.
func (r *Room) Run() {
	idle := time.NewTimer(r.idleTimeout)
	defer idle.Stop()
	defer r.exit()

	r.logger.Info().Msg("Room started.")

	for {
		select {
		case req := <-r.join:
			r.members[req.client] = struct{}{}
			idle.Stop()
			close(req.done)

			r.logger.Info().
				Str("session_id", req.client.sessionID).
				Str("user_id", req.client.userID).
				Int("members", len(r.members)).
				Msg("Client joined room.")

		case req := <-r.leave:
			removed := r.removeMembers(req)
			if len(r.members) == 0 {
				idle.Reset(r.idleTimeout)
			}
			req.done <- removed

		case msg := <-r.broadcast:
			if r.fanOut(msg) && len(r.members) == 0 {
				idle.Reset(r.idleTimeout)
			}

		case reply := <-r.snapshot:
			members := make([]*Client, 0, len(r.members))
			for c := range r.members {
				members = append(members, c)
			}
			reply <- members

		case <-idle.C:
			if len(r.members) == 0 {
				r.logger.Info().Dur("timeout", r.idleTimeout).Msg("Room inactive, shutting down.")
				return
			}

		case <-r.stop:
			r.logger.Info().Msg("Room forced stop initiated.")
			return
		}
	}
}

func (r *Room) removeMembers(req leaveRequest) []*Client {
	var removed []*Client
	for c := range r.members {
		if c == req.client || (req.client == nil && c.userID == req.userID) {
			delete(r.members, c)
			c.roomID.CompareAndSwap(r.ID, 0)
			removed = append(removed, c)
		}
	}

	for _, c := range removed {
		r.logger.Info().
			Str("session_id", c.sessionID).
			Str("user_id", c.userID).
			Int("members", len(r.members)).
			Msg("Client left room.")
	}
	return removed
}

// fanOut queues msg to every member without blocking. A member whose queue
// is full is dropped from the room and its connection closed. It reports
// whether any member was dropped.
func (r *Room) fanOut(msg []byte) (dropped bool) {
	for c := range r.members {
		select {
		case c.send <- msg:
		default:
			r.logger.Warn().
				Str("session_id", c.sessionID).
				Msg("Client send queue full, dropping client from room.")

			delete(r.members, c)
			c.roomID.CompareAndSwap(r.ID, 0)
			c.closeConn()
			dropped = true
		}
	}
	if len(r.members) == 0 && !dropped {
		r.logger.Debug().Msg("Broadcast to empty room.")
	}
	return dropped
}

// exit runs when the loop returns: remaining members are disconnected and
// the Registry is told to forget the room.
func (r *Room) exit() {
	close(r.done)

	for c := range r.members {
		c.roomID.CompareAndSwap(r.ID, 0)
		c.closeConn()
	}
	r.members = nil

	select {
	case r.cleanup <- r:
	default:
		r.logger.Warn().Msg("Registry cleanup channel full, room will be dropped on next lookup.")
	}

	r.logger.Info().Msg("Room Run loop finished.")
}

// Stop ends the Run loop. It is safe to call more than once.
func (r *Room) Stop() {
	select {
	case r.stop <- struct{}{}:
	case <-r.done:
	}
}

// add registers c. It reports false if the room has already stopped.
func (r *Room) add(c *Client) bool {
	req := joinRequest{client: c, done: make(chan struct{})}
	select {
	case r.join <- req:
		<-req.done
		return true
	case <-r.done:
		return false
	}
}

// remove unregisters one connection, or every connection of userID when c is nil.
func (r *Room) remove(c *Client, userID string) []*Client {
	req := leaveRequest{client: c, userID: userID, done: make(chan []*Client, 1)}
	select {
	case r.leave <- req:
		return <-req.done
	case <-r.done:
		return nil
	}
}

// publish queues an encoded event for fan-out. Events published after the
// room stopped are dropped.
func (r *Room) publish(msg []byte) bool {
	select {
	case r.broadcast <- msg:
		return true
	case <-r.done:
		return false
	}
}

// Members returns the connections in the room at the time of the call.
func (r *Room) Members() []*Client {
	reply := make(chan []*Client, 1)
	select {
	case r.snapshot <- reply:
		return <-reply
	case <-r.done:
		return nil
	}
}
