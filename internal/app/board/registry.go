package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"drawify/internal/app/protocol"
	"drawify/internal/app/store"
	"drawify/internal/pkg/logx"
)

// ErrRegistryClosed is returned by Join once Shutdown has started.
var ErrRegistryClosed = errors.New("registry is shut down")

const cleanupChannelBuffer = 64

// Registry tracks the running Room of every room that has members.
type Registry struct {
	// rooms maps a room id to its running Room.
	rooms map[int64]*Room

	finder      store.RoomFinder
	idleTimeout time.Duration

	// mu protects rooms and closed.
	mu     sync.Mutex
	closed bool

	// cleanup receives rooms whose Run loop has exited.
	cleanup chan *Room

	// roomsWG tracks Room goroutines; wg tracks the cleanup loop.
	roomsWG sync.WaitGroup
	wg      sync.WaitGroup

	logger zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithIdleTimeout sets how long an empty room is kept before it is torn down.
func WithIdleTimeout(d time.Duration) Option {
	return func(reg *Registry) {
		if d > 0 {
			reg.idleTimeout = d
		}
	}
}

// NewRegistry starts a Registry that validates joins against finder.
func NewRegistry(finder store.RoomFinder, opts ...Option) *Registry {
	reg := &Registry{
		rooms:       make(map[int64]*Room),
		finder:      finder,
		idleTimeout: RoomInactivityTimeout,
		cleanup:     make(chan *Room, cleanupChannelBuffer),
		logger:      logx.Component("Registry"),
	}
	for _, opt := range opts {
		opt(reg)
	}

	reg.wg.Add(1)
	go reg.runCleanupLoop()

	return reg
}

func (reg *Registry) runCleanupLoop() {
	defer reg.wg.Done()

	reg.logger.Info().Msg("Cleanup loop started.")

	for room := range reg.cleanup {
		reg.forget(room)
	}

	reg.logger.Info().Msg("Cleanup loop stopped.")
}

// forget drops room from the map unless a newer Room already replaced it.
func (reg *Registry) forget(room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if current, ok := reg.rooms[room.ID]; ok && current == room {
		delete(reg.rooms, room.ID)
		reg.logger.Info().Int64("room_id", room.ID).Msg("Room successfully removed.")
	}
}

func (reg *Registry) getOrCreate(roomID int64) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.closed {
		return nil, ErrRegistryClosed
	}

	if room, ok := reg.rooms[roomID]; ok {
		return room, nil
	}

	room := newRoom(roomID, reg.idleTimeout, reg.cleanup)
	reg.rooms[roomID] = room

	reg.roomsWG.Add(1)
	go func() {
		defer reg.roomsWG.Done()
		room.Run()
	}()

	reg.logger.Info().Int64("room_id", roomID).Msg("New Room created and started.")
	return room, nil
}

func (reg *Registry) lookup(roomID int64) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[roomID]
}

// Join adds c to roomID after checking that the room exists. It returns
// store.ErrRoomNotFound for unknown rooms.
func (reg *Registry) Join(ctx context.Context, roomID int64, c *Client) error {
	if _, err := reg.finder.FindRoomByID(ctx, roomID); err != nil {
		return fmt.Errorf("join room %d: %w", roomID, err)
	}

	c.roomID.Store(roomID)
	for {
		room, err := reg.getOrCreate(roomID)
		if err != nil {
			c.roomID.CompareAndSwap(roomID, 0)
			return err
		}
		if room.add(c) {
			return nil
		}
		// the room exited between lookup and join
		reg.forget(room)
	}
}

// Leave removes every connection of userID from roomID and returns how many
// were removed.
func (reg *Registry) Leave(roomID int64, userID string) int {
	room := reg.lookup(roomID)
	if room == nil {
		return 0
	}
	return len(room.remove(nil, userID))
}

// leaveClient removes exactly one connection, used on connection teardown.
func (reg *Registry) leaveClient(roomID int64, c *Client) {
	if room := reg.lookup(roomID); room != nil {
		room.remove(c, "")
	}
}

// Broadcast delivers env to every current member of roomID. A room with no
// running Room has no members, so nothing is sent.
func (reg *Registry) Broadcast(roomID int64, env protocol.Envelope) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}

	room := reg.lookup(roomID)
	if room == nil {
		return nil
	}
	if !room.publish(msg) {
		reg.logger.Debug().Int64("room_id", roomID).Msg("Broadcast to stopped room dropped.")
	}
	return nil
}

// Members returns the connections currently in roomID.
func (reg *Registry) Members(roomID int64) []*Client {
	room := reg.lookup(roomID)
	if room == nil {
		return nil
	}
	return room.Members()
}

// Shutdown stops every room, disconnecting their members, and waits for all
// registry goroutines to exit. Join fails with ErrRegistryClosed afterwards.
func (reg *Registry) Shutdown() {
	reg.logger.Info().Msg("Shutting down Registry...")

	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return
	}
	reg.closed = true
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
	reg.roomsWG.Wait()

	close(reg.cleanup)
	reg.wg.Wait()

	reg.logger.Info().Int("rooms_stopped", len(rooms)).Msg("Registry shutdown complete.")
}
