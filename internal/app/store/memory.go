package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"drawify/internal/app/shape"
)

// Memory is an in-process Store. Record ids are global and increasing,
// which keeps them unique within every room.
type Memory struct {
	mu     sync.RWMutex
	rooms  map[int64]Room
	slugs  map[string]int64
	chats  map[int64]Chat
	nextRm int64
	nextID int64
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[int64]Room),
		slugs: make(map[string]int64),
		chats: make(map[int64]Chat),
	}
}

// CreateRoom adds a room with the next free id.
func (m *Memory) CreateRoom(ctx context.Context, slug, adminID string) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.putRoomLocked(ctx, Room{ID: m.nextRm + 1, Slug: slug, AdminID: adminID})
}

// PutRoom adds a room with a caller-chosen id.
func (m *Memory) PutRoom(ctx context.Context, room Room) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.putRoomLocked(ctx, room)
}

func (m *Memory) putRoomLocked(ctx context.Context, room Room) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	if _, ok := m.slugs[room.Slug]; ok {
		return Room{}, fmt.Errorf("room slug %q already exists", room.Slug)
	}
	if _, ok := m.rooms[room.ID]; ok {
		return Room{}, fmt.Errorf("room id %d already exists", room.ID)
	}

	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	m.rooms[room.ID] = room
	m.slugs[room.Slug] = room.ID
	if room.ID > m.nextRm {
		m.nextRm = room.ID
	}
	return room, nil
}

func (m *Memory) FindRoomByID(ctx context.Context, id int64) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[id]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (m *Memory) FindRoomBySlug(ctx context.Context, slug string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugs[slug]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return m.rooms[id], nil
}

func (m *Memory) InsertChat(ctx context.Context, roomID int64, userID string, s shape.Shape) (Chat, error) {
	if err := ctx.Err(); err != nil {
		return Chat{}, err
	}
	text, err := shape.Encode(s)
	if err != nil {
		return Chat{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomID]; !ok {
		return Chat{}, ErrRoomNotFound
	}

	m.nextID++
	c := Chat{ID: m.nextID, RoomID: roomID, UserID: userID, Kind: s.Kind, Message: text}
	m.chats[c.ID] = c
	return c, nil
}

func (m *Memory) UpdateChat(ctx context.Context, id, roomID int64, s shape.Shape) (Chat, error) {
	if err := ctx.Err(); err != nil {
		return Chat{}, err
	}
	text, err := shape.Encode(s)
	if err != nil {
		return Chat{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chats[id]
	if !ok || c.RoomID != roomID || c.Kind != s.Kind {
		return Chat{}, ErrChatNotFound
	}

	c.Message = text
	m.chats[id] = c
	return c, nil
}

func (m *Memory) DeleteChat(ctx context.Context, id, roomID int64) (Chat, error) {
	if err := ctx.Err(); err != nil {
		return Chat{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chats[id]
	if !ok || c.RoomID != roomID {
		return Chat{}, ErrChatNotFound
	}

	delete(m.chats, id)
	return c, nil
}

func (m *Memory) ListChats(ctx context.Context, roomID int64, limit int) ([]Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]Chat, 0)
	for _, c := range m.chats {
		if c.RoomID == roomID {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
