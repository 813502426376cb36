package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawify/internal/app/shape"
)

func seeded(t *testing.T) (*Memory, Room) {
	t.Helper()
	m := NewMemory()
	room, err := m.PutRoom(context.Background(), Room{ID: 42, Slug: "design-review", AdminID: "admin"})
	require.NoError(t, err)
	return m, room
}

func TestMemoryRooms(t *testing.T) {
	m, room := seeded(t)
	ctx := context.Background()

	got, err := m.FindRoomByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, room, got)

	got, err = m.FindRoomBySlug(ctx, "design-review")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)

	_, err = m.FindRoomByID(ctx, 7)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = m.PutRoom(ctx, Room{ID: 43, Slug: "design-review"})
	assert.Error(t, err, "slugs are unique")

	next, err := m.CreateRoom(ctx, "standup", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(43), next.ID)
}

func TestMemoryChatLifecycle(t *testing.T) {
	m, _ := seeded(t)
	ctx := context.Background()

	created, err := m.InsertChat(ctx, 42, "u1", shape.NewRect(0, 0, 10, 10))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, shape.KindRect, created.Kind)

	updated, err := m.UpdateChat(ctx, created.ID, 42, shape.NewRect(0, 0, 99, 10))
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.UserID, "the author is kept on update")
	s, err := shape.Decode(updated.Message)
	require.NoError(t, err)
	assert.Equal(t, 99.0, s.Width)

	_, err = m.UpdateChat(ctx, created.ID, 42, shape.NewCircle(0, 0, 1))
	assert.ErrorIs(t, err, ErrChatNotFound, "kind is immutable")

	_, err = m.UpdateChat(ctx, created.ID, 41, shape.NewRect(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrChatNotFound, "records are scoped to their room")

	deleted, err := m.DeleteChat(ctx, created.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = m.DeleteChat(ctx, created.ID, 42)
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = m.InsertChat(ctx, 7, "u1", shape.NewRect(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryListChatsKeepsNewest(t *testing.T) {
	m, _ := seeded(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		c, err := m.InsertChat(ctx, 42, "u1", shape.NewCircle(float64(i), 0, 1))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	chats, err := m.ListChats(ctx, 42, 3)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, ids[2:], []int64{chats[0].ID, chats[1].ID, chats[2].ID})

	empty, err := m.ListChats(ctx, 99, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryHonoursContext(t *testing.T) {
	m, _ := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.FindRoomByID(ctx, 42)
	assert.ErrorIs(t, err, context.Canceled)
}
