package store

import (
	"context"

	"github.com/stretchr/testify/mock"

	"drawify/internal/app/shape"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindRoomByID(ctx context.Context, id int64) (Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Room), args.Error(1)
}

func (m *MockStore) FindRoomBySlug(ctx context.Context, slug string) (Room, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(Room), args.Error(1)
}

func (m *MockStore) InsertChat(ctx context.Context, roomID int64, userID string, s shape.Shape) (Chat, error) {
	args := m.Called(ctx, roomID, userID, s)
	return args.Get(0).(Chat), args.Error(1)
}

func (m *MockStore) UpdateChat(ctx context.Context, id, roomID int64, s shape.Shape) (Chat, error) {
	args := m.Called(ctx, id, roomID, s)
	return args.Get(0).(Chat), args.Error(1)
}

func (m *MockStore) DeleteChat(ctx context.Context, id, roomID int64) (Chat, error) {
	args := m.Called(ctx, id, roomID)
	return args.Get(0).(Chat), args.Error(1)
}

func (m *MockStore) ListChats(ctx context.Context, roomID int64, limit int) ([]Chat, error) {
	args := m.Called(ctx, roomID, limit)
	return args.Get(0).([]Chat), args.Error(1)
}
