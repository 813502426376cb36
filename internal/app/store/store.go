/*
Package store defines the persistence gateway the board relies on: room
lookup plus the chat records holding each live shape. The Postgres
implementation lives in package db; Memory backs tests and local runs.
*/
package store

import (
	"context"
	"errors"
	"time"

	"drawify/internal/app/protocol"
	"drawify/internal/app/shape"
)

var (
	// ErrRoomNotFound is returned when a room id or slug does not resolve.
	ErrRoomNotFound = errors.New("room not found")

	// ErrChatNotFound is returned when no record matches {id, roomId}, or
	// when an update tries to change the record's kind.
	ErrChatNotFound = errors.New("chat not found")
)

// Room is a collaboration session created by an admin outside the board.
type Room struct {
	ID        int64
	Slug      string
	AdminID   string
	CreatedAt time.Time
}

// Chat is the persisted state of one live shape.
type Chat struct {
	ID      int64
	RoomID  int64
	UserID  string
	Kind    shape.Kind
	Message string
}

// Record converts c into its wire form.
func (c Chat) Record() protocol.Record {
	return protocol.Record{ID: c.ID, RoomID: c.RoomID, UserID: c.UserID, Message: c.Message}
}

// Records converts a list of chats into wire records.
func Records(chats []Chat) []protocol.Record {
	out := make([]protocol.Record, len(chats))
	for i, c := range chats {
		out[i] = c.Record()
	}
	return out
}

// RoomFinder resolves rooms. Both lookups return ErrRoomNotFound on a miss.
type RoomFinder interface {
	FindRoomByID(ctx context.Context, id int64) (Room, error)
	FindRoomBySlug(ctx context.Context, slug string) (Room, error)
}

// ChatStore persists chat records.
type ChatStore interface {
	// InsertChat appends a record and returns it with its assigned id.
	InsertChat(ctx context.Context, roomID int64, userID string, s shape.Shape) (Chat, error)

	// UpdateChat replaces the shape of record {id, roomID}. The kind must match.
	UpdateChat(ctx context.Context, id, roomID int64, s shape.Shape) (Chat, error)

	// DeleteChat removes record {id, roomID} permanently and returns it.
	DeleteChat(ctx context.Context, id, roomID int64) (Chat, error)

	// ListChats returns up to limit of the newest records of a room in
	// ascending id order.
	ListChats(ctx context.Context, roomID int64, limit int) ([]Chat, error)
}

// Store is the full gateway.
type Store interface {
	RoomFinder
	ChatStore
}

// IsRoomNotFound reports whether err means the room does not exist.
func IsRoomNotFound(err error) bool { return errors.Is(err, ErrRoomNotFound) }

// IsChatNotFound reports whether err means the record does not exist in the room.
func IsChatNotFound(err error) bool { return errors.Is(err, ErrChatNotFound) }

// IsInvalidShape reports whether a write was refused because of its shape.
func IsInvalidShape(err error) bool {
	return errors.Is(err, shape.ErrUnknownKind) || errors.Is(err, shape.ErrInvalidGeometry)
}
