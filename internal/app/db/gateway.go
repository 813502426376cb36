package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"drawify/internal/app/shape"
	"drawify/internal/app/store"
)

const (
	chatColumns = `id, room_id, user_id, kind, message`

	queryRoomByID   = `SELECT id, slug, admin_id, created_at FROM rooms WHERE id = $1`
	queryRoomBySlug = `SELECT id, slug, admin_id, created_at FROM rooms WHERE slug = $1`

	queryInsertChat = `INSERT INTO chats (room_id, user_id, kind, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + chatColumns

	queryUpdateChat = `UPDATE chats SET message = $4, updated_at = now()
		WHERE id = $1 AND room_id = $2 AND kind = $3
		RETURNING ` + chatColumns

	queryDeleteChat = `DELETE FROM chats WHERE id = $1 AND room_id = $2
		RETURNING ` + chatColumns

	queryListChats = `SELECT ` + chatColumns + ` FROM (
			SELECT ` + chatColumns + ` FROM chats WHERE room_id = $1 ORDER BY id DESC LIMIT $2
		) newest ORDER BY id ASC`
)

// Gateway is the PostgreSQL implementation of store.Store.
type Gateway struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Gateway)(nil)

// NewGateway wraps an open pool.
func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) FindRoomByID(ctx context.Context, id int64) (store.Room, error) {
	return g.findRoom(ctx, queryRoomByID, id)
}

func (g *Gateway) FindRoomBySlug(ctx context.Context, slug string) (store.Room, error) {
	return g.findRoom(ctx, queryRoomBySlug, slug)
}

func (g *Gateway) findRoom(ctx context.Context, query string, arg any) (store.Room, error) {
	var r store.Room
	err := g.pool.QueryRow(ctx, query, arg).Scan(&r.ID, &r.Slug, &r.AdminID, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Room{}, store.ErrRoomNotFound
	}
	if err != nil {
		return store.Room{}, fmt.Errorf("find room: %w", err)
	}
	return r, nil
}

func (g *Gateway) InsertChat(ctx context.Context, roomID int64, userID string, s shape.Shape) (store.Chat, error) {
	text, err := shape.Encode(s)
	if err != nil {
		return store.Chat{}, err
	}

	c, err := scanChat(g.pool.QueryRow(ctx, queryInsertChat, roomID, userID, string(s.Kind), text))
	switch {
	case IsForeignKeyViolation(err):
		return store.Chat{}, store.ErrRoomNotFound
	case IsCheckViolation(err):
		return store.Chat{}, fmt.Errorf("insert chat: %w: %q", shape.ErrUnknownKind, s.Kind)
	case err != nil:
		return store.Chat{}, fmt.Errorf("insert chat: %w", err)
	}
	return c, nil
}

func (g *Gateway) UpdateChat(ctx context.Context, id, roomID int64, s shape.Shape) (store.Chat, error) {
	text, err := shape.Encode(s)
	if err != nil {
		return store.Chat{}, err
	}

	c, err := scanChat(g.pool.QueryRow(ctx, queryUpdateChat, id, roomID, string(s.Kind), text))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Chat{}, store.ErrChatNotFound
	}
	if err != nil {
		return store.Chat{}, fmt.Errorf("update chat %d: %w", id, err)
	}
	return c, nil
}

func (g *Gateway) DeleteChat(ctx context.Context, id, roomID int64) (store.Chat, error) {
	c, err := scanChat(g.pool.QueryRow(ctx, queryDeleteChat, id, roomID))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Chat{}, store.ErrChatNotFound
	}
	if err != nil {
		return store.Chat{}, fmt.Errorf("delete chat %d: %w", id, err)
	}
	return c, nil
}

func (g *Gateway) ListChats(ctx context.Context, roomID int64, limit int) ([]store.Chat, error) {
	rows, err := g.pool.Query(ctx, queryListChats, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Chat, error) {
		return scanChat(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func scanChat(row pgx.Row) (store.Chat, error) {
	var (
		c    store.Chat
		kind string
	)
	if err := row.Scan(&c.ID, &c.RoomID, &c.UserID, &kind, &c.Message); err != nil {
		return store.Chat{}, err
	}
	c.Kind = shape.Kind(kind)
	return c, nil
}
