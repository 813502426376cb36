/*
Package export renders a room's live shapes into a PDF through the same
render pass clients use, and publishes the document to object storage
behind a presigned download link.
*/
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drawify/internal/app/canvas"
	"drawify/internal/app/storage"
	"drawify/internal/app/store"
	"drawify/internal/pkg/logx"
)

const (
	// DefaultLimit bounds how many records one export reads.
	DefaultLimit = 5000

	// LinkTTL is how long a download link stays valid.
	LinkTTL = 15 * time.Minute

	contentType = "application/pdf"
)

// Result describes a published export.
type Result struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Exporter renders and publishes room documents.
type Exporter struct {
	store   store.Store
	storage storage.Service
	limit   int
	now     func() time.Time
	logger  zerolog.Logger
}

// NewExporter returns an Exporter that reads up to limit records per room.
// A non-positive limit means DefaultLimit.
func NewExporter(st store.Store, svc storage.Service, limit int) *Exporter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Exporter{
		store:   st,
		storage: svc,
		limit:   limit,
		now:     time.Now,
		logger:  logx.Component("Exporter"),
	}
}

// RenderPDF writes room roomID as a single-page PDF to w. Records whose
// shape cannot be decoded are left out.
func (x *Exporter) RenderPDF(ctx context.Context, roomID int64, w io.Writer) error {
	room, err := x.store.FindRoomByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("export room %d: %w", roomID, err)
	}

	chats, err := x.store.ListChats(ctx, roomID, x.limit)
	if err != nil {
		return fmt.Errorf("list chats of room %d: %w", roomID, err)
	}

	items := make([]canvas.Item, 0, len(chats))
	for _, c := range chats {
		it, err := canvas.ItemFromRecord(c.Record())
		if err != nil {
			x.logger.Warn().Err(err).Int64("room_id", roomID).Int64("chat_id", c.ID).Msg("Skipping undecodable shape in export.")
			continue
		}
		items = append(items, it)
	}

	surface := newPDFSurface(room.Slug)
	canvas.Render(surface, canvas.Scene{Transform: fitTransform(items), Items: items})

	if err := surface.output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Export renders room roomID, uploads it and returns a download link valid
// for LinkTTL.
func (x *Exporter) Export(ctx context.Context, roomID int64) (Result, error) {
	var buf bytes.Buffer
	if err := x.RenderPDF(ctx, roomID, &buf); err != nil {
		return Result{}, err
	}

	key := fmt.Sprintf("rooms/%d/%s.pdf", roomID, uuid.NewString())
	if err := x.storage.Upload(ctx, key, contentType, &buf); err != nil {
		return Result{}, err
	}

	url, err := x.storage.PresignDownload(ctx, key, LinkTTL)
	if err != nil {
		if delErr := x.storage.Delete(ctx, key); delErr != nil {
			x.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove unreachable export.")
		}
		return Result{}, err
	}

	x.logger.Info().Int64("room_id", roomID).Str("key", key).Msg("Room exported.")
	return Result{Key: key, URL: url, ExpiresAt: x.now().Add(LinkTTL)}, nil
}
