/*
Package handler provides HTTP handler functions for room lookup, the
out-of-band shape snapshot and room export.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"drawify/internal/app/protocol"
	"drawify/internal/app/store"
	"drawify/internal/pkg/errs"
	"drawify/internal/pkg/logx"
	"drawify/internal/pkg/req"
	"drawify/internal/pkg/resp"
)

// RoomView is the public form of a room.
type RoomView struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// HandleSnapshot returns the most recent shapes of a room in ascending id order.
func HandleSnapshot(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, customErr := req.Int64Param(r, "roomId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Store.FindRoomByID(r.Context(), roomID); err != nil {
			respondStoreError(w, r, err, "room_id", roomID)
			return
		}

		chats, err := deps.Store.ListChats(r.Context(), roomID, deps.Config.SnapshotLimit)
		if err != nil {
			respondStoreError(w, r, err, "room_id", roomID)
			return
		}

		resp.RespondSuccess(w, r, protocol.Snapshot{Chats: store.Records(chats)})
	}
}

// HandleFindRoom resolves a room slug.
func HandleFindRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		room, err := deps.Store.FindRoomBySlug(r.Context(), slug)
		if err != nil {
			respondStoreError(w, r, err, "slug", slug)
			return
		}

		resp.RespondSuccess(w, r, RoomView{ID: room.ID, Slug: room.Slug})
	}
}

// HandleExportRoom renders a room to PDF, stores it and returns a download link.
func HandleExportRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Exporter == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrExportUnavailable))
			return
		}

		roomID, customErr := req.Int64Param(r, "roomId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Exporter.Export(r.Context(), roomID)
		if err != nil {
			if store.IsRoomNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			logx.Error(err, "Room export failed", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrExportFailed))
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error, fields ...any) {
	if store.IsRoomNotFound(err) {
		resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
		return
	}
	logx.Error(err, "Store read failed", fields...)
	resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
}
