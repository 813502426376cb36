package handler

import (
	"drawify/internal/app/board"
	"drawify/internal/app/export"
	"drawify/internal/app/store"
	"drawify/internal/configs"
	"drawify/internal/pkg/auth/jwt"
)

type AppDeps struct {
	Registry *board.Registry
	Config   *configs.AppConfig
	Store    store.Store
	Verifier jwt.Verifier

	// Exporter is nil when object storage is not configured.
	Exporter *export.Exporter
}
