// Package mcp exposes the sprite store's query surface and the character
// composer as MCP tools over a stdio transport.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"spritedb/internal/compose"
	"spritedb/internal/config"
	"spritedb/internal/store"
)

type Server struct {
	cfg      *config.ProjectConfig
	db       store.Store
	composer *compose.Composer
	mcp      *sdk.Server
}

func NewServer(cfg *config.ProjectConfig, db store.Store, version string) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		composer: compose.New(db, cfg),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "spritedb",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
