// Package mcp exposes the compendium over the Model Context Protocol so
// assistants can search entries, fetch them, resolve names, and inspect the
// resolution audit.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"compendium/internal/store"
)

// Querier is the read-only slice of the store the tools need.
type Querier interface {
	Search(ctx context.Context, query, category string) ([]store.SearchResult, error)
	GetEntry(ctx context.Context, category, id string) (*store.Entry, error)
	IDsForName(ctx context.Context, nameLower string) ([]string, error)
	EntryIDByName(ctx context.Context, category, nameLower string) (string, error)
	ResolutionSummary(ctx context.Context) (map[store.ResolutionStatus]int, error)
	NotFoundRefs(ctx context.Context) ([]store.ResolutionRecord, error)
}

type Server struct {
	db  Querier
	mcp *sdk.Server
}

func NewServer(db Querier, version string) *Server {
	s := &Server{
		db: db,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "compendium",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
