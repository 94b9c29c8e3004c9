package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"compendium/internal/resolve"
	"compendium/internal/store"
)

type SearchInput struct {
	Query    string `json:"query" jsonschema:"search terms"`
	Category string `json:"category,omitempty" jsonschema:"restrict to one category"`
}

type SearchResultOutput struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Snippet  string `json:"snippet,omitempty"`
}

type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type GetEntryInput struct {
	Category string `json:"category" jsonschema:"entry category"`
	ID       string `json:"id" jsonschema:"entry id"`
}

type EntryOutput struct {
	Category    string            `json:"category"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Fields      map[string]string `json:"fields"`
	Level       *int              `json:"level,omitempty"`
	Usage       string            `json:"usage,omitempty"`
	Defense     string            `json:"defense_targeted,omitempty"`
	RangeType   string            `json:"range_type,omitempty"`
	RangeValue  *int              `json:"range_value,omitempty"`
	AreaType    string            `json:"area_type,omitempty"`
	AreaSize    *int              `json:"area_size,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	DamageTypes []string          `json:"damage_types,omitempty"`
	Conditions  []string          `json:"conditions,omitempty"`
	HTMLBody    string            `json:"html_body,omitempty"`
}

type LookupNameInput struct {
	Name     string `json:"name" jsonschema:"display name to resolve"`
	Category string `json:"category,omitempty" jsonschema:"restrict to one category"`
}

type LookupNameOutput struct {
	Found    bool   `json:"found"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Variant  string `json:"variant,omitempty" jsonschema:"the name variant that matched"`
}

type ResolutionSummaryInput struct{}

type ResolutionSummaryOutput struct {
	ByStatus map[string]int      `json:"by_status"`
	NotFound []NotFoundRefOutput `json:"not_found"`
}

type NotFoundRefOutput struct {
	ExternalRef string `json:"external_ref"`
	AttemptedID string `json:"attempted_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Occurrences int    `json:"occurrences"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_compendium",
		Description: "Full-text search over compendium entries",
	}, s.handleSearch)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entry",
		Description: "Retrieve one entry with its fields and derived data",
	}, s.handleGetEntry)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "lookup_name",
		Description: "Resolve a display name to a canonical entry id",
	}, s.handleLookupName)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolution_summary",
		Description: "Summarize the latest identity-resolution run",
	}, s.handleResolutionSummary)
}

func (s *Server) handleSearch(ctx context.Context, req *sdk.CallToolRequest, input SearchInput) (*sdk.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.Search(ctx, input.Query, input.Category)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		output = append(output, SearchResultOutput{
			Category: r.Category,
			ID:       r.ID,
			Name:     r.Name,
			Snippet:  r.Snippet,
		})
	}
	return nil, SearchOutput{Results: output}, nil
}

func (s *Server) handleGetEntry(ctx context.Context, req *sdk.CallToolRequest, input GetEntryInput) (*sdk.CallToolResult, EntryOutput, error) {
	if input.Category == "" || input.ID == "" {
		return nil, EntryOutput{}, fmt.Errorf("category and id are required")
	}
	entry, err := s.db.GetEntry(ctx, input.Category, input.ID)
	if err != nil {
		return nil, EntryOutput{}, err
	}
	if entry == nil {
		return nil, EntryOutput{}, fmt.Errorf("entry not found")
	}
	return nil, entryOutput(entry), nil
}

func (s *Server) handleLookupName(ctx context.Context, req *sdk.CallToolRequest, input LookupNameInput) (*sdk.CallToolResult, LookupNameOutput, error) {
	if input.Name == "" {
		return nil, LookupNameOutput{}, fmt.Errorf("name is required")
	}
	hit, err := resolve.Lookup(ctx, s.db, input.Name, input.Category)
	if err != nil {
		return nil, LookupNameOutput{}, err
	}
	if hit == nil {
		return nil, LookupNameOutput{Found: false}, nil
	}
	return nil, LookupNameOutput{
		Found:    true,
		ID:       hit.ID,
		Category: hit.Category,
		Variant:  hit.Variant,
	}, nil
}

func (s *Server) handleResolutionSummary(ctx context.Context, req *sdk.CallToolRequest, input ResolutionSummaryInput) (*sdk.CallToolResult, ResolutionSummaryOutput, error) {
	summary, err := s.db.ResolutionSummary(ctx)
	if err != nil {
		return nil, ResolutionSummaryOutput{}, err
	}
	notFound, err := s.db.NotFoundRefs(ctx)
	if err != nil {
		return nil, ResolutionSummaryOutput{}, err
	}

	byStatus := make(map[string]int, len(summary))
	for status, n := range summary {
		byStatus[string(status)] = n
	}
	refs := make([]NotFoundRefOutput, 0, len(notFound))
	for _, r := range notFound {
		refs = append(refs, NotFoundRefOutput{
			ExternalRef: r.ExternalRef,
			AttemptedID: r.AttemptedID,
			Name:        r.Name,
			Occurrences: r.Occurrences,
		})
	}
	return nil, ResolutionSummaryOutput{ByStatus: byStatus, NotFound: refs}, nil
}

func entryOutput(e *store.Entry) EntryOutput {
	return EntryOutput{
		Category:    e.Category,
		ID:          e.ID,
		Name:        e.Name,
		Fields:      e.Fields,
		Level:       e.Level,
		Usage:       e.Usage,
		Defense:     e.Defense,
		RangeType:   e.RangeType,
		RangeValue:  e.RangeValue,
		AreaType:    e.AreaType,
		AreaSize:    e.AreaSize,
		Keywords:    e.Keywords,
		DamageTypes: e.DamageTypes,
		Conditions:  e.Conditions,
		HTMLBody:    e.HTMLBody,
	}
}
