package mcp

import (
	"context"
	"testing"

	"compendium/internal/store"
)

type mockQuerier struct {
	searchResult  []store.SearchResult
	entryResult   *store.Entry
	idsByName     map[string][]string
	summaryResult map[store.ResolutionStatus]int
	notFound      []store.ResolutionRecord

	lastSearchQuery    string
	lastSearchCategory string
	lastGetCategory    string
	lastGetID          string
}

func (m *mockQuerier) Search(_ context.Context, query, category string) ([]store.SearchResult, error) {
	m.lastSearchQuery = query
	m.lastSearchCategory = category
	return m.searchResult, nil
}

func (m *mockQuerier) GetEntry(_ context.Context, category, id string) (*store.Entry, error) {
	m.lastGetCategory = category
	m.lastGetID = id
	return m.entryResult, nil
}

func (m *mockQuerier) IDsForName(_ context.Context, nameLower string) ([]string, error) {
	return m.idsByName[nameLower], nil
}

func (m *mockQuerier) EntryIDByName(context.Context, string, string) (string, error) {
	return "", nil
}

func (m *mockQuerier) ResolutionSummary(context.Context) (map[store.ResolutionStatus]int, error) {
	return m.summaryResult, nil
}

func (m *mockQuerier) NotFoundRefs(context.Context) ([]store.ResolutionRecord, error) {
	return m.notFound, nil
}

func TestSearch(t *testing.T) {
	mock := &mockQuerier{
		searchResult: []store.SearchResult{
			{Category: "power", ID: "power435", Name: "Twin Strike", Snippet: "two **strikes**"},
		},
	}
	server := NewServer(mock, "test")

	_, output, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "strike", Category: "power"})
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if mock.lastSearchQuery != "strike" || mock.lastSearchCategory != "power" {
		t.Errorf("search called with %q/%q", mock.lastSearchQuery, mock.lastSearchCategory)
	}
	if len(output.Results) != 1 || output.Results[0].ID != "power435" {
		t.Errorf("Results = %+v", output.Results)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	server := NewServer(&mockQuerier{}, "test")
	if _, _, err := server.handleSearch(context.Background(), nil, SearchInput{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestGetEntry(t *testing.T) {
	level := 1
	mock := &mockQuerier{
		entryResult: &store.Entry{
			Category: "power",
			ID:       "power435",
			Name:     "Twin Strike",
			Fields:   map[string]string{"class_name": "Ranger"},
			Level:    &level,
			Usage:    "At-Will",
		},
	}
	server := NewServer(mock, "test")

	_, output, err := server.handleGetEntry(context.Background(), nil, GetEntryInput{Category: "power", ID: "power435"})
	if err != nil {
		t.Fatalf("handleGetEntry() error = %v", err)
	}
	if output.Name != "Twin Strike" || output.Usage != "At-Will" {
		t.Errorf("output = %+v", output)
	}
	if output.Fields["class_name"] != "Ranger" {
		t.Errorf("Fields = %v", output.Fields)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	server := NewServer(&mockQuerier{}, "test")
	if _, _, err := server.handleGetEntry(context.Background(), nil, GetEntryInput{Category: "power", ID: "power999"}); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestLookupName(t *testing.T) {
	mock := &mockQuerier{
		idsByName: map[string][]string{"twin strike": {"power435"}},
	}
	server := NewServer(mock, "test")

	_, output, err := server.handleLookupName(context.Background(), nil, LookupNameInput{Name: "Twin Strike"})
	if err != nil {
		t.Fatalf("handleLookupName() error = %v", err)
	}
	if !output.Found || output.ID != "power435" || output.Category != "power" {
		t.Errorf("output = %+v", output)
	}

	_, output, err = server.handleLookupName(context.Background(), nil, LookupNameInput{Name: "No Such Entry"})
	if err != nil {
		t.Fatalf("handleLookupName() error = %v", err)
	}
	if output.Found {
		t.Errorf("miss reported as found: %+v", output)
	}
}

func TestResolutionSummary(t *testing.T) {
	mock := &mockQuerier{
		summaryResult: map[store.ResolutionStatus]int{
			store.StatusMatched:  10,
			store.StatusNotFound: 2,
		},
		notFound: []store.ResolutionRecord{
			{ExternalRef: "ID_FMP_POWER_999", AttemptedID: "power999", Occurrences: 3},
		},
	}
	server := NewServer(mock, "test")

	_, output, err := server.handleResolutionSummary(context.Background(), nil, ResolutionSummaryInput{})
	if err != nil {
		t.Fatalf("handleResolutionSummary() error = %v", err)
	}
	if output.ByStatus["matched"] != 10 || output.ByStatus["not_found"] != 2 {
		t.Errorf("ByStatus = %v", output.ByStatus)
	}
	if len(output.NotFound) != 1 || output.NotFound[0].ExternalRef != "ID_FMP_POWER_999" {
		t.Errorf("NotFound = %+v", output.NotFound)
	}
}
