package store

// Entry is one canonical record. IDs are unique within their category only;
// the same id string may appear in several categories.
type Entry struct {
	Category   string
	ID         string
	Name       string
	Fields     map[string]string
	Level      *int
	Usage      string
	Defense    string
	RangeType  string
	RangeValue *int
	AreaType   string
	AreaSize   *int
	HTMLBody   string
	SearchText string

	Keywords    []string
	DamageTypes []string
	Conditions  []string
}

// ParseLogEntry records one derived-field extraction for later audit.
type ParseLogEntry struct {
	Category   string
	EntryID    string
	Field      string
	Value      string
	Source     string
	Confidence string
}

// Grant is one "entry A confers entry B" edge. The external refs and the
// display names captured at extraction time are always retained; the resolved
// compendium ids are additive enrichment.
type Grant struct {
	GranterRef        string
	GranterResolvedID string
	GranterType       string
	GranterName       string
	GrantedRef        string
	GrantedResolvedID string
	GrantedType       string
	GrantedName       string
	Requires          string
	Level             string
	Ordinal           int
}

// StatAddition is one named numeric/flag bonus conferred by an entry.
type StatAddition struct {
	GranterRef        string
	GranterResolvedID string
	GranterType       string
	GranterName       string
	StatName          string
	Value             string
	BonusType         string
	Requires          string
	Ordinal           int
}

// Modification alters a named field of another entry. The target is addressed
// by display name only, never by ref.
type Modification struct {
	GranterRef        string
	GranterResolvedID string
	GranterType       string
	GranterName       string
	TargetName        string
	TargetType        string
	Field             string
	Value             string
	ListAddition      string
	Requires          string
	Ordinal           int
}

type ResolutionStatus string

const (
	StatusMatched           ResolutionStatus = "matched"
	StatusMatchedNameSearch ResolutionStatus = "matched_name_search"
	StatusMatchedManual     ResolutionStatus = "matched_manual"
	StatusNotFound          ResolutionStatus = "not_found"
	StatusUnmappable        ResolutionStatus = "unmappable"
)

// ResolutionRecord is one audit row: how one distinct external ref fared
// against the cascade during a rebuild.
type ResolutionRecord struct {
	ExternalRef      string
	AttemptedID      string
	ResolvedID       string
	ResolvedCategory string
	Status           ResolutionStatus
	Method           string
	UnmappableReason string
	Name             string
	Occurrences      int
	AsGranter        int
	AsGranted        int
	InStatAdds       int
	InModifies       int
}

// RefUsage summarizes where one external ref appears across the rule graph,
// plus the display name captured at extraction time (the name-search key).
type RefUsage struct {
	Name       string
	AsGranter  int
	AsGranted  int
	InStatAdds int
	InModifies int
}

func (u RefUsage) Occurrences() int {
	return u.AsGranter + u.AsGranted + u.InStatAdds + u.InModifies
}

// ResolvedSet is the resolver's output: external ref -> canonical id, for
// refs that resolved by any method.
type ResolvedSet map[string]string

type RuleUpdateCounts struct {
	Granters int
	Granted  int
	StatAdds int
	Modifies int
}

type SearchResult struct {
	Category string
	ID       string
	Name     string
	Snippet  string
}
