package alias

// DefaultFilter is the optional filter applied to every collection of an alias.
type DefaultFilter struct {
	SuperTypeGroup string `json:"superTypeGroup,omitempty"`
}

// CollectAlias maps a human alias to a remote source and entity type.
type CollectAlias struct {
	Alias         string         `json:"alias"`
	Source        string         `json:"source"`
	Entity        string         `json:"entity"`
	Label         string         `json:"label,omitempty"`
	DefaultFilter *DefaultFilter `json:"defaultFilter,omitempty"`
	FilterByRace  string         `json:"filterByRace,omitempty"`
	FilterByType  string         `json:"filterByType,omitempty"`
}

// Filter query keys understood by remote sources.
const (
	FilterSuperTypeGroup = "superTypeGroup"
	FilterRace           = "race"
	FilterTypeID         = "typeId"
)

// Filter renders the alias filters as opaque key/value pairs.
// The map is empty, never nil, when no filter is set.
func (a CollectAlias) Filter() map[string]string {
	out := make(map[string]string, 3)
	if a.DefaultFilter != nil && a.DefaultFilter.SuperTypeGroup != "" {
		out[FilterSuperTypeGroup] = a.DefaultFilter.SuperTypeGroup
	}
	if a.FilterByRace != "" {
		out[FilterRace] = a.FilterByRace
	}
	if a.FilterByType != "" {
		out[FilterTypeID] = a.FilterByType
	}
	return out
}

// DisplayName returns the label, falling back to the alias key.
func (a CollectAlias) DisplayName() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Alias
}
