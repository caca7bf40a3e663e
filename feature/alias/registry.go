package alias

import (
	"sort"
	"strings"

	"krosmoz-scrapper/core/utils"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// Registry is an immutable set of aliases keyed by normalized alias.
type Registry struct {
	entries map[string]CollectAlias
}

// NewRegistry builds a registry from entries, normalizing keys and dropping
// entries without source or entity.
func NewRegistry(entries map[string]CollectAlias) Registry {
	r := Registry{entries: make(map[string]CollectAlias, len(entries))}
	for key, entry := range entries {
		key = utils.NormalizeKey(key)
		entry.Source = strings.TrimSpace(entry.Source)
		entry.Entity = strings.TrimSpace(entry.Entity)
		if key == "" || entry.Source == "" || entry.Entity == "" {
			continue
		}
		entry.Alias = key
		r.entries[key] = entry
	}
	return r
}

type document struct {
	Aliases json.RawMessage `json:"aliases"`
}

// Parse decodes a registry document of the form {"aliases": {...}}.
// Malformed JSON, a missing or non-object "aliases" value, and individual
// malformed entries all degrade to fewer (possibly zero) aliases.
func Parse(data []byte) Registry {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Aliases) == 0 {
		return NewRegistry(nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc.Aliases, &raw); err != nil {
		return NewRegistry(nil)
	}

	entries := make(map[string]CollectAlias, len(raw))
	for key, value := range raw {
		var entry CollectAlias
		if err := json.Unmarshal(value, &entry); err != nil {
			continue
		}
		entries[key] = entry
	}
	return NewRegistry(entries)
}

// Lookup returns the alias registered under the normalized name.
func (r Registry) Lookup(name string) (CollectAlias, bool) {
	entry, ok := r.entries[utils.NormalizeKey(name)]
	return entry, ok
}

// Keys returns the alias keys in lexicographic order.
func (r Registry) Keys() []string {
	keys := lo.Keys(r.entries)
	sort.Strings(keys)
	return keys
}

// Len returns the number of resolvable aliases.
func (r Registry) Len() int {
	return len(r.entries)
}
