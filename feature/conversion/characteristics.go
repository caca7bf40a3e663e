package conversion

import (
	"context"
	"fmt"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/feature/gameconfig"
)

const limitsCacheKey = "characteristic_limits"

// Limits are the optional bounds of one characteristic.
type Limits struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Clamp bounds v to the configured limits.
func (l *Limits) Clamp(v float64) float64 {
	if l == nil {
		return v
	}
	if l.Min != nil && v < *l.Min {
		v = *l.Min
	}
	if l.Max != nil && v > *l.Max {
		v = *l.Max
	}
	return v
}

// Characteristics serves characteristic limits from the cache.
type Characteristics struct {
	source Source
	cache  *cache.Store
}

func NewCharacteristics(source Source, store *cache.Store) *Characteristics {
	return &Characteristics{source: source, cache: store}
}

// LimitsByField returns the limits of (field, entity), or nil when none are configured.
func (c *Characteristics) LimitsByField(ctx context.Context, field, entity string) (*Limits, error) {
	table, err := cache.Remember(ctx, c.cache, limitsCacheKey, 0, c.load)
	if err != nil {
		return nil, err
	}
	l, ok := table[gameconfig.LimitKey(entity, field)]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (c *Characteristics) load(ctx context.Context) (map[string]Limits, error) {
	rows, err := c.source.ListLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load characteristic limits: %w", err)
	}
	table := make(map[string]Limits, len(rows))
	for _, r := range rows {
		table[gameconfig.LimitKey(r.Entity, r.Field)] = Limits{Min: r.Min, Max: r.Max}
	}
	return table, nil
}

// Invalidate drops the cached limit table.
func (c *Characteristics) Invalidate(ctx context.Context, _ string) error {
	return c.cache.Forget(ctx, limitsCacheKey)
}
