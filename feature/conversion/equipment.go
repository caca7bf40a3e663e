package conversion

import (
	"context"
	"fmt"
	"time"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/core/utils"
)

const (
	slotsCacheKey = "equipment_slots"
	slotsTTL      = time.Hour
)

// SlotCharacteristic caps one characteristic on a slot.
type SlotCharacteristic struct {
	BracketMax       float64  `json:"bracket_max"`
	ForgemagieMax    float64  `json:"forgemagie_max"`
	BasePricePerUnit *float64 `json:"base_price_per_unit,omitempty"`
	RunePricePerUnit *float64 `json:"rune_price_per_unit,omitempty"`
}

// Slot is an equipment slot with its characteristic map.
type Slot struct {
	ID              string                        `json:"id"`
	Name            string                        `json:"name"`
	Characteristics map[string]SlotCharacteristic `json:"characteristics"`
}

// Equipment serves the equipment slot map from the cache.
type Equipment struct {
	source Source
	cache  *cache.Store
}

func NewEquipment(source Source, store *cache.Store) *Equipment {
	return &Equipment{source: source, cache: store}
}

// Slots returns every slot keyed by id.
func (e *Equipment) Slots(ctx context.Context) (map[string]Slot, error) {
	return cache.Remember(ctx, e.cache, slotsCacheKey, slotsTTL, e.load)
}

// Slot returns the slot id, or nil when it does not exist.
func (e *Equipment) Slot(ctx context.Context, id string) (*Slot, error) {
	slots, err := e.Slots(ctx)
	if err != nil {
		return nil, err
	}
	s, ok := slots[utils.NormalizeKey(id)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (e *Equipment) load(ctx context.Context) (map[string]Slot, error) {
	rows, err := e.source.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment slots: %w", err)
	}
	slots := make(map[string]Slot, len(rows))
	for _, r := range rows {
		s := Slot{ID: r.ID, Name: r.Name, Characteristics: make(map[string]SlotCharacteristic, len(r.Characteristics))}
		for _, c := range r.Characteristics {
			s.Characteristics[c.CharacteristicKey] = SlotCharacteristic{
				BracketMax:       c.BracketMax,
				ForgemagieMax:    c.ForgemagieMax,
				BasePricePerUnit: c.BasePricePerUnit,
				RunePricePerUnit: c.RunePricePerUnit,
			}
		}
		slots[r.ID] = s
	}
	return slots, nil
}

// Invalidate drops the cached slot map.
func (e *Equipment) Invalidate(ctx context.Context, _ string) error {
	return e.cache.Forget(ctx, slotsCacheKey)
}
