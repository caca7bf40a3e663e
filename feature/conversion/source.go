package conversion

import (
	"context"

	"krosmoz-scrapper/feature/gameconfig"
)

// Source is the read side of the configuration tables.
// *gameconfig.Store satisfies it.
type Source interface {
	ListLimits(ctx context.Context) ([]gameconfig.CharacteristicLimit, error)
	GetFormula(ctx context.Context, key string) (*gameconfig.ConversionFormula, error)
	ListSlots(ctx context.Context) ([]gameconfig.EquipmentSlot, error)
}

// Wire subscribes each service's Invalidate to the domain it owns.
func Wire(store *gameconfig.Store, c *Characteristics, f *Formulas, e *Equipment) {
	store.Subscribe(gameconfig.DomainCharacteristics, c.Invalidate)
	store.Subscribe(gameconfig.DomainFormulas, f.Invalidate)
	store.Subscribe(gameconfig.DomainEquipment, e.Invalidate)
}
