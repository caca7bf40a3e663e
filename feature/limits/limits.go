package limits

import (
	"sort"

	"krosmoz-scrapper/core/utils"

	"github.com/samber/lo"
)

// Entity keys with a default collection cap.
const (
	EntityClass      = "class"
	EntityMonster    = "monster"
	EntityItem       = "item"
	EntitySpell      = "spell"
	EntityPanoply    = "panoply"
	EntityResource   = "resource"
	EntityConsumable = "consumable"
	EntityEquipment  = "equipment"
)

// defaultCaps bound "collect everything" runs per entity type.
var defaultCaps = map[string]int{
	EntityClass:      100,
	EntityMonster:    5000,
	EntityItem:       20000,
	EntitySpell:      20000,
	EntityPanoply:    1000,
	EntityResource:   10000,
	EntityConsumable: 5000,
	EntityEquipment:  10000,
}

// Policy is an immutable table of per-entity collection caps.
type Policy struct {
	caps map[string]int
}

// New builds a policy from caps. Keys are normalized and non-positive caps are dropped.
func New(caps map[string]int) Policy {
	p := Policy{caps: make(map[string]int, len(caps))}
	for k, v := range caps {
		k = utils.NormalizeKey(k)
		if k == "" || v <= 0 {
			continue
		}
		p.caps[k] = v
	}
	return p
}

// Default returns the policy with the built-in caps.
func Default() Policy {
	return New(defaultCaps)
}

// CapFor returns the cap configured for entity, or fallback when none is.
func (p Policy) CapFor(entity string, fallback int) int {
	if c, ok := p.caps[utils.NormalizeKey(entity)]; ok {
		return c
	}
	return fallback
}

// Keys returns the configured entity keys in order.
func (p Policy) Keys() []string {
	keys := lo.Keys(p.caps)
	sort.Strings(keys)
	return keys
}
