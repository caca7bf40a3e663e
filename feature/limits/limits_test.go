package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapFor(t *testing.T) {
	p := Default()

	tests := []struct {
		name     string
		entity   string
		fallback int
		want     int
	}{
		{"Configured ignores fallback", "monster", 1, 5000},
		{"Other fallback same result", "monster", 999999, 5000},
		{"Case and whitespace", "  SPELL ", 3, 20000},
		{"Unknown uses fallback", "dungeon", 42, 42},
		{"Empty uses fallback", "", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CapFor(tt.entity, tt.fallback))
		})
	}
}

func TestDefaultKeys(t *testing.T) {
	assert.Equal(t, []string{
		EntityClass, EntityConsumable, EntityEquipment, EntityItem,
		EntityMonster, EntityPanoply, EntityResource, EntitySpell,
	}, Default().Keys())
}

func TestNew_DropsInvalid(t *testing.T) {
	p := New(map[string]int{"Monster": 10, "spell": 0, "item": -1, " ": 5})

	assert.Equal(t, []string{"monster"}, p.Keys())
	assert.Equal(t, 10, p.CapFor(" MONSTER", 1))
	assert.Equal(t, 7, p.CapFor("spell", 7))
	assert.Equal(t, 10, p.CapFor("monster", 1))
	assert.Equal(t, 3, p.CapFor("item", 3))
}

func TestNew_CopiesInput(t *testing.T) {
	caps := map[string]int{"monster": 10}
	p := New(caps)
	caps["monster"] = 99

	assert.Equal(t, 10, p.CapFor("monster", 0))
}
