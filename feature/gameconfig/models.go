package gameconfig

import "time"

// CharacteristicLimit bounds one characteristic for one entity type.
type CharacteristicLimit struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Field     string    `gorm:"size:64;not null;uniqueIndex:idx_characteristic_limit" json:"field"`
	Entity    string    `gorm:"size:32;not null;uniqueIndex:idx_characteristic_limit" json:"entity"`
	Min       *float64  `gorm:"column:min_value" json:"min,omitempty"`
	Max       *float64  `gorm:"column:max_value" json:"max,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (CharacteristicLimit) TableName() string { return "characteristic_limits" }

// ConversionFormula is a named expression mapping an external value to the internal scale.
type ConversionFormula struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Key         string    `gorm:"column:formula_key;size:128;not null;uniqueIndex" json:"key"`
	Expression  string    `gorm:"type:text;not null" json:"expression"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (ConversionFormula) TableName() string { return "conversion_formulas" }

// EquipmentSlot is an equipment position (hat, cloak, ring...).
type EquipmentSlot struct {
	ID              string                        `gorm:"primaryKey;size:64" json:"id"`
	Name            string                        `gorm:"size:128;not null" json:"name"`
	Characteristics []EquipmentSlotCharacteristic `gorm:"foreignKey:SlotID;references:ID" json:"characteristics,omitempty"`
	CreatedAt       time.Time                     `json:"-"`
	UpdatedAt       time.Time                     `json:"-"`
}

func (EquipmentSlot) TableName() string { return "equipment_slots" }

// EquipmentSlotCharacteristic caps one characteristic on one slot.
type EquipmentSlotCharacteristic struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	SlotID            string    `gorm:"size:64;not null;uniqueIndex:idx_slot_characteristic" json:"slot_id"`
	CharacteristicKey string    `gorm:"size:64;not null;uniqueIndex:idx_slot_characteristic" json:"characteristic"`
	BracketMax        float64   `gorm:"not null;default:0" json:"bracket_max"`
	ForgemagieMax     float64   `gorm:"not null;default:0" json:"forgemagie_max"`
	BasePricePerUnit  *float64  `json:"base_price_per_unit,omitempty"`
	RunePricePerUnit  *float64  `json:"rune_price_per_unit,omitempty"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

func (EquipmentSlotCharacteristic) TableName() string { return "equipment_slot_characteristics" }

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{
		&CharacteristicLimit{},
		&ConversionFormula{},
		&EquipmentSlot{},
		&EquipmentSlotCharacteristic{},
	}
}
