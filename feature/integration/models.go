package integration

import "time"

// Base is shared by every entity imported from DofusDB.
// Checksum hashes the converted content so unchanged records are skipped.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	DofusdbID int       `gorm:"not null;uniqueIndex" json:"-"`
	Checksum  string    `gorm:"size:16;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (b *Base) base() *Base { return b }

// Creature holds the characteristics shared by every fighting entity.
type Creature struct {
	Base
	Name         string `gorm:"size:255;not null" json:"name"`
	Level        int    `json:"level"`
	Life         int    `json:"life"`
	Strength     int    `json:"strength"`
	Intelligence int    `json:"intelligence"`
	Chance       int    `json:"chance"`
	Agility      int    `json:"agility"`
	Wisdom       int    `json:"wisdom"`
}

func (Creature) TableName() string { return "creatures" }

// Monster is the monster specific part of a creature.
type Monster struct {
	Base
	CreatureID uint `gorm:"index" json:"-"`
	Race       int  `json:"race"`
	IsBoss     bool `json:"is_boss"`
	Grades     int  `json:"grades"`
}

func (Monster) TableName() string { return "monsters" }

type Spell struct {
	Base
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Levels      int    `json:"levels"`
}

func (Spell) TableName() string { return "spells" }

// Class is a playable breed.
type Class struct {
	Base
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Class) TableName() string { return "classes" }

// Item covers resources, consumables and equipment.
type Item struct {
	Base
	Name           string `gorm:"size:255;not null" json:"name"`
	Category       string `gorm:"size:32;index" json:"category"`
	ExternalTypeID int    `gorm:"index" json:"type_id"`
	Level          int    `json:"level"`
	Price          int    `json:"price"`
}

func (Item) TableName() string { return "items" }

type Panoply struct {
	Base
	Name    string `gorm:"size:255;not null" json:"name"`
	ItemIDs string `gorm:"type:text" json:"item_ids"`
}

func (Panoply) TableName() string { return "panoplies" }

// ItemType maps a DofusDB item type to a local category. Only allowed types are integrated.
type ItemType struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ExternalTypeID int       `gorm:"not null;uniqueIndex" json:"type_id"`
	Name           string    `gorm:"size:128" json:"name"`
	Category       string    `gorm:"size:32;not null" json:"category"`
	Allowed        bool      `gorm:"not null;default:false" json:"allowed"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (ItemType) TableName() string { return "item_types" }

// PendingResourceTypeItem records an item whose type is not mapped yet.
// Curation removes rows; the pipeline only adds them.
type PendingResourceTypeItem struct {
	ID                     uint      `gorm:"primaryKey" json:"-"`
	ExternalTypeID         int       `gorm:"not null;uniqueIndex:idx_pending_item" json:"external_type_id"`
	ExternalItemID         int       `gorm:"not null;uniqueIndex:idx_pending_item" json:"external_item_id"`
	Context                string    `gorm:"size:32;not null;uniqueIndex:idx_pending_item" json:"context"`
	SourceEntityType       string    `gorm:"size:32;not null;uniqueIndex:idx_pending_item" json:"source_entity_type"`
	SourceEntityExternalID int       `gorm:"not null;uniqueIndex:idx_pending_item" json:"source_entity_external_id"`
	Quantity               int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt              time.Time `json:"-"`
	UpdatedAt              time.Time `json:"-"`
}

func (PendingResourceTypeItem) TableName() string { return "pending_resource_type_items" }

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{
		&Creature{},
		&Monster{},
		&Spell{},
		&Class{},
		&Item{},
		&Panoply{},
		&ItemType{},
		&PendingResourceTypeItem{},
	}
}
