package gameconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"krosmoz-scrapper/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound indicates the requested configuration row does not exist.
	ErrNotFound = errors.New("configuration row not found")
	// ErrInvalidLimit indicates a limit with min greater than max.
	ErrInvalidLimit = errors.New("characteristic limit min is greater than max")
	// ErrInvalidKey indicates an empty identifier.
	ErrInvalidKey = errors.New("configuration key is empty")
	// ErrInvalidation indicates the write committed but a cache hook failed.
	ErrInvalidation = errors.New("cache invalidation failed")
)

// Domain is an independent cache domain fed by a set of tables.
type Domain string

const (
	DomainCharacteristics Domain = "characteristics"
	DomainFormulas        Domain = "formulas"
	DomainEquipment       Domain = "equipment"
)

// Hook is called after a committed write to a domain. key is the written row's
// identifier (formula key, "entity|field", slot id).
type Hook func(ctx context.Context, key string) error

// Store reads and writes the configuration tables and runs the domain hooks
// after every committed write.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.RWMutex
	hooks map[Domain][]Hook
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, hooks: make(map[Domain][]Hook)}
}

// Migrate creates or updates the configuration tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Subscribe registers hook for writes to domain.
func (s *Store) Subscribe(domain Domain, hook Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[domain] = append(s.hooks[domain], hook)
}

func (s *Store) write(ctx context.Context, domain Domain, key string, fn func(tx *gorm.DB) error) error {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	return s.notify(ctx, domain, key)
}

func (s *Store) notify(ctx context.Context, domain Domain, key string) error {
	s.mu.RLock()
	hooks := append([]Hook(nil), s.hooks[domain]...)
	s.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Error("Cache invalidation failed after write",
			zap.String("domain", string(domain)), zap.String("key", key), zap.Errors("errors", errs))
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidation, domain, key, errors.Join(errs...))
	}
	return nil
}

// LimitKey is the hook key of a characteristic limit.
func LimitKey(entity, field string) string {
	return utils.NormalizeKey(entity) + "|" + utils.NormalizeKey(field)
}

// ListLimits returns every characteristic limit.
func (s *Store) ListLimits(ctx context.Context) ([]CharacteristicLimit, error) {
	var rows []CharacteristicLimit
	if err := s.db.WithContext(ctx).Order("entity, field").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list characteristic limits: %w", err)
	}
	return rows, nil
}

// SaveLimit creates or replaces the limit of (limit.Field, limit.Entity).
func (s *Store) SaveLimit(ctx context.Context, limit CharacteristicLimit) error {
	limit.Field = utils.NormalizeKey(limit.Field)
	limit.Entity = utils.NormalizeKey(limit.Entity)
	if limit.Field == "" || limit.Entity == "" {
		return ErrInvalidKey
	}
	if limit.Min != nil && limit.Max != nil && *limit.Min > *limit.Max {
		return fmt.Errorf("%w: %s/%s min=%v max=%v", ErrInvalidLimit, limit.Entity, limit.Field, *limit.Min, *limit.Max)
	}

	return s.write(ctx, DomainCharacteristics, LimitKey(limit.Entity, limit.Field), func(tx *gorm.DB) error {
		limit.ID = 0
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field"}, {Name: "entity"}},
			DoUpdates: clause.Assignments(map[string]any{"min_value": limit.Min, "max_value": limit.Max, "updated_at": time.Now()}),
		}).Create(&limit).Error
	})
}

// DeleteLimit removes the limit of (field, entity).
func (s *Store) DeleteLimit(ctx context.Context, entity, field string) error {
	entity, field = utils.NormalizeKey(entity), utils.NormalizeKey(field)
	return s.write(ctx, DomainCharacteristics, LimitKey(entity, field), func(tx *gorm.DB) error {
		res := tx.Where("entity = ? AND field = ?", entity, field).Delete(&CharacteristicLimit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetFormula returns the formula registered under key.
// FormulaKey is the stored form of a formula key, also passed to formula hooks.
func FormulaKey(key string) string {
	return strings.TrimSpace(key)
}

func (s *Store) GetFormula(ctx context.Context, key string) (*ConversionFormula, error) {
	var row ConversionFormula
	err := s.db.WithContext(ctx).Where("formula_key = ?", FormulaKey(key)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load formula %s: %w", key, err)
	}
	return &row, nil
}

// ListFormulas returns every formula ordered by key.
func (s *Store) ListFormulas(ctx context.Context) ([]ConversionFormula, error) {
	var rows []ConversionFormula
	if err := s.db.WithContext(ctx).Order("formula_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list formulas: %w", err)
	}
	return rows, nil
}

// SaveFormula creates or replaces the formula f.Key.
func (s *Store) SaveFormula(ctx context.Context, f ConversionFormula) error {
	f.Key = FormulaKey(f.Key)
	if f.Key == "" {
		return ErrInvalidKey
	}

	return s.write(ctx, DomainFormulas, f.Key, func(tx *gorm.DB) error {
		f.ID = 0
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "formula_key"}},
			DoUpdates: clause.Assignments(map[string]any{"expression": f.Expression, "description": f.Description, "updated_at": time.Now()}),
		}).Create(&f).Error
	})
}

// DeleteFormula removes the formula key.
func (s *Store) DeleteFormula(ctx context.Context, key string) error {
	key = FormulaKey(key)
	return s.write(ctx, DomainFormulas, key, func(tx *gorm.DB) error {
		res := tx.Where("formula_key = ?", key).Delete(&ConversionFormula{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListSlots returns every slot with its characteristics.
func (s *Store) ListSlots(ctx context.Context) ([]EquipmentSlot, error) {
	var rows []EquipmentSlot
	err := s.db.WithContext(ctx).
		Preload("Characteristics", func(db *gorm.DB) *gorm.DB { return db.Order("characteristic_key") }).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment slots: %w", err)
	}
	return rows, nil
}

// SaveSlot creates or renames a slot. Characteristics on slot are ignored.
func (s *Store) SaveSlot(ctx context.Context, slot EquipmentSlot) error {
	slot.ID = utils.NormalizeKey(slot.ID)
	if slot.ID == "" {
		return ErrInvalidKey
	}
	slot.Characteristics = nil

	return s.write(ctx, DomainEquipment, slot.ID, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"name": slot.Name, "updated_at": time.Now()}),
		}).Create(&slot).Error
	})
}

// DeleteSlot removes a slot and its characteristics.
func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	id = utils.NormalizeKey(id)
	return s.write(ctx, DomainEquipment, id, func(tx *gorm.DB) error {
		if err := tx.Where("slot_id = ?", id).Delete(&EquipmentSlotCharacteristic{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&EquipmentSlot{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SaveSlotCharacteristic creates or replaces one characteristic of a slot.
func (s *Store) SaveSlotCharacteristic(ctx context.Context, c EquipmentSlotCharacteristic) error {
	c.SlotID = utils.NormalizeKey(c.SlotID)
	c.CharacteristicKey = utils.NormalizeKey(c.CharacteristicKey)
	if c.SlotID == "" || c.CharacteristicKey == "" {
		return ErrInvalidKey
	}

	return s.write(ctx, DomainEquipment, c.SlotID, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&EquipmentSlot{}).Where("id = ?", c.SlotID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: slot %s", ErrNotFound, c.SlotID)
		}

		c.ID = 0
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slot_id"}, {Name: "characteristic_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"bracket_max":         c.BracketMax,
				"forgemagie_max":      c.ForgemagieMax,
				"base_price_per_unit": c.BasePricePerUnit,
				"rune_price_per_unit": c.RunePricePerUnit,
				"updated_at":          time.Now(),
			}),
		}).Create(&c).Error
	})
}

// DeleteSlotCharacteristic removes one characteristic from a slot.
func (s *Store) DeleteSlotCharacteristic(ctx context.Context, slotID, characteristic string) error {
	slotID, characteristic = utils.NormalizeKey(slotID), utils.NormalizeKey(characteristic)
	return s.write(ctx, DomainEquipment, slotID, func(tx *gorm.DB) error {
		res := tx.Where("slot_id = ? AND characteristic_key = ?", slotID, characteristic).Delete(&EquipmentSlotCharacteristic{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
