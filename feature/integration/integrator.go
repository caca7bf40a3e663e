package integration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"krosmoz-scrapper/core/utils"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/conversion"
	"krosmoz-scrapper/feature/limits"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ContextItem = "item"
	ContextDrop = "drop"
)

// ErrUnsupportedEntity indicates an entity type the integrator cannot store.
var ErrUnsupportedEntity = errors.New("unsupported entity type")

// Converter applies named conversion formulas.
type Converter interface {
	Convert(ctx context.Context, value float64, key string, vars conversion.Context) (float64, error)
}

// LimitSource provides characteristic limits.
type LimitSource interface {
	LimitsByField(ctx context.Context, field, entity string) (*conversion.Limits, error)
}

// Integrator converts raw DofusDB records and stores them as local entities.
type Integrator struct {
	db       *gorm.DB
	formulas Converter
	limits   LimitSource
	lang     string
	logger   *zap.Logger
}

// New creates an integrator. lang selects the translation read from
// multilingual fields and defaults to "fr".
func New(db *gorm.DB, formulas Converter, limits LimitSource, lang string, logger *zap.Logger) *Integrator {
	if lang == "" {
		lang = "fr"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Integrator{db: db, formulas: formulas, limits: limits, lang: lang, logger: logger}
}

// Migrate creates or updates the integration tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Integrate converts rec and upserts it by DofusDB id.
func (i *Integrator) Integrate(ctx context.Context, entity string, rec collect.Record) Result {
	return i.run(ctx, entity, rec, true)
}

// Preview converts rec and reports what Integrate would do without writing.
func (i *Integrator) Preview(ctx context.Context, entity string, rec collect.Record) Result {
	return i.run(ctx, entity, rec, false)
}

type model interface {
	base() *Base
}

// plan is a converted record ready to be stored.
type plan struct {
	creature *Creature
	monster  *Monster
	entity   model
	pending  []PendingResourceTypeItem
	message  string
}

func (i *Integrator) run(ctx context.Context, entity string, rec collect.Record, commit bool) Result {
	entity = utils.NormalizeKey(entity)
	data := map[string]any{"entity": entity}
	if !rec.Valid() || rec.ID() <= 0 {
		return Fail("record has no external id", data)
	}
	data["dofusdb_id"] = rec.ID()
	if !commit {
		data["dry_run"] = true
	}

	// Conversion reads configuration through its own connections, so it runs
	// before the write transaction is opened.
	p, err := i.build(ctx, entity, rec)
	if err != nil {
		return FailErr(err, data)
	}
	if len(p.pending) > 0 {
		data["pending"] = len(p.pending)
	}

	var res Result
	write := func(tx *gorm.DB) error {
		if err := savePending(tx, p.pending, commit); err != nil {
			return err
		}
		var err error
		res, err = persist(tx, p, commit, data)
		return err
	}
	if commit {
		err = i.db.WithContext(ctx).Transaction(write)
	} else {
		err = write(i.db.WithContext(ctx))
	}
	if err != nil {
		i.logger.Error("Failed to store record", zap.String("entity", entity), zap.Int("dofusdb_id", rec.ID()), zap.Error(err))
		return FailErr(err, data)
	}
	return res
}

func (i *Integrator) build(ctx context.Context, entity string, rec collect.Record) (*plan, error) {
	switch entity {
	case limits.EntityMonster:
		return i.buildMonster(ctx, rec)
	case limits.EntitySpell:
		return i.buildSpell(rec), nil
	case limits.EntityClass:
		return i.buildClass(rec), nil
	case limits.EntityItem, limits.EntityResource, limits.EntityConsumable, limits.EntityEquipment:
		return i.buildItem(ctx, entity, rec)
	case limits.EntityPanoply:
		return i.buildPanoply(rec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entity)
	}
}

func (i *Integrator) convert(ctx context.Context, formulaEntity, limitEntity string, f Field, src gjson.Result, vars conversion.Context) (int, error) {
	raw := src.Get(f.Path)
	if !raw.Exists() {
		return 0, nil
	}
	v, err := i.formulas.Convert(ctx, raw.Float(), f.Formula(formulaEntity), vars)
	if err != nil {
		return 0, err
	}
	l, err := i.limits.LimitsByField(ctx, f.Name, limitEntity)
	if err != nil {
		return 0, err
	}
	return int(math.Round(l.Clamp(v))), nil
}

func (i *Integrator) buildMonster(ctx context.Context, rec collect.Record) (*plan, error) {
	id := rec.ID()
	grade := rec.Get("grades.0")
	if !grade.Exists() {
		grade = gjson.ParseBytes(rec)
	}
	vars := conversion.Context{"level": grade.Get("level").Float()}

	c := &Creature{Base: Base{DofusdbID: id}, Name: text(rec, "name", i.lang)}
	targets := []*int{&c.Level, &c.Life, &c.Strength, &c.Intelligence, &c.Chance, &c.Agility, &c.Wisdom}
	for n, f := range monsterFields {
		v, err := i.convert(ctx, limits.EntityMonster, limits.EntityMonster, f, grade, vars)
		if err != nil {
			return nil, err
		}
		*targets[n] = v
	}

	m := &Monster{
		Base:   Base{DofusdbID: id},
		Race:   int(rec.Get("race").Int()),
		IsBoss: rec.Get("isBoss").Bool(),
		Grades: len(rec.Get("grades").Array()),
	}

	pending, err := i.unmappedDrops(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &plan{creature: c, monster: m, pending: pending}, nil
}

type drop struct {
	item, typeID, quantity int
}

func (i *Integrator) unmappedDrops(ctx context.Context, rec collect.Record) ([]PendingResourceTypeItem, error) {
	var drops []drop
	rec.Get("drops").ForEach(func(_, d gjson.Result) bool {
		typeID := d.Get("typeId")
		if !typeID.Exists() {
			typeID = d.Get("item.typeId")
		}
		if !typeID.Exists() {
			return true
		}
		q := int(d.Get("count").Int())
		if q <= 0 {
			q = 1
		}
		drops = append(drops, drop{item: int(d.Get("objectId").Int()), typeID: int(typeID.Int()), quantity: q})
		return true
	})
	if len(drops) == 0 {
		return nil, nil
	}

	allowed, err := i.allowedTypes(ctx, lo.Uniq(lo.Map(drops, func(d drop, _ int) int { return d.typeID })))
	if err != nil {
		return nil, err
	}

	var out []PendingResourceTypeItem
	for _, d := range drops {
		if _, ok := allowed[d.typeID]; ok {
			continue
		}
		out = append(out, PendingResourceTypeItem{
			ExternalTypeID:         d.typeID,
			ExternalItemID:         d.item,
			Context:                ContextDrop,
			SourceEntityType:       limits.EntityMonster,
			SourceEntityExternalID: rec.ID(),
			Quantity:               d.quantity,
		})
	}
	return lo.UniqBy(out, func(p PendingResourceTypeItem) string {
		return fmt.Sprintf("%d|%d", p.ExternalTypeID, p.ExternalItemID)
	}), nil
}

// allowedTypes returns the allowed item types among typeIDs, keyed by external id.
func (i *Integrator) allowedTypes(ctx context.Context, typeIDs []int) (map[int]ItemType, error) {
	var rows []ItemType
	err := i.db.WithContext(ctx).
		Where("external_type_id IN ? AND allowed = ?", typeIDs, true).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load item types: %w", err)
	}
	return lo.KeyBy(rows, func(t ItemType) int { return t.ExternalTypeID }), nil
}

func (i *Integrator) buildSpell(rec collect.Record) *plan {
	return &plan{entity: &Spell{
		Base:        Base{DofusdbID: rec.ID()},
		Name:        text(rec, "name", i.lang),
		Description: text(rec, "description", i.lang),
		Levels:      len(rec.Get("spellLevels").Array()),
	}}
}

func (i *Integrator) buildClass(rec collect.Record) *plan {
	name := text(rec, "shortName", i.lang)
	if name == "" {
		name = text(rec, "name", i.lang)
	}
	return &plan{entity: &Class{
		Base:        Base{DofusdbID: rec.ID()},
		Name:        name,
		Description: text(rec, "description", i.lang),
	}}
}

func (i *Integrator) buildItem(ctx context.Context, entity string, rec collect.Record) (*plan, error) {
	typeID := int(rec.Get("typeId").Int())
	allowed, err := i.allowedTypes(ctx, []int{typeID})
	if err != nil {
		return nil, err
	}
	t, ok := allowed[typeID]
	if !ok {
		return &plan{
			pending: []PendingResourceTypeItem{{
				ExternalTypeID:         typeID,
				ExternalItemID:         rec.ID(),
				Context:                ContextItem,
				SourceEntityType:       entity,
				SourceEntityExternalID: rec.ID(),
				Quantity:               1,
			}},
			message: fmt.Sprintf("item type %d is not mapped", typeID),
		}, nil
	}

	src := gjson.ParseBytes(rec)
	vars := conversion.Context{"level": src.Get("level").Float()}
	item := &Item{
		Base:           Base{DofusdbID: rec.ID()},
		Name:           text(rec, "name", i.lang),
		Category:       t.Category,
		ExternalTypeID: typeID,
	}
	targets := []*int{&item.Level, &item.Price}
	for n, f := range itemFields {
		v, err := i.convert(ctx, limits.EntityItem, entity, f, src, vars)
		if err != nil {
			return nil, err
		}
		*targets[n] = v
	}
	return &plan{entity: item}, nil
}

func (i *Integrator) buildPanoply(rec collect.Record) (*plan, error) {
	raw, err := json.Marshal(lo.Uniq(ids(rec.Get("items"))))
	if err != nil {
		return nil, err
	}
	return &plan{entity: &Panoply{
		Base:    Base{DofusdbID: rec.ID()},
		Name:    text(rec, "name", i.lang),
		ItemIDs: string(raw),
	}}, nil
}

func persist(tx *gorm.DB, p *plan, commit bool, data map[string]any) (Result, error) {
	entity, _ := data["entity"].(string)
	id, _ := data["dofusdb_id"].(int)

	switch {
	case p.creature != nil:
		ca, err := upsert(tx, p.creature, commit)
		if err != nil {
			return Result{}, err
		}
		p.monster.CreatureID = p.creature.ID
		ma, err := upsert(tx, p.monster, commit)
		if err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("monster %d: creature %s, monster %s", id, ca, ma)
		return Ok(storedID(p.creature), storedID(p.monster), ca, ma, msg, data), nil
	case p.entity != nil:
		a, err := upsert(tx, p.entity, commit)
		if err != nil {
			return Result{}, err
		}
		var stored any
		if sid := storedID(p.entity); sid != nil {
			stored = *sid
		}
		return OkEntity(stored, a, fmt.Sprintf("%s %d %s", entity, id, a), data), nil
	default:
		return OkEntity(nil, ActionSkipped, p.message, data), nil
	}
}

func storedID(m model) *int {
	if m.base().ID == 0 {
		return nil
	}
	id := int(m.base().ID)
	return &id
}

type storedRow struct {
	ID        uint
	Checksum  string
	CreatedAt time.Time
}

// upsert stores m by DofusDB id. Rows whose content checksum did not change are skipped.
func upsert(tx *gorm.DB, m model, commit bool) (Action, error) {
	b := m.base()
	sum, err := checksum(m)
	if err != nil {
		return "", err
	}
	b.Checksum = sum

	var existing storedRow
	err = tx.Model(m).Select("id", "checksum", "created_at").Where("dofusdb_id = ?", b.DofusdbID).Take(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if commit {
			if err := tx.Create(m).Error; err != nil {
				return "", err
			}
		}
		return ActionCreated, nil
	case err != nil:
		return "", err
	}

	b.ID = existing.ID
	if existing.Checksum == sum {
		return ActionSkipped, nil
	}
	b.CreatedAt = existing.CreatedAt
	if commit {
		if err := tx.Save(m).Error; err != nil {
			return "", err
		}
	}
	return ActionUpdated, nil
}

func checksum(m model) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to hash record: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(raw)), nil
}

func savePending(tx *gorm.DB, rows []PendingResourceTypeItem, commit bool) error {
	if !commit || len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "external_type_id"},
			{Name: "external_item_id"},
			{Name: "context"},
			{Name: "source_entity_type"},
			{Name: "source_entity_external_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&rows).Error
}
