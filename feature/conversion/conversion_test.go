package conversion

import (
	"context"
	"sync/atomic"
	"testing"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/feature/gameconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// countingSource counts reads that reach the database.
type countingSource struct {
	*gameconfig.Store
	limits, formulas, slots atomic.Int32
}

func (c *countingSource) ListLimits(ctx context.Context) ([]gameconfig.CharacteristicLimit, error) {
	c.limits.Add(1)
	return c.Store.ListLimits(ctx)
}

func (c *countingSource) GetFormula(ctx context.Context, key string) (*gameconfig.ConversionFormula, error) {
	c.formulas.Add(1)
	return c.Store.GetFormula(ctx, key)
}

func (c *countingSource) ListSlots(ctx context.Context) ([]gameconfig.EquipmentSlot, error) {
	c.slots.Add(1)
	return c.Store.ListSlots(ctx)
}

type fixture struct {
	store    *gameconfig.Store
	source   *countingSource
	limits   *Characteristics
	formulas *Formulas
	slots    *Equipment
}

func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gameconfig.Migrate(db))

	store := gameconfig.NewStore(db, zap.NewNop())
	source := &countingSource{Store: store}
	cs := cache.NewStore(cache.NewMemory(), "test:", zap.NewNop())

	f := &fixture{
		store:    store,
		source:   source,
		limits:   NewCharacteristics(source, cs),
		formulas: NewFormulas(source, cs),
		slots:    NewEquipment(source, cs),
	}
	Wire(store, f.limits, f.formulas, f.slots)
	return f
}

func ptr(f float64) *float64 { return &f }

func TestLimitsByField_NilWhenUnconfigured(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	l, err := f.limits.LimitsByField(ctx, "level", "monster")
	require.NoError(t, err)
	assert.Nil(t, l)

	require.NoError(t, f.store.SaveLimit(ctx, gameconfig.CharacteristicLimit{Field: "level", Entity: "monster", Min: ptr(0), Max: ptr(0)}))
	l, err = f.limits.LimitsByField(ctx, "Level", "Monster")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 0.0, *l.Min)
	assert.Equal(t, 0.0, *l.Max)
}

func TestLimits_Clamp(t *testing.T) {
	l := &Limits{Min: ptr(1), Max: ptr(200)}
	assert.Equal(t, 1.0, l.Clamp(-5))
	assert.Equal(t, 200.0, l.Clamp(999))
	assert.Equal(t, 42.0, l.Clamp(42))

	var none *Limits
	assert.Equal(t, 999.0, none.Clamp(999))
	assert.Equal(t, 7.0, (&Limits{Max: ptr(7)}).Clamp(8))
}

func TestConvert(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "monster.life", Expression: "floor(value / 10) + level"}))
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "const", Expression: "5"}))
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "bool", Expression: "value > 1"}))
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "bounded", Expression: "clamp(value * 2, 0, maxOf(10, cap))"}))

	out, err := f.formulas.Convert(ctx, 1234, "monster.life", Context{"level": 3})
	require.NoError(t, err)
	assert.Equal(t, 126.0, out)

	out, err = f.formulas.Convert(ctx, 1, "const", nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, out)

	out, err = f.formulas.Convert(ctx, 100, "bounded", Context{"cap": 50})
	require.NoError(t, err)
	assert.Equal(t, 50.0, out)

	_, err = f.formulas.Convert(ctx, 2, "bool", nil)
	assert.ErrorIs(t, err, ErrFormulaResult)
}

func TestConvert_UnknownFormulaNeverPassesThrough(t *testing.T) {
	f := setup(t)
	out, err := f.formulas.Convert(context.Background(), 77, "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownFormula)
	assert.Zero(t, out)
}

func TestCompile_RejectsSyntaxErrors(t *testing.T) {
	_, err := Compile("value +* 2")
	assert.ErrorIs(t, err, ErrInvalidFormula)

	p, err := Compile("round(value / 3)")
	require.NoError(t, err)
	out, err := Eval(p, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, out)
}

func TestFormulas_RebuildAfterWrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "k", Expression: "value * 2"}))

	for i := 0; i < 3; i++ {
		out, err := f.formulas.Convert(ctx, 5, "k", nil)
		require.NoError(t, err)
		assert.Equal(t, 10.0, out)
	}
	assert.Equal(t, int32(1), f.source.formulas.Load())

	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "k", Expression: "value * 3"}))
	out, err := f.formulas.Convert(ctx, 5, "k", nil)
	require.NoError(t, err)
	assert.Equal(t, 15.0, out)
	assert.Equal(t, int32(2), f.source.formulas.Load())

	require.NoError(t, f.store.DeleteFormula(ctx, "k"))
	_, err = f.formulas.Convert(ctx, 5, "k", nil)
	assert.ErrorIs(t, err, ErrUnknownFormula)
}

func TestFormulas_PaddedKeySharesInvalidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "k", Expression: "value * 2"}))

	out, err := f.formulas.Convert(ctx, 5, " k ", nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, out)

	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: " k", Expression: "value * 3"}))
	out, err = f.formulas.Convert(ctx, 5, " k ", nil)
	require.NoError(t, err)
	assert.Equal(t, 15.0, out)

	require.NoError(t, f.store.DeleteFormula(ctx, "k "))
	_, err = f.formulas.Convert(ctx, 5, " k ", nil)
	assert.ErrorIs(t, err, ErrUnknownFormula)
}

func TestInvalidation_IsDomainScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "k", Expression: "value"}))

	// Warm all three caches.
	_, err := f.limits.LimitsByField(ctx, "level", "monster")
	require.NoError(t, err)
	_, err = f.formulas.Convert(ctx, 1, "k", nil)
	require.NoError(t, err)
	_, err = f.slots.Slots(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.SaveSlot(ctx, gameconfig.EquipmentSlot{ID: "hat", Name: "Chapeau"}))

	_, err = f.limits.LimitsByField(ctx, "level", "monster")
	require.NoError(t, err)
	_, err = f.formulas.Convert(ctx, 1, "k", nil)
	require.NoError(t, err)
	slot, err := f.slots.Slot(ctx, "hat")
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, int32(1), f.source.limits.Load())
	assert.Equal(t, int32(1), f.source.formulas.Load())
	assert.Equal(t, int32(2), f.source.slots.Load())

	require.NoError(t, f.store.SaveLimit(ctx, gameconfig.CharacteristicLimit{Field: "level", Entity: "monster", Max: ptr(200)}))
	l, err := f.limits.LimitsByField(ctx, "level", "monster")
	require.NoError(t, err)
	require.NotNil(t, l)
	_, err = f.slots.Slots(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.source.limits.Load())
	assert.Equal(t, int32(2), f.source.slots.Load())
}

func TestEquipment_SlotMap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveSlot(ctx, gameconfig.EquipmentSlot{ID: "ring", Name: "Anneau"}))
	require.NoError(t, f.store.SaveSlotCharacteristic(ctx, gameconfig.EquipmentSlotCharacteristic{
		SlotID: "ring", CharacteristicKey: "wisdom", BracketMax: 40, ForgemagieMax: 10, BasePricePerUnit: ptr(12),
	}))

	slot, err := f.slots.Slot(ctx, " Ring ")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "Anneau", slot.Name)
	c := slot.Characteristics["wisdom"]
	assert.Equal(t, 40.0, c.BracketMax)
	assert.Equal(t, 10.0, c.ForgemagieMax)
	require.NotNil(t, c.BasePricePerUnit)
	assert.Equal(t, 12.0, *c.BasePricePerUnit)
	assert.Nil(t, c.RunePricePerUnit)

	missing, err := f.slots.Slot(ctx, "amulet")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
