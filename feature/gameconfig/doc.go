// Package gameconfig persists the configuration tables the conversion engine
// reads: characteristic limits, conversion formulas and equipment slots.
//
// # Invalidation
//
// Each table belongs to exactly one Domain. Cache-owning services Subscribe a
// Hook for their domain; every write method commits its transaction and then
// calls the hooks of that domain before returning. A rolled back write calls
// no hook, and a failing hook fails the write with ErrInvalidation so the
// caller never believes a stale cache is current.
//
//	store := gameconfig.NewStore(db, logger)
//	store.Subscribe(gameconfig.DomainFormulas, formulas.Invalidate)
//	err := store.SaveFormula(ctx, gameconfig.ConversionFormula{Key: "monster.life", Expression: "value / 10"})
package gameconfig
