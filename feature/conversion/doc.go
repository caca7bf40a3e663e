// Package conversion turns external DofusDB values into internal game values.
//
// Three services each own one cache domain:
//
//   - Characteristics: per (field, entity) min/max limits, the whole table
//     cached under one key.
//   - Formulas: named expr expressions, cached per key. Compiled programs are
//     memoized by expression text so an edited formula compiles once.
//   - Equipment: the slot map joined from slot and slot characteristic rows,
//     cached for one hour.
//
// Each service's Invalidate matches gameconfig.Hook; Wire subscribes them to
// the store so a committed write clears exactly its own domain.
//
// # Formulas
//
// A formula sees the converted value as `value`, any Context variables by
// name, and the helpers floor, ceil, round, clamp(x, lo, hi), minOf and maxOf:
//
//	value >= 1000 ? floor(value / 100) : round(value / 10) + level
//
// An unknown key is always ErrUnknownFormula. There is no identity fallback.
package conversion
