// Package utils holds small conversion helpers shared across features.
//
// ToIntOK is the strict variant used by identity accessors: it refuses
// fractional floats and non-numeric strings instead of silently returning 0.
// NormalizeKey is the single rule for alias and entity keys (trim + lowercase).
package utils
