package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToIntOK(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(7), 7, true},
		{"whole float", float64(12), 12, true},
		{"fractional float", 1.5, 0, false},
		{"numeric string", " 42 ", 42, true},
		{"float string", "3.0", 3, true},
		{"word", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToIntOK(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "monster", NormalizeKey("  Monster "))
}
