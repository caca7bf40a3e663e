package integration

import (
	"strings"

	"krosmoz-scrapper/feature/collect"

	"github.com/tidwall/gjson"
)

// Field maps one characteristic of a record to its converted value.
type Field struct {
	// Name is the characteristic key used for limits and the formula key suffix.
	Name string
	// Path is the gjson path inside the record.
	Path string
}

// Formula is the formula key that converts field for entity.
func (f Field) Formula(entity string) string {
	return entity + "." + f.Name
}

var monsterFields = []Field{
	{Name: "level", Path: "level"},
	{Name: "life", Path: "lifePoints"},
	{Name: "strength", Path: "strength"},
	{Name: "intelligence", Path: "intelligence"},
	{Name: "chance", Path: "chance"},
	{Name: "agility", Path: "agility"},
	{Name: "wisdom", Path: "wisdom"},
}

var itemFields = []Field{
	{Name: "level", Path: "level"},
	{Name: "price", Path: "price"},
}

// FormulaKeys lists every formula key the integrator may request.
func FormulaKeys() []string {
	var keys []string
	for _, f := range monsterFields {
		keys = append(keys, f.Formula("monster"))
	}
	for _, f := range itemFields {
		keys = append(keys, f.Formula("item"))
	}
	return keys
}

// text reads a translated string, accepting both {"fr": "..."} objects and plain strings.
func text(rec collect.Record, path, lang string) string {
	v := rec.Get(path)
	if v.IsObject() {
		if t := v.Get(lang); t.Exists() {
			return strings.TrimSpace(t.String())
		}
		if t := v.Get("fr"); t.Exists() {
			return strings.TrimSpace(t.String())
		}
		return ""
	}
	return strings.TrimSpace(v.String())
}

// ids reads a list of ids from an array of numbers or of objects with an id.
func ids(v gjson.Result) []int {
	var out []int
	v.ForEach(func(_, el gjson.Result) bool {
		if el.IsObject() {
			el = el.Get("id")
		}
		if el.Type == gjson.Number {
			out = append(out, int(el.Int()))
		}
		return true
	})
	return out
}
