package collect

import (
	"github.com/tidwall/gjson"
)

// Record is one raw external record as returned by a remote source.
type Record []byte

// Get returns the value at a gjson path.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// ID returns the external identifier of the record.
func (r Record) ID() int {
	if v := r.Get("id"); v.Exists() {
		return int(v.Int())
	}
	return int(r.Get("_id").Int())
}

// Valid reports whether the record is a JSON object.
func (r Record) Valid() bool {
	return gjson.ValidBytes(r) && gjson.ParseBytes(r).IsObject()
}
