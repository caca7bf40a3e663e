// Package alias resolves human collection aliases ("monster", "resource") to
// a remote source, an entity type and optional filters.
//
// The registry is a single JSON document with an "aliases" object. It is read
// from a Source (a local file or an object in storage) the first time it is
// needed and kept until Reload. A missing or broken document disables
// collection instead of failing the process: the resolver then knows no aliases.
package alias
