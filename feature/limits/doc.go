// Package limits caps how many records a "collect everything" run may fetch
// per entity type. Page sizes are a separate concern owned by the collector.
package limits
