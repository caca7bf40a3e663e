// Package scrapping orchestrates collection runs.
//
// A run resolves an alias, pages through the remote with a collect.Cursor,
// optionally archives each raw page to object storage, and hands every record
// to the integrator (or its preview in dry-run mode). The returned Report
// tallies created, updated, skipped and failed records and carries the
// cursor's stop reason, so a capped run is never mistaken for an exhausted one.
//
// Errors that end a run early come back together with the partial report:
//
//   - conversion.ErrUnknownFormula aborts the run at the first record that needs it.
//   - collect.ErrRemoteIO (a *collect.RemoteError) ends it at the failing page.
//   - context cancellation ends it between pages.
//
// ErrUnknownAlias means there is nothing to collect and comes with no report.
//
// # HTTP
//
// Feature registers the /scrapping routes: alias discovery, runs, limit and
// formula lookups, the slot map, and the configuration writes that clear the
// conversion caches through the gameconfig hooks.
package scrapping
