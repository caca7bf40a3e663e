// Package dofusdb is the HTTP remote for the "dofusdb" alias source.
//
// Pages are requested with the Feathers-style $limit/$skip parameters; alias
// filters are passed through as plain query parameters. Transport errors,
// 429 and 5xx responses are retried with retry-go according to Config;
// other statuses and malformed bodies fail immediately. The collector sees
// only the final error.
package dofusdb
