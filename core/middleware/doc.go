// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the scrapping and configuration endpoints.
//   - rayid: generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context locals and response headers for tracing.
package middleware
