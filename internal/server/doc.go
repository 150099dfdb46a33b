// Package server exposes the checklist store over HTTP.
//
// All routes live under /api and speak JSON, except the export route,
// which returns the checklist's markdown document directly. Typed store
// errors map onto status codes: validation failures become 400, missing
// records become 404, anything else is a 500.
package server
