// Package server exposes fitting, rendering and diagram sharing over HTTP.
//
// # Endpoints
//
//	GET    /api/healthz          {"ok": true, "store": "<backend>"}
//	POST   /api/fit              fit groups of the posted diagram
//	POST   /api/render           render the posted diagram
//	POST   /api/diagrams         save a shared diagram, returns its share URL
//	GET    /api/diagrams         list saved diagrams, newest first
//	GET    /api/diagrams/{id}    load a saved diagram
//	DELETE /api/diagrams/{id}    delete a saved diagram
//
// Request bodies for /api/fit and /api/render are either a bare diagram
// ({"nodes": [...], "edges": [...]}) or the editor's share payload
// ({"flow": {...}}).
//
// # Errors
//
// Failures are returned as {"error": "<message>", "code": "<CODE>"} with the
// status derived from the code: INVALID_* is 400, *NOT_FOUND is 404, store
// outages are 503, missing converters are 501 and everything else is 500.
package server
