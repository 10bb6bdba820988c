// Package server exposes the artwork pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz                          liveness and version
//	GET    /v1/artworks                      list records, newest first
//	POST   /v1/artworks                      upload a map image, build the path
//	GET    /v1/artworks/{id}                 record metadata
//	DELETE /v1/artworks/{id}                 remove a record
//	GET    /v1/artworks/{id}/path            path coordinates
//	GET    /v1/artworks/{id}/frame.{format}  draw a frame (svg, png, json, dot)
//
// POST accepts the image either as the raw request body or as the "image"
// field of a multipart form. Query parameters spacing, threshold, strategy,
// max_steps and seed override the server defaults.
//
// Frame requests take reveal (block count) or progress (0..1), loudness,
// style, gallery, panels and scale. Rendered frames are cached through the
// pipeline runner's cache.
//
// # Errors
//
// Failures are reported as JSON objects with a machine-readable code:
//
//	{"code": "ARTWORK_NOT_FOUND", "message": "artwork 5f0c… not found"}
//
// INVALID_* codes map to 400, *_NOT_FOUND to 404 and everything else to 500.
package server
