// Package api serves the genealogy pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz      liveness probe
//	GET  /v1/version   build information
//	POST /v1/layout    drawing (nodes and curves) as JSON
//	POST /v1/render    rendered artifacts
//
// Request bodies are [pipeline.Options] in JSON, with the birth records
// inline in the "history" field:
//
//	{"history": "0 0 - -\n1 1 0 -\n", "width": 800, "formats": ["svg"]}
//
// A render request for a single format answers with the raw artifact and
// its content type. Several formats come back as a JSON object whose
// artifacts are base64 encoded.
//
// Every response carries an X-Request-ID header. Coded errors from
// [errors] map to 400 when the input is at fault and 500 otherwise.
package api
