// Package spec embeds the OpenAPI description of the Timekeeper API.
// The HTTP server serves it at /openapi.yaml and renders it at /docs.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
