package handler

import (
	"net/http"

	"github.com/pkordes/timekeeper/spec"
)

// docsPage renders /openapi.yaml with the Scalar API reference.
const docsPage = `<!doctype html>
<html>
<head>
  <title>Timekeeper API</title>
  <meta charset="utf-8" />
</head>
<body>
  <script id="api-reference" data-url="/openapi.yaml"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>
`

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	//nolint:errcheck
	w.Write(spec.OpenAPI)
}

// GetDocs handles GET /docs.
func (s *Server) GetDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	//nolint:errcheck
	w.Write([]byte(docsPage))
}
