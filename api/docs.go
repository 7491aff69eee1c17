package api

import (
	_ "embed"
)

// OpenAPI is the OpenAPI document served under /docs.
//
//go:embed openapi.json
var OpenAPI []byte
