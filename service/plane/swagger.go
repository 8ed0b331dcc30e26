package plane

import _ "embed"

// SwaggerJSON is the OpenAPI description of chaincode routes.
//
//go:embed swagger.json
var SwaggerJSON []byte
