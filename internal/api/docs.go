// Package api carries the OpenAPI document of the gateway and the pieces
// built from it: the docs route and request validation.
package api

import (
	_ "embed"
	"net/http"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openAPIDocument string

// SwaggerInfo is registered with swag so the document can be read back by name.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	BasePath:         "/",
	Title:            "Wallee Gateway API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  openAPIDocument,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Document returns the raw OpenAPI document.
func Document() []byte {
	return []byte(openAPIDocument)
}

// RegisterDocsRoutes serves the document at /openapi.json.
func RegisterDocsRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
}
