package app

import (
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/metinatakli/storefront/api"
)

// mustNewOpenAPIRouter matches requests against the embedded API document. The
// server list is dropped so routes match on any host.
func mustNewOpenAPIRouter() routers.Router {
	doc, err := api.GetSwagger()
	if err != nil {
		panic(err)
	}

	doc.Servers = nil

	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		panic(err)
	}

	return router
}
