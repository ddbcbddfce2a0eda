package crates

import (
	"net/http"

	"github.com/diwise/ro-crate/pkg/rocrate/jsonldcontext"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const DefaultContextID string = "ro-crate-1.1-context.jsonld"

// NewServeContextHandler serves the bundled RO-Crate 1.1 context so that
// clients without internet access can resolve the default vocabulary
func NewServeContextHandler() http.HandlerFunc {
	responseBytes := jsonldcontext.DefaultDocument()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID := pathParam(r, "contextId")

		if contextID != DefaultContextID {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		logging.GetFromContext(r.Context()).Debug("default context requested from client")

		w.Header().Add("Content-Type", "application/ld+json")
		w.WriteHeader(http.StatusOK)
		w.Write(responseBytes)
	})
}
