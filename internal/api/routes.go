package api

import (
	"net/http"

	"github.com/privata-io/privata/internal/autolink"
	"github.com/privata-io/privata/internal/provenance"
	"github.com/privata-io/privata/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Rules.Handler().Routes(),
		domain.Confirmations.Handler().Routes(),
		domain.Scan.Handler().Routes(),
		provenance.NewHandler(domain.Provenance, runtime.Logger).Routes(),
		autolink.NewHandler(domain.AutoLink, runtime.Logger).Routes(),
	)
}
