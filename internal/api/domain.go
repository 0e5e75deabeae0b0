package api

import (
	"fmt"

	"github.com/privata-io/privata/internal/autolink"
	"github.com/privata-io/privata/internal/classifier"
	"github.com/privata-io/privata/internal/confirmations"
	"github.com/privata-io/privata/internal/detect"
	"github.com/privata-io/privata/internal/llm"
	"github.com/privata-io/privata/internal/provenance"
	"github.com/privata-io/privata/internal/rules"
	"github.com/privata-io/privata/internal/scan"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Rules         rules.System
	Confirmations confirmations.System
	Scan          scan.System
	Provenance    *provenance.Writer
	AutoLink      *autolink.Resolver
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	writer := provenance.NewWriter(runtime.Graph, runtime.Logger)

	provider, err := llm.New(&runtime.Classifier)
	if err != nil {
		return nil, fmt.Errorf("llm provider init failed: %w", err)
	}

	rulesSystem := rules.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	confirmationsSystem := confirmations.New(
		runtime.Database.Connection(),
		writer,
		runtime.Logger,
		runtime.Pagination,
	)

	scanSystem := scan.New(
		runtime.Pipeline,
		rulesSystem,
		detect.NewMatcher(),
		classifier.New(provider, runtime.Logger),
		confirmationsSystem,
		writer,
		runtime.Logger,
	)

	return &Domain{
		Rules:         rulesSystem,
		Confirmations: confirmationsSystem,
		Scan:          scanSystem,
		Provenance:    writer,
		AutoLink:      autolink.NewResolver(writer, runtime.Logger),
	}, nil
}
