// Package sources abstracts the data stores the pipeline scans. A Source
// enumerates discoverable entities (tables, files) and samples field values
// from them; the pipeline never touches a store directly.
package sources

import "context"

// Entity kinds.
const (
	TypeDatabase = "database"
	TypeFile     = "file"
)

// Entity is a scannable unit discovered in a source: one table or one file.
type Entity struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Locator string `json:"locator"`
	Name    string `json:"name"`
}

// Field is a named field with sampled values drawn from an entity.
type Field struct {
	Name    string   `json:"name"`
	Samples []string `json:"samples"`
}

// Source enumerates entities and samples their fields.
type Source interface {
	// Name identifies the source in logs and scan reports.
	Name() string

	// Entities lists the scannable units in the source.
	Entities(ctx context.Context) ([]Entity, error)

	// SampleFields returns up to limit sampled values per field of the
	// given entity. Fields with no sampled values are still returned so
	// name-based rules can apply.
	SampleFields(ctx context.Context, entity Entity, limit int) ([]Field, error)
}
