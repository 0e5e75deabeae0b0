// Package provenance maintains the governance graph linking raw storage
// locations (tables, files, fields) to PII classifications and governed data
// assets. The writer enforces two invariants: at most one active PII
// classification edge per field, and at most one outgoing asset link per
// discovered entity, with confirmed links always displacing provisional ones.
package provenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/privata-io/privata/internal/graph"
	"github.com/privata-io/privata/internal/pii"
)

// Node labels.
const (
	LabelTable     = "Table"
	LabelFile      = "File"
	LabelField     = "Field"
	LabelPII       = "PII"
	LabelCategory  = "Category"
	LabelDataAsset = "DataAsset"
)

// Edge labels.
const (
	EdgeHasField    = "HAS_FIELD"
	EdgeIsPII       = "IS_PII"
	EdgeBelongsTo   = "BELONGS_TO"
	EdgePartOfAsset = "PART_OF_DATA_ASSET"
	EdgeAutoLinked  = "AUTO_LINKED_TO"
)

// PropCategories is the DataAsset node property holding declared
// personal-data categories.
const PropCategories = "personal_data_categories"

// Asset is a governed data asset declared by a compliance officer.
type Asset struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Writer performs idempotent governance writes against the graph store.
type Writer struct {
	store  *graph.Store
	logger *slog.Logger
}

// NewWriter creates a provenance Writer over the graph store.
func NewWriter(store *graph.Store, logger *slog.Logger) *Writer {
	return &Writer{
		store:  store,
		logger: logger.With("system", "provenance"),
	}
}

// Store exposes the underlying graph store for read-side collaborators.
func (w *Writer) Store() *graph.Store {
	return w.store
}

// EntityLabel maps a source type onto the discovered-entity node label.
func EntityLabel(sourceType string) string {
	if strings.EqualFold(sourceType, "database") {
		return LabelTable
	}
	return LabelFile
}

// FieldKey is the node key for a field: locator plus lowercased field name.
func FieldKey(locator, fieldName string) string {
	return locator + "#" + strings.ToLower(fieldName)
}

// UpsertEntity records a discovered Table or File node.
func (w *Writer) UpsertEntity(ctx context.Context, sourceType, sourceSubtype, locator, name string) error {
	return w.store.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := w.store.UpsertNode(ctx, tx, EntityLabel(sourceType), locator, name, graph.Props{
			"source_type":    sourceType,
			"source_subtype": sourceSubtype,
		})
		return err
	})
}

// UpsertClassification writes the active classification for a field. Any
// prior classification edge for the field is deleted in the same transaction
// so readers never observe two active classifications, and never observe a
// half-written replacement. Outcomes that do not count as PII are rejected.
func (w *Writer) UpsertClassification(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) error {
	if !out.IsPII() {
		return fmt.Errorf("%w: type=%s status=%s", ErrNotClassifiable, out.Type, out.Status)
	}

	err := w.store.WithTx(ctx, func(tx *sql.Tx) error {
		// Discovery owns entity naming; classification only guarantees the
		// node exists, seeding the locator as a name when nothing scanned
		// this entity yet.
		entityID, err := w.store.EnsureNode(ctx, tx, EntityLabel(ident.SourceType), ident.Locator, ident.Locator, graph.Props{
			"source_type":    ident.SourceType,
			"source_subtype": ident.SourceSubtype,
		})
		if err != nil {
			return err
		}

		fieldID, err := w.store.UpsertNode(ctx, tx, LabelField, FieldKey(ident.Locator, ident.FieldName), ident.FieldName, graph.Props{
			"locator": ident.Locator,
		})
		if err != nil {
			return err
		}

		if err := w.store.UpsertEdge(ctx, tx, entityID, fieldID, EdgeHasField, nil); err != nil {
			return err
		}

		piiID, err := w.store.UpsertNode(ctx, tx, LabelPII, out.Type, out.Type, graph.Props{
			"default_risk": string(out.Risk),
		})
		if err != nil {
			return err
		}

		categoryID, err := w.store.UpsertNode(ctx, tx, LabelCategory, string(out.Category), string(out.Category), nil)
		if err != nil {
			return err
		}

		if err := w.store.UpsertEdge(ctx, tx, piiID, categoryID, EdgeBelongsTo, nil); err != nil {
			return err
		}

		// Replace, never accumulate: classification is idempotent per field.
		if _, err := w.store.DeleteEdgesFrom(ctx, tx, fieldID, EdgeIsPII); err != nil {
			return err
		}

		return w.store.UpsertEdge(ctx, tx, fieldID, piiID, EdgeIsPII, graph.Props{
			"confidence":  out.Confidence,
			"source":      string(out.Source),
			"status":      string(out.Status),
			"reason":      out.Reason,
			"risk":        string(out.Risk),
			"detected_at": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if err != nil {
		return fmt.Errorf("upsert classification %s.%s: %w", ident.Locator, ident.FieldName, err)
	}

	w.logger.Info("classification written",
		"locator", ident.Locator,
		"field", ident.FieldName,
		"type", out.Type,
		"status", out.Status,
	)
	return nil
}

// RemoveClassification deletes the active classification edge for a field.
// Removing a classification that was never written is a no-op.
func (w *Writer) RemoveClassification(ctx context.Context, ident pii.FieldIdentity) error {
	err := w.store.WithTx(ctx, func(tx *sql.Tx) error {
		fieldID, err := w.store.NodeID(ctx, tx, LabelField, FieldKey(ident.Locator, ident.FieldName))
		if errors.Is(err, graph.ErrNodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = w.store.DeleteEdgesFrom(ctx, tx, fieldID, EdgeIsPII)
		return err
	})

	if err != nil {
		return fmt.Errorf("remove classification %s.%s: %w", ident.Locator, ident.FieldName, err)
	}
	return nil
}

// UpsertAsset records a governed data asset with its declared categories.
func (w *Writer) UpsertAsset(ctx context.Context, asset Asset) error {
	if asset.ID == "" {
		return ErrAssetIDRequired
	}

	return w.store.WithTx(ctx, func(tx *sql.Tx) error {
		categories := asset.Categories
		if categories == nil {
			categories = []string{}
		}
		_, err := w.store.UpsertNode(ctx, tx, LabelDataAsset, asset.ID, asset.Name, graph.Props{
			PropCategories: categories,
		})
		return err
	})
}

// LinkEntityToAsset writes a confirmed asset link for a discovered entity.
// Confirmed links are exclusive: any provisional link and any prior confirmed
// link is deleted in the same transaction, regardless of target.
func (w *Writer) LinkEntityToAsset(ctx context.Context, entityLocator, assetID string) error {
	err := w.store.WithTx(ctx, func(tx *sql.Tx) error {
		entityID, err := w.findEntity(ctx, tx, entityLocator)
		if err != nil {
			return err
		}

		targetID, err := w.store.NodeID(ctx, tx, LabelDataAsset, assetID)
		if err != nil {
			return err
		}

		if _, err := w.store.DeleteEdgesFrom(ctx, tx, entityID, EdgeAutoLinked); err != nil {
			return err
		}
		if _, err := w.store.DeleteEdgesFrom(ctx, tx, entityID, EdgePartOfAsset); err != nil {
			return err
		}

		return w.store.UpsertEdge(ctx, tx, entityID, targetID, EdgePartOfAsset, graph.Props{
			"linked_at": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if err != nil {
		return fmt.Errorf("link %s to asset %s: %w", entityLocator, assetID, err)
	}

	w.logger.Info("entity linked to asset", "locator", entityLocator, "asset_id", assetID)
	return nil
}

// PIITypes returns the distinct PII types actively classified on an entity's
// fields, derived by traversal so it can never go stale.
func (w *Writer) PIITypes(ctx context.Context, entityID int64) ([]string, error) {
	db := w.store.Connection()

	fields, err := w.store.Neighbors(ctx, db, entityID, EdgeHasField)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var types []string
	for _, f := range fields {
		piiNodes, err := w.store.Neighbors(ctx, db, f.ID, EdgeIsPII)
		if err != nil {
			return nil, err
		}
		for _, p := range piiNodes {
			if !seen[p.Key] {
				seen[p.Key] = true
				types = append(types, p.Key)
			}
		}
	}

	return types, nil
}

// findEntity resolves a discovered entity by locator across both entity labels.
func (w *Writer) findEntity(ctx context.Context, tx *sql.Tx, locator string) (int64, error) {
	id, err := w.store.NodeID(ctx, tx, LabelTable, locator)
	if errors.Is(err, graph.ErrNodeNotFound) {
		return w.store.NodeID(ctx, tx, LabelFile, locator)
	}
	return id, err
}
