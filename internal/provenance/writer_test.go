package provenance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/privata-io/privata/internal/graph"
	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/internal/provenance"
)

func newWriter(t *testing.T) *provenance.Writer {
	t.Helper()

	cfg := &graph.Config{Path: ":memory:", BusyTimeout: 1000}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := graph.New(cfg, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Connection().Close() })

	return provenance.NewWriter(store, logger)
}

func ident(locator, field string) pii.FieldIdentity {
	return pii.FieldIdentity{
		SourceType:    "database",
		SourceSubtype: "postgres",
		Locator:       locator,
		FieldName:     field,
	}
}

func outcome(piiType string, status pii.Status) pii.Outcome {
	category := pii.CategoryForType(piiType)
	return pii.Outcome{
		Type:       piiType,
		Category:   category,
		Risk:       pii.RiskForCategory(category),
		Source:     pii.SourcePattern,
		Confidence: 1.0,
		Status:     status,
		Reason:     "test",
	}
}

func TestUpsertClassificationSingleActiveEdge(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()
	id := ident("public.users", "contact")

	if err := w.UpsertClassification(ctx, id, outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("first classification: %v", err)
	}
	if err := w.UpsertClassification(ctx, id, outcome("phone", pii.StatusConfirmed)); err != nil {
		t.Fatalf("reclassification: %v", err)
	}

	store := w.Store()
	db := store.Connection()

	fieldID, err := store.NodeID(ctx, db, provenance.LabelField, provenance.FieldKey(id.Locator, id.FieldName))
	if err != nil {
		t.Fatalf("field node: %v", err)
	}

	edges, err := store.OutEdges(ctx, db, fieldID, provenance.EdgeIsPII)
	if err != nil {
		t.Fatalf("out edges: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("active classification edges = %d, want 1", len(edges))
	}

	piiNodes, err := store.Neighbors(ctx, db, fieldID, provenance.EdgeIsPII)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if piiNodes[0].Key != "phone" {
		t.Errorf("active type = %s, want phone", piiNodes[0].Key)
	}
}

func TestUpsertClassificationPreservesEntityName(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()

	if err := w.UpsertEntity(ctx, "database", "postgres", "public.invoices", "invoices"); err != nil {
		t.Fatalf("entity: %v", err)
	}
	if err := w.UpsertClassification(ctx, ident("public.invoices", "customer_email"), outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("classification: %v", err)
	}

	store := w.Store()
	nodes, err := store.NodesByLabel(ctx, store.Connection(), provenance.LabelTable)
	if err != nil {
		t.Fatalf("nodes by label: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("entity count = %d, want 1", len(nodes))
	}
	if nodes[0].Name != "invoices" {
		t.Errorf("entity name = %q, want the discovered name invoices", nodes[0].Name)
	}

	// Classifying a field of a never-discovered entity still creates the
	// node, named by its locator until discovery fills it in.
	if err := w.UpsertClassification(ctx, ident("public.ghosts", "email"), outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("classification without entity: %v", err)
	}
	if _, err := store.NodeID(ctx, store.Connection(), provenance.LabelTable, "public.ghosts"); err != nil {
		t.Errorf("entity node not created: %v", err)
	}
}

func TestUpsertClassificationRejectsNonPII(t *testing.T) {
	w := newWriter(t)

	tests := []struct {
		name string
		out  pii.Outcome
	}{
		{"needs confirmation", outcome("email", pii.StatusNeedsConfirmation)},
		{"discarded", outcome("email", pii.StatusDiscarded)},
		{"type none", outcome(pii.TypeNone, pii.StatusAutoClassified)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.UpsertClassification(context.Background(), ident("t", "f"), tt.out)
			if !errors.Is(err, provenance.ErrNotClassifiable) {
				t.Errorf("expected ErrNotClassifiable, got %v", err)
			}
		})
	}
}

func TestRemoveClassification(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()
	id := ident("public.users", "email")

	if err := w.UpsertClassification(ctx, id, outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("classification: %v", err)
	}
	if err := w.RemoveClassification(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}

	store := w.Store()
	fieldID, err := store.NodeID(ctx, store.Connection(), provenance.LabelField, provenance.FieldKey(id.Locator, id.FieldName))
	if err != nil {
		t.Fatalf("field node: %v", err)
	}

	edges, _ := store.OutEdges(ctx, store.Connection(), fieldID, provenance.EdgeIsPII)
	if len(edges) != 0 {
		t.Errorf("edges after remove = %d, want 0", len(edges))
	}

	// Removing again is a no-op, as is removing a never-written field.
	if err := w.RemoveClassification(ctx, id); err != nil {
		t.Errorf("second remove: %v", err)
	}
	if err := w.RemoveClassification(ctx, ident("ghost", "ghost")); err != nil {
		t.Errorf("remove unknown field: %v", err)
	}
}

func TestLinkEntityToAssetExclusive(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()
	store := w.Store()
	db := store.Connection()

	if err := w.UpsertEntity(ctx, "database", "postgres", "public.users", "users"); err != nil {
		t.Fatalf("entity: %v", err)
	}
	if err := w.UpsertAsset(ctx, provenance.Asset{ID: "crm", Name: "CRM", Categories: []string{"CONTACT"}}); err != nil {
		t.Fatalf("asset crm: %v", err)
	}
	if err := w.UpsertAsset(ctx, provenance.Asset{ID: "billing", Name: "Billing", Categories: []string{"FINANCIAL"}}); err != nil {
		t.Fatalf("asset billing: %v", err)
	}

	entityID, err := store.NodeID(ctx, db, provenance.LabelTable, "public.users")
	if err != nil {
		t.Fatalf("entity node: %v", err)
	}
	crmID, _ := store.NodeID(ctx, db, provenance.LabelDataAsset, "crm")

	// A provisional link is displaced by a confirmed one.
	if err := store.UpsertEdge(ctx, db, entityID, crmID, provenance.EdgeAutoLinked, nil); err != nil {
		t.Fatalf("provisional edge: %v", err)
	}

	if err := w.LinkEntityToAsset(ctx, "public.users", "billing"); err != nil {
		t.Fatalf("link: %v", err)
	}

	if provisional, _ := store.OutEdges(ctx, db, entityID, provenance.EdgeAutoLinked); len(provisional) != 0 {
		t.Errorf("provisional edges remain = %d, want 0", len(provisional))
	}

	confirmed, _ := store.Neighbors(ctx, db, entityID, provenance.EdgePartOfAsset)
	if len(confirmed) != 1 || confirmed[0].Key != "billing" {
		t.Fatalf("confirmed link = %+v, want single link to billing", confirmed)
	}

	// Re-linking to a different asset replaces, never accumulates.
	if err := w.LinkEntityToAsset(ctx, "public.users", "crm"); err != nil {
		t.Fatalf("relink: %v", err)
	}
	confirmed, _ = store.Neighbors(ctx, db, entityID, provenance.EdgePartOfAsset)
	if len(confirmed) != 1 || confirmed[0].Key != "crm" {
		t.Fatalf("relink = %+v, want single link to crm", confirmed)
	}
}

func TestLinkEntityToAssetMissingTargets(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()

	if err := w.UpsertAsset(ctx, provenance.Asset{ID: "crm", Name: "CRM"}); err != nil {
		t.Fatalf("asset: %v", err)
	}

	if err := w.LinkEntityToAsset(ctx, "nope", "crm"); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("missing entity: expected ErrNodeNotFound, got %v", err)
	}

	if err := w.UpsertEntity(ctx, "file", "csv", "/data/x.csv", "x.csv"); err != nil {
		t.Fatalf("entity: %v", err)
	}
	if err := w.LinkEntityToAsset(ctx, "/data/x.csv", "nope"); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("missing asset: expected ErrNodeNotFound, got %v", err)
	}
}

func TestUpsertAssetRequiresID(t *testing.T) {
	w := newWriter(t)

	err := w.UpsertAsset(context.Background(), provenance.Asset{Name: "anonymous"})
	if !errors.Is(err, provenance.ErrAssetIDRequired) {
		t.Errorf("expected ErrAssetIDRequired, got %v", err)
	}
}

func TestPIITypes(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()

	if err := w.UpsertClassification(ctx, ident("public.users", "email"), outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("email: %v", err)
	}
	if err := w.UpsertClassification(ctx, ident("public.users", "alt_email"), outcome("email", pii.StatusAutoClassified)); err != nil {
		t.Fatalf("alt email: %v", err)
	}
	if err := w.UpsertClassification(ctx, ident("public.users", "aadhaar_no"), outcome("aadhaar", pii.StatusConfirmed)); err != nil {
		t.Fatalf("aadhaar: %v", err)
	}

	store := w.Store()
	entityID, err := store.NodeID(ctx, store.Connection(), provenance.LabelTable, "public.users")
	if err != nil {
		t.Fatalf("entity node: %v", err)
	}

	types, err := w.PIITypes(ctx, entityID)
	if err != nil {
		t.Fatalf("pii types: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("distinct types = %v, want [email aadhaar]", types)
	}
}
