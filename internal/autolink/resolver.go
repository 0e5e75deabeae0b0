// Package autolink proposes provisional mappings from unmapped discovered
// entities to governed data assets. Proposals are written as AUTO_LINKED_TO
// edges only; the resolver never writes confirmed links and skips any entity
// with more than one equally plausible target.
package autolink

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/privata-io/privata/internal/graph"
	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/internal/provenance"
)

// Link confidence levels.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
)

// Match methods recorded on proposed links.
const (
	MethodPIITypeMatch = "PIITypeMatch"
	MethodNameMatch    = "NameMatch"
)

// Report summarizes a single resolver pass.
type Report struct {
	Scanned   int       `json:"scanned"`
	Linked    int       `json:"linked"`
	Ambiguous int       `json:"ambiguous"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// Resolver scores unmapped entities against declared assets.
type Resolver struct {
	writer *provenance.Writer
	logger *slog.Logger
}

// NewResolver creates a Resolver over the provenance writer.
func NewResolver(writer *provenance.Writer, logger *slog.Logger) *Resolver {
	return &Resolver{
		writer: writer,
		logger: logger.With("system", "autolink"),
	}
}

// RunPass evaluates every unmapped entity against every declared asset and
// writes provisional links for unambiguous matches.
func (r *Resolver) RunPass(ctx context.Context) (*Report, error) {
	started := time.Now()
	store := r.writer.Store()
	db := store.Connection()

	entities, err := store.UnlinkedNodes(ctx, db,
		[]string{provenance.LabelTable, provenance.LabelFile},
		[]string{provenance.EdgePartOfAsset, provenance.EdgeAutoLinked},
	)
	if err != nil {
		return nil, err
	}

	assets, err := store.NodesByLabel(ctx, db, provenance.LabelDataAsset)
	if err != nil {
		return nil, err
	}

	report := &Report{Scanned: len(entities), StartedAt: started.UTC()}

	for _, entity := range entities {
		proposal, outcome, err := r.evaluate(ctx, entity, assets)
		if err != nil {
			return nil, err
		}

		switch outcome {
		case outcomeLinked:
			if err := r.propose(ctx, entity, *proposal); err != nil {
				return nil, err
			}
			report.Linked++
		case outcomeAmbiguous:
			report.Ambiguous++
		default:
			report.Skipped++
		}
	}

	report.Duration = time.Since(started).Round(time.Millisecond).String()
	r.logger.Info("autolink pass complete",
		"scanned", report.Scanned,
		"linked", report.Linked,
		"ambiguous", report.Ambiguous,
		"skipped", report.Skipped,
	)
	return report, nil
}

type passOutcome int

const (
	outcomeSkipped passOutcome = iota
	outcomeLinked
	outcomeAmbiguous
)

type proposal struct {
	asset      graph.Node
	confidence string
	method     string
	score      int
}

// evaluate scores one entity against all assets. Category overlap is tried
// first; name matching only applies when no asset shares any category.
func (r *Resolver) evaluate(ctx context.Context, entity graph.Node, assets []graph.Node) (*proposal, passOutcome, error) {
	if len(assets) == 0 {
		return nil, outcomeSkipped, nil
	}

	types, err := r.writer.PIITypes(ctx, entity.ID)
	if err != nil {
		return nil, outcomeSkipped, err
	}

	categories := make(map[string]bool)
	for _, t := range types {
		categories[string(pii.CategoryForType(t))] = true
	}

	best, bestScore, tied := scoreByCategory(categories, assets)
	if bestScore > 0 {
		if tied {
			r.logger.Debug("ambiguous category match", "locator", entity.Key, "score", bestScore)
			return nil, outcomeAmbiguous, nil
		}
		confidence := ConfidenceMedium
		if bestScore >= 2 {
			confidence = ConfidenceHigh
		}
		return &proposal{asset: *best, confidence: confidence, method: MethodPIITypeMatch, score: bestScore}, outcomeLinked, nil
	}

	match, matches := matchByName(entity.Name, assets)
	if matches == 1 {
		return &proposal{asset: *match, confidence: ConfidenceMedium, method: MethodNameMatch, score: 0}, outcomeLinked, nil
	}
	if matches > 1 {
		return nil, outcomeAmbiguous, nil
	}
	return nil, outcomeSkipped, nil
}

func (r *Resolver) propose(ctx context.Context, entity graph.Node, p proposal) error {
	store := r.writer.Store()
	err := store.UpsertEdge(ctx, store.Connection(), entity.ID, p.asset.ID, provenance.EdgeAutoLinked, graph.Props{
		"confidence":  p.confidence,
		"method":      p.method,
		"score":       p.score,
		"proposed_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	r.logger.Info("provisional link proposed",
		"locator", entity.Key,
		"asset", p.asset.Key,
		"confidence", p.confidence,
		"method", p.method,
	)
	return nil
}

// scoreByCategory counts declared asset categories present on the entity.
// Returns the best asset, its score, and whether another asset tied it.
func scoreByCategory(entityCategories map[string]bool, assets []graph.Node) (*graph.Node, int, bool) {
	var best *graph.Node
	bestScore := 0
	tied := false

	for i := range assets {
		score := 0
		for _, c := range assetCategories(assets[i]) {
			if entityCategories[c] {
				score++
			}
		}
		switch {
		case score > bestScore:
			best = &assets[i]
			bestScore = score
			tied = false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	return best, bestScore, tied
}

// matchByName finds assets whose name contains the entity name or vice versa,
// case-insensitively. Returns the last match and the total match count.
func matchByName(entityName string, assets []graph.Node) (*graph.Node, int) {
	name := strings.ToLower(strings.TrimSpace(entityName))
	if name == "" {
		return nil, 0
	}

	var match *graph.Node
	count := 0
	for i := range assets {
		assetName := strings.ToLower(strings.TrimSpace(assets[i].Name))
		if assetName == "" {
			continue
		}
		if strings.Contains(assetName, name) || strings.Contains(name, assetName) {
			match = &assets[i]
			count++
		}
	}

	return match, count
}

// assetCategories reads the declared category list from a DataAsset node's
// properties, tolerating the JSON round-trip through the props bag.
func assetCategories(asset graph.Node) []string {
	raw, ok := asset.Props[provenance.PropCategories]
	if !ok {
		return nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	categories := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories
}
