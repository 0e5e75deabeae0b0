// Package scan runs the classification pipeline over discoverable data
// sources. Each field passes through three stages in strict order, and the
// first stage to produce a judgment wins: learned rules, pattern matching,
// probabilistic classification.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/privata-io/privata/internal/classifier"
	"github.com/privata-io/privata/internal/confirmations"
	"github.com/privata-io/privata/internal/detect"
	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/internal/provenance"
	"github.com/privata-io/privata/internal/rules"
	"github.com/privata-io/privata/internal/sources"
)

// Config tunes pipeline execution.
type Config struct {
	// SampleSize caps the values sampled per field.
	SampleSize int `toml:"sample_size"`

	// Workers bounds concurrent entity scans.
	Workers int `toml:"workers"`
}

// Finalize applies defaults.
func (c *Config) Finalize() {
	if c.SampleSize <= 0 {
		c.SampleSize = 10
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.SampleSize != 0 {
		c.SampleSize = overlay.SampleSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

type pipeline struct {
	cfg        Config
	rules      rules.System
	matcher    *detect.Matcher
	classifier *classifier.Classifier
	confirms   confirmations.System
	writer     *provenance.Writer
	logger     *slog.Logger
}

// New creates the scan pipeline implementing the System interface.
func New(
	cfg Config,
	ruleSys rules.System,
	matcher *detect.Matcher,
	cls *classifier.Classifier,
	confirms confirmations.System,
	writer *provenance.Writer,
	logger *slog.Logger,
) System {
	cfg.Finalize()
	return &pipeline{
		cfg:        cfg,
		rules:      ruleSys,
		matcher:    matcher,
		classifier: cls,
		confirms:   confirms,
		writer:     writer,
		logger:     logger.With("system", "scan"),
	}
}

func (p *pipeline) Handler() *Handler {
	return NewHandler(p, p.logger)
}

// textSampleLimit caps the prose excerpt handed to the probabilistic stage.
const textSampleLimit = 500

func (p *pipeline) DetectText(ctx context.Context, text string) []detect.TextFinding {
	findings := p.matcher.DetectText(text)

	// One probabilistic pass over an excerpt catches contextual PII the
	// shape rules cannot see, such as names and addresses in prose.
	sample := text
	if len(sample) > textSampleLimit {
		sample = sample[:textSampleLimit]
	}

	out := p.classifier.Classify(ctx, sample, "document_text")
	if !out.IsPII() {
		return findings
	}
	for _, f := range findings {
		if f.Type == out.Type {
			return findings
		}
	}

	return append(findings, detect.TextFinding{
		Type:     out.Type,
		Category: out.Category,
		Risk:     out.Risk,
		Count:    1,
	})
}

func (p *pipeline) RunPass(ctx context.Context, source sources.Source) (*Report, error) {
	started := time.Now()

	entities, err := source.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", source.Name(), err)
	}

	var stats counters

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, entity := range entities {
		g.Go(func() error {
			if err := p.scanEntity(gctx, source, entity, &stats); err != nil {
				// Entity failures are isolated unless the context died.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				stats.failures.Add(1)
				p.logger.Error("entity scan failed",
					"source", source.Name(),
					"locator", entity.Locator,
					"error", err,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := stats.snapshot(source.Name(), len(entities), started)
	p.logger.Info("scan pass complete",
		"source", report.Source,
		"entities", report.Entities,
		"fields", report.FieldsScanned,
		"auto_classified", report.AutoClassified,
		"needs_confirmation", report.NeedsConfirmation,
		"discarded", report.Discarded,
		"failures", report.Failures,
	)
	return report, nil
}

func (p *pipeline) scanEntity(ctx context.Context, source sources.Source, entity sources.Entity, stats *counters) error {
	if err := p.writer.UpsertEntity(ctx, entity.Type, entity.Subtype, entity.Locator, entity.Name); err != nil {
		return err
	}

	fields, err := source.SampleFields(ctx, entity, p.cfg.SampleSize)
	if err != nil {
		return err
	}

	for _, field := range fields {
		stats.fieldsScanned.Add(1)

		ident := pii.FieldIdentity{
			SourceType:    entity.Type,
			SourceSubtype: entity.Subtype,
			Locator:       entity.Locator,
			FieldName:     field.Name,
		}

		if err := p.classifyField(ctx, ident, field, stats); err != nil {
			if ctx.Err() != nil {
				return err
			}
			stats.failures.Add(1)
			p.logger.Error("field scan failed",
				"locator", ident.Locator,
				"field_name", ident.FieldName,
				"error", err,
			)
		}
	}

	return nil
}

// classifyField runs one field through the pipeline stages. Each stage is
// terminal on a hit; later stages never second-guess earlier ones.
func (p *pipeline) classifyField(ctx context.Context, ident pii.FieldIdentity, field sources.Field, stats *counters) error {
	// Stage 1: learned rules. A human judgment short-circuits everything,
	// including a judgment that the field is not PII.
	rule, err := p.rules.Lookup(ctx, ident.FieldName)
	if err != nil && !errors.Is(err, rules.ErrNotFound) {
		return err
	}
	if rule != nil {
		stats.ruleHits.Add(1)
		if !rule.IsPII {
			return nil
		}
		out := pii.Outcome{
			Type:       rule.Type,
			Category:   pii.CategoryForType(rule.Type),
			Source:     pii.SourceLearnedRule,
			Confidence: 1.0,
			Status:     pii.StatusAutoClassified,
			Reason:     "Matched learned rule for field name",
		}
		out.Risk = pii.RiskForCategory(out.Category)
		stats.autoClassified.Add(1)
		return p.writer.UpsertClassification(ctx, ident, out)
	}

	// Stage 2: deterministic patterns. First matching sample wins.
	for _, sample := range field.Samples {
		if out := p.matcher.Detect(sample, ident.FieldName); out != nil {
			stats.patternHits.Add(1)
			stats.autoClassified.Add(1)
			return p.writer.UpsertClassification(ctx, ident, *out)
		}
	}

	// Stage 3: probabilistic classification. First terminal result wins.
	for _, sample := range field.Samples {
		out := p.classifier.Classify(ctx, sample, ident.FieldName)

		switch out.Status {
		case pii.StatusAutoClassified:
			// A confident "none" is terminal: the field is judged clean
			// and nothing is persisted.
			if out.Type == pii.TypeNone || out.Type == "" {
				return nil
			}
			stats.autoClassified.Add(1)
			return p.writer.UpsertClassification(ctx, ident, out)

		case pii.StatusNeedsConfirmation:
			if out.Type == pii.TypeNone || out.Type == "" {
				return nil
			}
			stats.needsConfirmation.Add(1)
			_, err := p.confirms.Create(ctx, ident, out)
			return err

		case pii.StatusDiscarded:
			stats.discarded.Add(1)
			if out.Type != pii.TypeNone && out.Type != "" {
				return p.confirms.RecordDiscard(ctx, ident, out)
			}
			return nil
		}
	}

	// No samples to judge; nothing is recorded for the field.
	return nil
}
