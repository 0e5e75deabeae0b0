package scan

import (
	"sync/atomic"
	"time"
)

// Report summarizes a single scan pass.
type Report struct {
	Source            string    `json:"source"`
	Entities          int       `json:"entities"`
	FieldsScanned     int64     `json:"fields_scanned"`
	RuleHits          int64     `json:"rule_hits"`
	PatternHits       int64     `json:"pattern_hits"`
	AutoClassified    int64     `json:"auto_classified"`
	NeedsConfirmation int64     `json:"needs_confirmation"`
	Discarded         int64     `json:"discarded"`
	Failures          int64     `json:"failures"`
	StartedAt         time.Time `json:"started_at"`
	Duration          string    `json:"duration"`
}

// counters accumulates pass statistics across concurrent entity workers.
type counters struct {
	fieldsScanned     atomic.Int64
	ruleHits          atomic.Int64
	patternHits       atomic.Int64
	autoClassified    atomic.Int64
	needsConfirmation atomic.Int64
	discarded         atomic.Int64
	failures          atomic.Int64
}

func (c *counters) snapshot(source string, entities int, started time.Time) *Report {
	return &Report{
		Source:            source,
		Entities:          entities,
		FieldsScanned:     c.fieldsScanned.Load(),
		RuleHits:          c.ruleHits.Load(),
		PatternHits:       c.patternHits.Load(),
		AutoClassified:    c.autoClassified.Load(),
		NeedsConfirmation: c.needsConfirmation.Load(),
		Discarded:         c.discarded.Load(),
		Failures:          c.failures.Load(),
		StartedAt:         started.UTC(),
		Duration:          time.Since(started).Round(time.Millisecond).String(),
	}
}
