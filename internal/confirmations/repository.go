package confirmations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/internal/provenance"
	"github.com/privata-io/privata/internal/rules"
	"github.com/privata-io/privata/pkg/pagination"
	"github.com/privata-io/privata/pkg/query"
	"github.com/privata-io/privata/pkg/repository"
)

type repo struct {
	db         *sql.DB
	writer     *provenance.Writer
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a confirmation repository implementing the System interface.
// The provenance writer receives best-effort graph updates after each
// committed decision.
func New(db *sql.DB, writer *provenance.Writer, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		writer:     writer,
		logger:     logger.With("system", "confirmations"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) (*Request, error) {
	if existing, err := r.findPending(ctx, ident); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	req := &Request{
		ID:            uuid.New(),
		SourceType:    ident.SourceType,
		SourceSubtype: ident.SourceSubtype,
		Locator:       ident.Locator,
		FieldName:     ident.FieldName,
		SuggestedType: out.Type,
		Category:      out.Category,
		Risk:          out.Risk,
		Confidence:    out.Confidence,
		Reason:        out.Reason,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := r.insert(ctx, req); err != nil {
		// A concurrent scan pass can win the race on the partial unique
		// index; the open request is the authoritative one.
		if mapped := repository.MapError(err, ErrNotFound, ErrDuplicate); mapped == ErrDuplicate {
			if existing, ferr := r.findPending(ctx, ident); ferr == nil && existing != nil {
				return existing, nil
			}
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create confirmation request: %w", err)
	}

	r.logger.Info("confirmation requested",
		"locator", req.Locator,
		"field_name", req.FieldName,
		"suggested_type", req.SuggestedType,
		"confidence", req.Confidence,
	)
	return req, nil
}

func (r *repo) RecordDiscard(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) error {
	req := &Request{
		ID:            uuid.New(),
		SourceType:    ident.SourceType,
		SourceSubtype: ident.SourceSubtype,
		Locator:       ident.Locator,
		FieldName:     ident.FieldName,
		SuggestedType: out.Type,
		Category:      out.Category,
		Risk:          out.Risk,
		Confidence:    out.Confidence,
		Reason:        out.Reason,
		Status:        StatusDiscarded,
		CreatedAt:     time.Now().UTC(),
	}

	if err := r.insert(ctx, req); err != nil {
		return fmt.Errorf("record discard: %w", err)
	}
	return nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Request, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &req, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error) {
	return r.list(ctx, page, nil, defaultSort)
}

func (r *repo) Pending(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error) {
	return r.list(ctx, page, []any{string(StatusPending)}, pendingSort...)
}

func (r *repo) Resolved(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error) {
	return r.list(ctx, page, []any{
		string(StatusConfirmed),
		string(StatusRejected),
		string(StatusSkipped),
		string(StatusOverridden),
	}, defaultSort)
}

func (r *repo) Discarded(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error) {
	return r.list(ctx, page, []any{string(StatusDiscarded)}, defaultSort)
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID, res Resolution) (*Request, error) {
	resolved, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Request, error) {
		req, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		change, err := applyResolution(req, res, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if err := r.applyRule(ctx, tx, change); err != nil {
			return nil, err
		}

		err = repository.ExecExpectOne(ctx, tx, `
			UPDATE confirmation_requests SET
				status = $1,
				suggested_type = $2,
				category = $3,
				risk = $4,
				resolved_at = $5,
				resolved_by = $6
			WHERE id = $7`,
			req.Status, req.SuggestedType, req.Category, req.Risk,
			req.ResolvedAt, req.ResolvedBy, req.ID,
		)
		if err != nil {
			return nil, err
		}

		return req, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("confirmation resolved",
		"id", resolved.ID,
		"decision", res.Decision,
		"status", resolved.Status,
		"resolved_by", res.ResolvedBy,
	)

	r.syncGraph(ctx, resolved, res.Decision)
	return resolved, nil
}

func (r *repo) Override(ctx context.Context, id uuid.UUID, ov Override) (*Request, error) {
	replacement, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Request, error) {
		prev, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		next, change, err := buildOverride(prev, ov, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if err := r.applyRule(ctx, tx, change); err != nil {
			return nil, err
		}

		// The superseded row keeps its original decision intact; the only
		// mark it takes is the status flip. Who overrode it, when, and why
		// all live on the replacement row.
		err = repository.ExecExpectOne(ctx, tx,
			"UPDATE confirmation_requests SET status = $1 WHERE id = $2",
			StatusOverridden, prev.ID,
		)
		if err != nil {
			return nil, err
		}

		if err := r.insertTx(ctx, tx, next); err != nil {
			return nil, err
		}

		return next, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("decision overridden",
		"previous_id", id,
		"id", replacement.ID,
		"decision", ov.Decision,
		"overridden_by", ov.OverriddenBy,
	)

	r.syncGraph(ctx, replacement, ov.Decision)
	return replacement, nil
}

// syncGraph pushes the committed decision into the provenance graph. The
// graph is a derived mirror; failures are logged and never unwind a
// committed decision.
func (r *repo) syncGraph(ctx context.Context, req *Request, decision Decision) {
	if r.writer == nil {
		return
	}

	var err error
	switch decision {
	case DecisionYes:
		err = r.writer.UpsertClassification(ctx, req.Identity(), pii.Outcome{
			Type:       req.SuggestedType,
			Category:   req.Category,
			Risk:       req.Risk,
			Source:     pii.SourceLearnedRule,
			Confidence: 1.0,
			Status:     pii.StatusConfirmed,
			Reason:     req.Reason,
		})
	case DecisionNo:
		err = r.writer.RemoveClassification(ctx, req.Identity())
	default:
		return
	}

	if err != nil {
		r.logger.Error("graph sync failed",
			"id", req.ID,
			"locator", req.Locator,
			"field_name", req.FieldName,
			"error", err,
		)
	}
}

func (r *repo) findPending(ctx context.Context, ident pii.FieldIdentity) (*Request, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE c.locator = $1 AND LOWER(c.field_name) = LOWER($2) AND c.status = $3
		LIMIT 1`,
		projection.Columns(), projection.From(),
	)

	req, err := repository.QueryOne(ctx, r.db, q, []any{ident.Locator, ident.FieldName, StatusPending}, scanRequest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return &req, nil
}

func (r *repo) lock(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Request, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE c.id = $1 FOR UPDATE",
		projection.Columns(), projection.From(),
	)

	req, err := repository.QueryOne(ctx, tx, q, []any{id}, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &req, nil
}

func (r *repo) insert(ctx context.Context, req *Request) error {
	return r.insertTx(ctx, r.db, req)
}

func (r *repo) insertTx(ctx context.Context, e repository.Executor, req *Request) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO confirmation_requests (
			id, source_type, source_subtype, locator, field_name,
			suggested_type, category, risk, confidence, reason,
			status, created_at, resolved_at, resolved_by,
			override_reason, overridden_by, overridden_at, previous_decision_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		req.ID, req.SourceType, req.SourceSubtype, req.Locator, req.FieldName,
		req.SuggestedType, req.Category, req.Risk, req.Confidence, req.Reason,
		req.Status, req.CreatedAt, req.ResolvedAt, req.ResolvedBy,
		req.OverrideReason, req.OverriddenBy, req.OverriddenAt, req.PreviousDecisionID,
	)
	return err
}

// applyRule writes the learned rule a decision implies, in the decision's
// transaction. A nil change means the decision teaches nothing.
func (r *repo) applyRule(ctx context.Context, tx *sql.Tx, change *ruleChange) error {
	if change == nil {
		return nil
	}
	return rules.UpsertTx(ctx, tx, change.fieldName, change.isPII, change.piiType)
}

func (r *repo) list(ctx context.Context, page pagination.PageRequest, statuses []any, sort ...query.SortField) (*pagination.PageResult[Request], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, sort...).
		WhereIn("Status", statuses).
		WhereSearch(page.Search, "Locator", "FieldName", "SuggestedType")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count confirmation requests: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query confirmation requests: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}
