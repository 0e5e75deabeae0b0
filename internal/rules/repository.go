package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/privata-io/privata/pkg/pagination"
	"github.com/privata-io/privata/pkg/query"
	"github.com/privata-io/privata/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "learned_rules", "r").
	Project("field_name", "FieldName").
	Project("is_pii", "IsPII").
	Project("pii_type", "Type").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a learned rule repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "rules"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Lookup(ctx context.Context, fieldName string) (*Rule, error) {
	q, args := query.NewBuilder(projection).BuildSingle("FieldName", normalize(fieldName))

	rule, err := repository.QueryOne(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rule, nil
}

func (r *repo) Upsert(ctx context.Context, fieldName string, isPII bool, piiType string) error {
	if err := UpsertTx(ctx, r.db, fieldName, isPII, piiType); err != nil {
		return fmt.Errorf("upsert rule %q: %w", fieldName, err)
	}

	r.logger.Info("rule upserted",
		"field_name", normalize(fieldName),
		"is_pii", isPII,
		"type", piiType,
	)
	return nil
}

// UpsertTx writes a rule through any Executor, letting the confirmation
// workflow update the rule store inside its own transaction.
func UpsertTx(ctx context.Context, e repository.Executor, fieldName string, isPII bool, piiType string) error {
	if piiType == "" {
		piiType = "none"
	}

	_, err := e.ExecContext(ctx, `
		INSERT INTO learned_rules (field_name, is_pii, pii_type, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (field_name) DO UPDATE SET
			is_pii = EXCLUDED.is_pii,
			pii_type = EXCLUDED.pii_type,
			updated_at = NOW()`,
		normalize(fieldName), isPII, piiType,
	)
	return err
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Rule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "FieldName", "Type")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Delete(ctx context.Context, fieldName string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM learned_rules WHERE field_name = $1",
		normalize(fieldName),
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("rule deleted", "field_name", normalize(fieldName))
	return nil
}

func normalize(fieldName string) string {
	return strings.ToLower(strings.TrimSpace(fieldName))
}

func scanRule(s repository.Scanner) (Rule, error) {
	var rule Rule
	err := s.Scan(
		&rule.FieldName,
		&rule.IsPII,
		&rule.Type,
		&rule.UpdatedAt,
	)
	return rule, err
}
