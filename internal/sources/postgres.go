package sources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/privata-io/privata/pkg/repository"
)

// Postgres discovers tables through information_schema and samples column
// values with bounded reads. Sampling is read-only.
type Postgres struct {
	db     *sql.DB
	name   string
	schema string
}

// NewPostgres creates a Postgres source over an existing connection pool.
func NewPostgres(db *sql.DB, name, schema string) *Postgres {
	if schema == "" {
		schema = "public"
	}
	return &Postgres{db: db, name: name, schema: schema}
}

func (p *Postgres) Name() string {
	return p.name
}

func (p *Postgres) Entities(ctx context.Context) ([]Entity, error) {
	rows, err := repository.QueryMany(ctx, p.db, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
		[]any{p.schema},
		func(s repository.Scanner) (string, error) {
			var name string
			err := s.Scan(&name)
			return name, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", p.schema, err)
	}

	entities := make([]Entity, 0, len(rows))
	for _, table := range rows {
		entities = append(entities, Entity{
			Type:    TypeDatabase,
			Subtype: "postgres",
			Locator: p.schema + "." + table,
			Name:    table,
		})
	}
	return entities, nil
}

func (p *Postgres) SampleFields(ctx context.Context, entity Entity, limit int) ([]Field, error) {
	if limit <= 0 {
		limit = 10
	}

	columns, err := repository.QueryMany(ctx, p.db, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`,
		[]any{p.schema, entity.Name},
		func(s repository.Scanner) (string, error) {
			var name string
			err := s.Scan(&name)
			return name, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", entity.Locator, err)
	}

	fields := make([]Field, 0, len(columns))
	for _, column := range columns {
		samples, err := p.sample(ctx, entity.Name, column, limit)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: column, Samples: samples})
	}
	return fields, nil
}

func (p *Postgres) sample(ctx context.Context, table, column string, limit int) ([]string, error) {
	// Identifiers come from information_schema, not user input; quoting
	// still guards against unconventional names.
	q := fmt.Sprintf(
		`SELECT %s::text FROM %s WHERE %s IS NOT NULL LIMIT %d`,
		quoteIdent(column),
		quoteIdent(p.schema)+"."+quoteIdent(table),
		quoteIdent(column),
		limit,
	)

	samples, err := repository.QueryMany(ctx, p.db, q, nil,
		func(s repository.Scanner) (string, error) {
			var v string
			err := s.Scan(&v)
			return v, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("sample %s.%s: %w", table, column, err)
	}
	return samples, nil
}

func quoteIdent(ident string) string {
	quoted := make([]byte, 0, len(ident)+2)
	quoted = append(quoted, '"')
	for i := 0; i < len(ident); i++ {
		if ident[i] == '"' {
			quoted = append(quoted, '"', '"')
		} else {
			quoted = append(quoted, ident[i])
		}
	}
	return string(append(quoted, '"'))
}
