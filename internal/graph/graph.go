// Package graph provides an embedded labeled property graph over SQLite.
// Nodes are upserted by (label, key); edges by (src, dst, label). Every
// operation runs through a small fixed set of parameterized statement
// templates, and multi-statement writes execute inside one transaction.
//
// The graph is a derived read-mirror of governance state: PostgreSQL remains
// the system of record for workflow decisions.
package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/privata-io/privata/pkg/lifecycle"
	"github.com/privata-io/privata/pkg/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	label      TEXT NOT NULL,
	key        TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	props      TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(label, key)
);

CREATE TABLE IF NOT EXISTS edges (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	src        INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	dst        INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	label      TEXT NOT NULL,
	props      TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(src, dst, label)
);

CREATE INDEX IF NOT EXISTS idx_edges_src_label ON edges(src, label);
CREATE INDEX IF NOT EXISTS idx_edges_dst_label ON edges(dst, label);
CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);
`

// Props is a free-form property bag stored as JSON on nodes and edges.
type Props map[string]any

// Node is a labeled graph node addressed by (Label, Key).
type Node struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Props Props  `json:"props"`
}

// Edge is a labeled, directed edge between two nodes.
type Edge struct {
	ID    int64  `json:"id"`
	SrcID int64  `json:"src_id"`
	DstID int64  `json:"dst_id"`
	Label string `json:"label"`
	Props Props  `json:"props"`
}

// Store manages the SQLite-backed graph with lifecycle coordination.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the graph database and applies the schema.
func New(cfg *Config, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path, cfg.BusyTimeout,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}

	// In-memory databases exist per connection; a single connection keeps
	// the graph visible across all operations.
	if strings.Contains(cfg.Path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply graph schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("system", "graph"),
	}, nil
}

// Connection returns the underlying database handle.
func (s *Store) Connection() *sql.DB {
	return s.db
}

// Start registers shutdown hooks with the lifecycle coordinator.
func (s *Store) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("closing graph store")
		if err := s.db.Close(); err != nil {
			s.logger.Error("graph store close failed", "error", err)
		}
	})
	return nil
}

// WithTx executes fn within a graph transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// UpsertNode inserts or updates a node by (label, key), returning its id.
func (s *Store) UpsertNode(ctx context.Context, q repository.Querier, label, key, name string, props Props) (int64, error) {
	raw, err := marshalProps(props)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.QueryRowContext(ctx, `
		INSERT INTO nodes (label, key, name, props)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(label, key) DO UPDATE SET
			name = excluded.name,
			props = excluded.props
		RETURNING id`,
		label, key, name, raw,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert node %s/%s: %w", label, key, err)
	}

	return id, nil
}

// EnsureNode inserts a node by (label, key) if absent, returning its id.
// Unlike UpsertNode it never overwrites an existing node's name; the name
// argument only seeds nodes created here.
func (s *Store) EnsureNode(ctx context.Context, q repository.Querier, label, key, name string, props Props) (int64, error) {
	raw, err := marshalProps(props)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.QueryRowContext(ctx, `
		INSERT INTO nodes (label, key, name, props)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(label, key) DO UPDATE SET
			props = excluded.props
		RETURNING id`,
		label, key, name, raw,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure node %s/%s: %w", label, key, err)
	}

	return id, nil
}

// NodeID resolves a node id by (label, key), returning ErrNodeNotFound when absent.
func (s *Store) NodeID(ctx context.Context, q repository.Querier, label, key string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM nodes WHERE label = ? AND key = ?",
		label, key,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s/%s", ErrNodeNotFound, label, key)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpsertEdge inserts or updates an edge by (src, dst, label).
func (s *Store) UpsertEdge(ctx context.Context, e repository.Executor, src, dst int64, label string, props Props) error {
	raw, err := marshalProps(props)
	if err != nil {
		return err
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO edges (src, dst, label, props)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(src, dst, label) DO UPDATE SET
			props = excluded.props`,
		src, dst, label, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert edge %d-[%s]->%d: %w", src, label, dst, err)
	}
	return nil
}

// DeleteEdgesFrom removes all outgoing edges with the given label from src,
// returning the number removed.
func (s *Store) DeleteEdgesFrom(ctx context.Context, e repository.Executor, src int64, label string) (int64, error) {
	result, err := e.ExecContext(ctx,
		"DELETE FROM edges WHERE src = ? AND label = ?",
		src, label,
	)
	if err != nil {
		return 0, fmt.Errorf("delete edges from %d label %s: %w", src, label, err)
	}
	return result.RowsAffected()
}

// OutEdges returns the outgoing edges with the given label from src.
func (s *Store) OutEdges(ctx context.Context, q repository.Querier, src int64, label string) ([]Edge, error) {
	return repository.QueryMany(ctx, q,
		"SELECT id, src, dst, label, props FROM edges WHERE src = ? AND label = ? ORDER BY id",
		[]any{src, label}, scanEdge,
	)
}

// Neighbors returns the destination nodes of outgoing edges with the given label.
func (s *Store) Neighbors(ctx context.Context, q repository.Querier, src int64, label string) ([]Node, error) {
	return repository.QueryMany(ctx, q, `
		SELECT n.id, n.label, n.key, n.name, n.props
		FROM edges e
		JOIN nodes n ON n.id = e.dst
		WHERE e.src = ? AND e.label = ?
		ORDER BY n.id`,
		[]any{src, label}, scanNode,
	)
}

// NodesByLabel returns all nodes carrying the given label.
func (s *Store) NodesByLabel(ctx context.Context, q repository.Querier, label string) ([]Node, error) {
	return repository.QueryMany(ctx, q,
		"SELECT id, label, key, name, props FROM nodes WHERE label = ? ORDER BY id",
		[]any{label}, scanNode,
	)
}

// UnlinkedNodes returns nodes whose label is in nodeLabels and which have no
// outgoing edge with a label in edgeLabels.
func (s *Store) UnlinkedNodes(ctx context.Context, q repository.Querier, nodeLabels, edgeLabels []string) ([]Node, error) {
	sqlQuery := fmt.Sprintf(`
		SELECT n.id, n.label, n.key, n.name, n.props
		FROM nodes n
		WHERE n.label IN (%s)
		AND NOT EXISTS (
			SELECT 1 FROM edges e
			WHERE e.src = n.id AND e.label IN (%s)
		)
		ORDER BY n.id`,
		placeholders(len(nodeLabels)),
		placeholders(len(edgeLabels)),
	)

	args := make([]any, 0, len(nodeLabels)+len(edgeLabels))
	for _, l := range nodeLabels {
		args = append(args, l)
	}
	for _, l := range edgeLabels {
		args = append(args, l)
	}

	return repository.QueryMany(ctx, q, sqlQuery, args, scanNode)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func marshalProps(props Props) (string, error) {
	if props == nil {
		props = Props{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("marshal props: %w", err)
	}
	return string(raw), nil
}

func scanNode(s repository.Scanner) (Node, error) {
	var n Node
	var raw string

	if err := s.Scan(&n.ID, &n.Label, &n.Key, &n.Name, &raw); err != nil {
		return n, err
	}

	if err := json.Unmarshal([]byte(raw), &n.Props); err != nil {
		return n, fmt.Errorf("unmarshal node props: %w", err)
	}
	return n, nil
}

func scanEdge(s repository.Scanner) (Edge, error) {
	var e Edge
	var raw string

	if err := s.Scan(&e.ID, &e.SrcID, &e.DstID, &e.Label, &raw); err != nil {
		return e, err
	}

	if err := json.Unmarshal([]byte(raw), &e.Props); err != nil {
		return e, fmt.Errorf("unmarshal edge props: %w", err)
	}
	return e, nil
}
