package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/nodehub/internal/domain"
)

// NodeRepo — хранилище nodes в PostgreSQL.
//
// Ожидаемая таблица (создаётся внешним процессом наполнения):
//
//	CREATE TABLE nodes (
//	    seq BIGSERIAL,
//	    id  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    doc JSONB NOT NULL
//	);
//
// seq задаёт естественный порядок вставки, doc — сам документ.
type NodeRepo struct {
	pool *pgxpool.Pool
}

// NewNodeRepo создаёт новый NodeRepo.
func NewNodeRepo(pool *pgxpool.Pool) *NodeRepo {
	return &NodeRepo{pool: pool}
}

// Find возвращает документы по фильтру в порядке seq.
func (r *NodeRepo) Find(ctx context.Context, filter Filter, opts FindOptions) ([]domain.Node, error) {
	var args []any

	query := `SELECT id, ` + projectDoc(opts.Fields, &args) + ` FROM nodes`
	query += buildWhere(filter, &args)
	query += ` ORDER BY seq`

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

// Count возвращает число документов по фильтру.
func (r *NodeRepo) Count(ctx context.Context, filter Filter) (int, error) {
	var args []any
	query := `SELECT count(*) FROM nodes` + buildWhere(filter, &args)

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return int(count), nil
}

// GetByID возвращает документ по UUID.
func (r *NodeRepo) GetByID(ctx context.Context, id string, fields ...string) (*domain.Node, error) {
	nodeID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var args []any
	query := `SELECT id, ` + projectDoc(fields, &args) + ` FROM nodes`
	args = append(args, nodeID)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	node, err := scanNode(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node by id: %w", err)
	}
	return node, nil
}

// Ping проверяет соединение с БД.
func (r *NodeRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает пул.
func (r *NodeRepo) Close(_ context.Context) error {
	r.pool.Close()
	return nil
}

// scanNode читает строку (id, doc).
func scanNode(row pgx.Row) (*domain.Node, error) {
	var (
		id      uuid.UUID
		docJSON []byte
	)
	if err := row.Scan(&id, &docJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan node: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal node %s: %w", id, err)
	}

	node := domain.NodeFromDocument(doc)
	node.ID = id.String()
	return &node, nil
}

// projectDoc возвращает SQL-выражение для документа с учётом проекции.
// Имена полей передаются параметрами, а не подставляются в текст запроса.
func projectDoc(fields []string, args *[]any) string {
	if len(fields) == 0 {
		return "doc"
	}

	var pairs []string
	for _, f := range fields {
		if f == domain.FieldID {
			continue
		}
		*args = append(*args, f)
		n := len(*args)
		pairs = append(pairs, fmt.Sprintf("$%d::text, doc -> $%d::text", n, n))
	}
	if len(pairs) == 0 {
		return "'{}'::jsonb"
	}
	return "jsonb_strip_nulls(jsonb_build_object(" + strings.Join(pairs, ", ") + "))"
}

// buildWhere строит WHERE по фильтру.
func buildWhere(filter Filter, args *[]any) string {
	var conds []string

	if filter.DisplayName != "" {
		*args = append(*args, filter.DisplayName)
		conds = append(conds, fmt.Sprintf("doc ->> 'displayName' = $%d", len(*args)))
	}

	if filter.NameContains != "" {
		*args = append(*args, filter.NameContains)
		conds = append(conds, fmt.Sprintf("strpos(lower(doc ->> 'displayName'), lower($%d)) > 0", len(*args)))
	}

	if filter.CredentialContains != "" {
		*args = append(*args, filter.CredentialContains)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1
			FROM jsonb_array_elements(
				CASE WHEN jsonb_typeof(doc -> 'credentials') = 'array'
					THEN doc -> 'credentials'
					ELSE '[]'::jsonb
				END
			) AS c
			WHERE strpos(lower(c ->> 'name'), lower($%d)) > 0
		)`, len(*args)))
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
