package repo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/nodehub/internal/domain"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// MemoryRepo — хранилище nodes в памяти.
//
// Используется для локальной разработки (memory://seed.yaml) и в тестах.
// Идентификаторы — UUID, как в PostgreSQL. Документы без id получают
// новый UUID при загрузке.
type MemoryRepo struct {
	mu    sync.RWMutex
	nodes []domain.Node
	index map[string]int
}

// NewMemoryRepo создаёт хранилище с документами в заданном порядке.
func NewMemoryRepo(nodes ...domain.Node) (*MemoryRepo, error) {
	r := &MemoryRepo{
		nodes: make([]domain.Node, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		id, err := uuid.Parse(n.ID)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, ErrInvalidID)
		}
		// Нормализуем, чтобы GetByID находил id в любом регистре.
		n.ID = id.String()
		if _, dup := r.index[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %s", n.ID)
		}
		r.index[n.ID] = len(r.nodes)
		r.nodes = append(r.nodes, n)
	}

	return r, nil
}

// LoadMemoryRepo читает документы из YAML или JSON файла.
// Файл — список документов nodes.
func LoadMemoryRepo(path string) (*MemoryRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	nodes := make([]domain.Node, 0, len(docs))
	for _, doc := range docs {
		nodes = append(nodes, domain.NodeFromDocument(doc))
	}

	return NewMemoryRepo(nodes...)
}

// Find возвращает документы по фильтру в порядке загрузки.
func (r *MemoryRepo) Find(ctx context.Context, filter Filter, opts FindOptions) ([]domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m := newMatcher(filter)
	result := make([]domain.Node, 0)
	skipped := 0
	for _, n := range r.nodes {
		if !m.match(n) {
			continue
		}
		if skipped < opts.Skip {
			skipped++
			continue
		}
		result = append(result, project(n, opts.Fields))
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

// Count возвращает число документов по фильтру.
func (r *MemoryRepo) Count(ctx context.Context, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m := newMatcher(filter)
	count := 0
	for _, n := range r.nodes {
		if m.match(n) {
			count++
		}
	}
	return count, nil
}

// GetByID возвращает документ по UUID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string, fields ...string) (*domain.Node, error) {
	nodeID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[nodeID.String()]
	if !ok {
		return nil, ErrNotFound
	}
	n := project(r.nodes[i], fields)
	return &n, nil
}

// Ping всегда успешен.
func (r *MemoryRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close ничего не делает.
func (r *MemoryRepo) Close(_ context.Context) error {
	return nil
}

// matcher проверяет документ на соответствие фильтру.
// Подстроки сравниваются после Unicode case folding.
type matcher struct {
	filter     Filter
	name       string
	credential string
}

func newMatcher(filter Filter) matcher {
	return matcher{
		filter:     filter,
		name:       fold(filter.NameContains),
		credential: fold(filter.CredentialContains),
	}
}

func (m matcher) match(n domain.Node) bool {
	if m.filter.DisplayName != "" && n.DisplayName != m.filter.DisplayName {
		return false
	}
	if m.filter.NameContains != "" && !strings.Contains(fold(n.DisplayName), m.name) {
		return false
	}
	if m.filter.CredentialContains != "" {
		for _, c := range n.Credentials {
			if strings.Contains(fold(c.Name), m.credential) {
				return true
			}
		}
		return false
	}
	return true
}

// fold приводит строку к регистронезависимой форме.
// Caser не потокобезопасен, поэтому создаётся на каждый вызов.
func fold(s string) string {
	return cases.Fold().String(s)
}

// project оставляет в документе только поля проекции.
func project(n domain.Node, fields []string) domain.Node {
	if len(fields) == 0 {
		return n
	}

	out := domain.Node{ID: n.ID}
	if hasField(fields, domain.FieldDisplayName) {
		out.DisplayName = n.DisplayName
	}
	if hasField(fields, domain.FieldIconURL) {
		out.IconURL = n.IconURL
	}
	if hasField(fields, domain.FieldCredentials) {
		out.Credentials = n.Credentials
	}
	for k, v := range n.Extra {
		if hasField(fields, k) {
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = v
		}
	}
	return out
}
