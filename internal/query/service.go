package query

import (
	"context"
	"fmt"
	"math"

	"github.com/shaiso/nodehub/internal/domain"
	"github.com/shaiso/nodehub/internal/repo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

// Значения пагинации по умолчанию.
const (
	DefaultPage                = 1
	DefaultNamesPageSize       = 10
	DefaultCredentialsPageSize = 1000
)

// summaryFields — проекция для списков имён и карточки node.
var summaryFields = []string{domain.FieldID, domain.FieldDisplayName, domain.FieldIconURL}

// Store — то, что сервису нужно от хранилища.
type Store interface {
	Find(ctx context.Context, filter repo.Filter, opts repo.FindOptions) ([]domain.Node, error)
	Count(ctx context.Context, filter repo.Filter) (int, error)
	GetByID(ctx context.Context, id string, fields ...string) (*domain.Node, error)
}

// Service — слой запросов к коллекции nodes. Только чтение, без состояния.
type Service struct {
	store Store
}

// NewService создаёт Service поверх переданного хранилища.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListRecords возвращает полные документы с точным совпадением displayName.
// Пустой displayName — все документы. Без пагинации.
func (s *Service) ListRecords(ctx context.Context, displayName string) ([]domain.Node, error) {
	nodes, err := s.store.Find(ctx, repo.Filter{DisplayName: displayName}, repo.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return nodes, nil
}

// ListNames возвращает страницу проекций {id, displayName, iconUrl}
// для документов, где displayName содержит search без учёта регистра.
//
// page и pageSize ожидаются уже приведёнными (см. ParsePositiveIntOr);
// неположительные значения заменяются значениями по умолчанию.
func (s *Service) ListNames(ctx context.Context, search string, page, pageSize int) (*domain.Page[domain.NodeSummary], error) {
	page, pageSize = normalize(page, pageSize, DefaultNamesPageSize)
	filter := repo.Filter{NameContains: search}

	var (
		nodes []domain.Node
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = s.store.Find(gctx, filter, repo.FindOptions{
			Skip:   offset(page, pageSize),
			Limit:  pageSize,
			Fields: summaryFields,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	data := make([]domain.NodeSummary, len(nodes))
	for i, n := range nodes {
		data[i] = n.Summary()
	}

	return &domain.Page[domain.NodeSummary]{
		TotalItems:  total,
		TotalPages:  domain.TotalPages(total, pageSize),
		CurrentPage: page,
		PageSize:    pageSize,
		Data:        data,
	}, nil
}

// ListCredentialNames возвращает уникальные имена credentials.
//
// Фильтр: хотя бы одно credentials[].name содержит search без учёта регистра.
// Окно skip/limit применяется к документам, а не к именам; затем берутся
// все имена credentials из документов окна (не только совпавшие) и
// дедуплицируются с сохранением порядка первого появления. Поэтому
// число имён не ограничено pageSize. Имена, отличающиеся только регистром,
// считаются одним; в результат попадает написание, встреченное первым.
func (s *Service) ListCredentialNames(ctx context.Context, search string, page, pageSize int) ([]string, error) {
	page, pageSize = normalize(page, pageSize, DefaultCredentialsPageSize)

	nodes, err := s.store.Find(ctx, repo.Filter{CredentialContains: search}, repo.FindOptions{
		Skip:   offset(page, pageSize),
		Limit:  pageSize,
		Fields: []string{domain.FieldID, domain.FieldCredentials},
	})
	if err != nil {
		return nil, fmt.Errorf("list credential names: %w", err)
	}

	return uniqueCredentialNames(nodes), nil
}

// GetRecord возвращает проекцию {id, displayName, iconUrl} документа.
// Ошибки repo.ErrInvalidID и repo.ErrNotFound пробрасываются как есть.
func (s *Service) GetRecord(ctx context.Context, id string) (*domain.NodeSummary, error) {
	node, err := s.store.GetByID(ctx, id, summaryFields...)
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", id, err)
	}
	summary := node.Summary()
	return &summary, nil
}

// uniqueCredentialNames собирает имена credentials без повторов.
// Пустые имена пропускаются.
func uniqueCredentialNames(nodes []domain.Node) []string {
	caser := cases.Fold()
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, n := range nodes {
		for _, name := range n.CredentialNames() {
			if name == "" {
				continue
			}
			key := caser.String(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// offset считает число пропускаемых документов без переполнения int.
func offset(page, pageSize int) int {
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// normalize подставляет значения по умолчанию вместо неположительных.
func normalize(page, pageSize, defaultSize int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return page, pageSize
}
