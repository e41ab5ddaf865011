package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/nodehub/internal/domain"
)

// Store — хранилище документов коллекции nodes.
//
// Все реализации работают только на чтение и возвращают документы
// в естественном порядке вставки.
type Store interface {
	// Find возвращает документы, подходящие под фильтр, с учётом окна.
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]domain.Node, error)

	// Count возвращает число документов, подходящих под фильтр.
	Count(ctx context.Context, filter Filter) (int, error)

	// GetByID возвращает документ по идентификатору.
	// ErrInvalidID — id не в формате хранилища, ErrNotFound — документа нет.
	GetByID(ctx context.Context, id string, fields ...string) (*domain.Node, error)

	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error

	// Close освобождает соединения.
	Close(ctx context.Context) error
}

// Filter — условия выборки. Пустые поля не участвуют.
type Filter struct {
	// DisplayName — точное совпадение displayName.
	DisplayName string

	// NameContains — подстрока displayName без учёта регистра.
	NameContains string

	// CredentialContains — подстрока хотя бы одного credentials[].name без учёта регистра.
	CredentialContains string
}

// FindOptions — окно выборки и проекция.
type FindOptions struct {
	// Skip — сколько совпадений пропустить.
	Skip int

	// Limit — сколько вернуть. 0 — без ограничения.
	Limit int

	// Fields — проекция (domain.Field*). Пусто — документ целиком.
	// id возвращается всегда.
	Fields []string
}

// OpenOptions — параметры подключения к хранилищу.
type OpenOptions struct {
	// DSN — строка подключения. Схема определяет backend:
	// postgres://, postgresql://, mongodb://, mongodb+srv://, memory://<seed file>.
	DSN string

	// Database — имя базы MongoDB. Пусто — берётся из пути DSN.
	Database string
}

// Open подключается к хранилищу по схеме DSN.
func Open(ctx context.Context, opts OpenOptions) (Store, error) {
	scheme, _, ok := strings.Cut(opts.DSN, "://")
	if !ok {
		return nil, fmt.Errorf("%w: dsn has no scheme", ErrUnsupportedStore)
	}

	switch scheme {
	case "postgres", "postgresql":
		pool, err := NewPool(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return NewNodeRepo(pool), nil

	case "mongodb", "mongodb+srv":
		return NewMongoRepo(ctx, opts.DSN, opts.Database)

	case "memory":
		return LoadMemoryRepo(strings.TrimPrefix(opts.DSN, "memory://"))

	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedStore, scheme)
	}
}

// hasField проверяет, входит ли поле в проекцию.
func hasField(fields []string, name string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
