package repo

import "errors"

// Общие ошибки хранилищ.
var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID — идентификатор не в формате хранилища (клиентская ошибка).
	ErrInvalidID = errors.New("invalid id")

	// ErrUnsupportedStore — схема DSN не поддерживается.
	ErrUnsupportedStore = errors.New("unsupported store")
)
