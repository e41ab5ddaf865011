package domain

// Page — страница результатов с метаданными пагинации.
type Page[T any] struct {
	// TotalItems — число всех совпадений без учёта пагинации.
	TotalItems int `json:"totalItems"`

	// TotalPages — ceil(TotalItems / PageSize).
	TotalPages int `json:"totalPages"`

	// CurrentPage — номер страницы, начиная с 1.
	CurrentPage int `json:"currentPage"`

	// PageSize — размер страницы.
	PageSize int `json:"pageSize"`

	// Data — элементы страницы. Никогда не nil, чтобы в JSON был [].
	Data []T `json:"data"`
}

// TotalPages считает число страниц. pageSize <= 0 даёт 0.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}
