package query

import (
	"strconv"
	"strings"
)

// ParsePositiveIntOr разбирает параметр запроса как положительное целое.
//
// Пустая строка, не число, 0 и отрицательные значения дают def.
// Пробелы по краям игнорируются. Дробные значения ("2.5") считаются
// не числом.
func ParsePositiveIntOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
