// Package cli реализует инструмент командной строки nodehub.
//
// # Обзор
//
// CLI — клиентская утилита для nodehub API. Работает через HTTP,
// не импортирует внутренние пакеты сервиса.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для nodehub API. Инкапсулирует запросы, разбор ответов
// и ошибок ({"error": ...} и {"message": ...}).
//
//	client := cli.NewClient("http://localhost:8080")
//	page, err := client.ListNodeNames(ctx, cli.PageOpts{Search: "slack"})
//
// ## Output
//
// Форматирование вывода. Два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения — в stderr:
// nodehub node names --json | jq .
//
// ## Commands
//
//   - node: list, names, show
//   - credential: names, schema, create
//   - workflow: list, activate
//
// Каждая группа создаётся фабричной функцией (NewNodeCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
