package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table — табличное представление ответа для текстового режима.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable создаёт таблицу с заголовком.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Add добавляет строку.
func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// render пишет таблицу с подчёркиванием заголовка.
func (t *Table) render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rule := make([]string, len(t.Header))
	for i, h := range t.Header {
		rule[i] = strings.Repeat("-", len(h))
	}

	for _, cells := range append([][]string{t.Header, rule}, t.Rows...) {
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Output — вывод CLI: данные в stdout, сообщения и ошибки в stderr.
// В JSON-режиме данные печатаются как есть, таблицы не строятся.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput создаёт Output поверх os.Stdout и os.Stderr.
func NewOutput(jsonMode bool) *Output {
	return &Output{jsonMode: jsonMode, w: os.Stdout, errW: os.Stderr}
}

// Print выводит таблицу либо data в JSON-режиме.
func (o *Output) Print(t *Table, data any) error {
	if o.jsonMode {
		return o.JSON(data)
	}
	return t.render(o.w)
}

// JSON выводит v с отступами.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Notef пишет сообщение в stderr. В JSON-режиме молчит, чтобы не мешать
// разбору stdout скриптами.
func (o *Output) Notef(format string, args ...any) {
	if o.jsonMode {
		return
	}
	fmt.Fprintf(o.errW, format+"\n", args...)
}

// Error сообщает об ошибке команды в stderr.
// В JSON-режиме печатает {"error": ..., "status": ...}; status есть только у APIError.
func (o *Output) Error(err error) {
	if !o.jsonMode {
		fmt.Fprintln(o.errW, "Error:", err)
		return
	}

	report := struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}{Error: err.Error()}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		report.Error = apiErr.Message
		report.Status = apiErr.StatusCode
	}
	_ = json.NewEncoder(o.errW).Encode(report)
}
