// Package datatable expands a script into one case per row of a CSV table.
//
// The header row names the variables. Every `<header>` placeholder in the
// script is replaced with the row's value for that column.
package datatable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	// ErrEmptyTable is returned when the table has no header row.
	ErrEmptyTable = errors.New("data table is empty")

	// ErrRowWidth is returned when a row has a different number of values
	// than the header row.
	ErrRowWidth = errors.New("data table row is not the same length as the header row")

	// ErrDuplicateHeader is returned when two columns share a name.
	ErrDuplicateHeader = errors.New("data table has a duplicate header")
)

// Row maps header names to the values of one record.
type Row map[string]string

// Case is one expansion of a script.
type Case struct {
	Name   string
	Index  int
	Script string
	Values Row
}

// Read parses table into rows. Headers and values are trimmed.
func Read(table io.Reader) ([]Row, error) {
	r := csv.NewReader(table)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data table headers: %w", err)
	}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrEmptyTable, i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
		}
		seen[h] = true
		headers[i] = h
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data table: %w", err)
		}
		if len(record) != len(headers) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d values, expected %d", ErrRowWidth, line, len(record), len(headers))
		}

		row := make(Row, len(headers))
		for i, v := range record {
			row[headers[i]] = strings.TrimSpace(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Inline replaces every `<name>` placeholder in script with its value.
// Longer names are replaced first so `<user>` never clips `<username>`.
func Inline(script string, row Row) string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, "<"+name+">", row[name])
	}
	return strings.NewReplacer(pairs...).Replace(script)
}

// Expand reads table and produces one case per row.
func Expand(script string, table io.Reader) ([]Case, error) {
	rows, err := Read(table)
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0, len(rows))
	for i, row := range rows {
		cases = append(cases, Case{
			Name:   fmt.Sprintf("test-run-%d", i),
			Index:  i,
			Script: fmt.Sprintf("# Test Run %d\n%s", i, Inline(script, row)),
			Values: row,
		})
	}
	return cases, nil
}
