// Package report converts JSON report documents into HTML tables. Column
// discovery is schema-free: the field set is inferred from the rows
// themselves, with a deterministic column order for a given input.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Table is a columns/rows description of a JSON report, ready for
// rendering. Cell values are pre-formatted strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Infer builds a Table from raw JSON objects. Column order follows the key
// order of the JSON text, first row first; keys introduced by later rows are
// appended in their order of first appearance. Missing fields render as
// empty cells. The output is deterministic for a fixed input.
func Infer(rows []json.RawMessage) (*Table, error) {
	var columns []string
	seen := make(map[string]int)

	decoded := make([]map[string]json.RawMessage, len(rows))
	for i, raw := range rows {
		keys, err := keyOrder(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = len(columns)
				columns = append(columns, k)
			}
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		decoded[i] = fields
	}

	table := &Table{Columns: columns, Rows: make([][]string, len(rows))}
	for i, fields := range decoded {
		cells := make([]string, len(columns))
		for name, raw := range fields {
			cell, err := formatCell(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d, field %q: %w", i, name, err)
			}
			cells[seen[name]] = cell
		}
		table.Rows[i] = cells
	}
	return table, nil
}

// FromFile loads a JSON report file and infers its table. The file may be a
// bare array of objects or an API response envelope with a "data" array.
func FromFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	rows, err := Rows(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Infer(rows)
}

// Rows extracts report rows from doc, unwrapping a {"data": [...]} envelope
// when present.
func Rows(doc []byte) ([]json.RawMessage, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) > 0 && doc[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(doc, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Data == nil {
			return nil, fmt.Errorf("document has no data array")
		}
		doc = env.Data
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(doc, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// keyOrder returns the top-level keys of a JSON object in the order they
// appear in the text. Unmarshaling into a map would lose this order.
func keyOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("report row is not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in object", tok)
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// skipValue consumes one JSON value, descending into nested containers.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// formatCell renders one JSON value as cell text. Numbers keep their source
// representation so values survive without a float round-trip.
func formatCell(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return "", err
		}
		return compact.String(), nil
	default:
		// Numbers and booleans are valid as-is.
		return string(trimmed), nil
	}
}
