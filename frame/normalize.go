package frame

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/dshkol/cancensus-go/errors"
)

// naSentinels are the domain missing-value encodings Statistics Canada uses
// in numeric columns: suppressed ("x"), too unreliable to publish ("F"),
// not applicable ("..."), and plain absence. They normalize to typed null,
// never to zero.
var naSentinels = map[string]bool{
	"x":   true,
	"X":   true,
	"F":   true,
	"f":   true,
	"...": true,
	"..":  true,
	"-":   true,
	"":    true,
}

// countColumns are the fixed census count/measurement columns coerced to
// numbers during normalization.
var countColumns = map[string]bool{
	"Population": true,
	"Dwellings":  true,
	"Households": true,
	"pop":        true,
	"pop2":       true,
}

// isNumericColumn reports whether a column holds counts or measurements.
// Vector columns are recognized by the v_ identifier prefix; area columns
// vary in header suffix across datasets ("Area (sq km)", "Area(sq km)").
func isNumericColumn(name string) bool {
	if countColumns[name] {
		return true
	}
	if strings.HasPrefix(name, "v_") {
		return true
	}
	return strings.HasPrefix(name, "Area")
}

// ParseCSV reads a raw CSV payload into a Table of text cells. Incidental
// leading/trailing whitespace on headers is stripped; the upstream service
// does not treat header spacing as contractual.
func ParseCSV(raw []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1 // upstream rows are occasionally ragged

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.Parse("frame", "ParseCSV", "empty payload", errors.ErrInvalidPayload)
	}
	if err != nil {
		return nil, errors.Parse("frame", "ParseCSV", "read header", err)
	}
	t := NewTable()
	for _, h := range header {
		t.Columns = append(t.Columns, strings.TrimSpace(h))
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parse("frame", "ParseCSV", "read row", err)
		}
		cells := make([]Cell, len(rec))
		for i, v := range rec {
			cells[i] = Text(v)
		}
		t.AppendRow(cells...)
	}
	return t, nil
}

// ParseJSONRows reads a JSON array of flat objects into a Table with the
// given column order. Keys absent from a row become null cells; the
// region, dataset, and vector list endpoints all return this shape.
func ParseJSONRows(raw []byte, columns []string) (*Table, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errors.Parse("frame", "ParseJSONRows", "decode rows", err)
	}
	t := NewTable(columns...)
	for _, row := range rows {
		cells := make([]Cell, len(columns))
		for i, col := range columns {
			cells[i] = cellFromJSON(row[col])
		}
		t.AppendRow(cells...)
	}
	return t, nil
}

func cellFromJSON(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case bool:
		return Text(strconv.FormatBool(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String())
		}
		return Number(f)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Null()
		}
		return Text(string(b))
	}
}

// Normalize returns a normalized copy of t: headers trimmed, NA sentinels
// in numeric columns replaced by typed nulls, and the remaining cells of
// those columns coerced to numbers. Per-cell coercion failure yields null
// rather than aborting the column. Normalize is idempotent; cells already
// null or numeric pass through unchanged.
func Normalize(t *Table) *Table {
	if t == nil {
		return nil
	}
	out := t.Clone()
	numeric := make([]bool, len(out.Columns))
	for i, c := range out.Columns {
		out.Columns[i] = strings.TrimSpace(c)
		numeric[i] = isNumericColumn(out.Columns[i])
	}

	for _, row := range out.Rows {
		for i := range row {
			if i >= len(numeric) || !numeric[i] {
				continue
			}
			row[i] = coerceNumeric(row[i])
		}
	}
	return out
}

// coerceNumeric maps one numeric-column cell to its typed form.
func coerceNumeric(c Cell) Cell {
	s, ok := c.Text()
	if !ok {
		return c // already null or numeric
	}
	trimmed := strings.TrimSpace(s)
	if naSentinels[trimmed] {
		return Null()
	}
	// Large counts arrive with thousands separators.
	f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return Null()
	}
	return Number(f)
}
