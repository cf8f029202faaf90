package frame

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CellKind discriminates the three cell states.
type CellKind uint8

const (
	// KindNull is a typed missing value (domain NA sentinels normalize here).
	KindNull CellKind = iota
	// KindText is an uninterpreted string cell.
	KindText
	// KindNumber is a coerced numeric cell.
	KindNumber
)

// Cell is a tagged union holding one table value: null, text, or number.
// The zero Cell is null.
type Cell struct {
	kind CellKind
	text string
	num  float64
}

// Null returns the typed missing value.
func Null() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Kind returns the cell's kind.
func (c Cell) Kind() CellKind { return c.kind }

// IsNull reports whether the cell is a typed missing value.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// Float returns the numeric value and whether the cell holds one.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Text returns the text value and whether the cell holds one.
func (c Cell) Text() (string, bool) {
	if c.kind != KindText {
		return "", false
	}
	return c.text, true
}

// String renders the cell for display: "" for null, the text, or the
// shortest decimal representation of the number.
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON encodes null as JSON null, text as a string, numbers as
// numbers, so cached payloads round-trip losslessly.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindText:
		return json.Marshal(c.text)
	case KindNumber:
		return json.Marshal(c.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*c = Null()
	case string:
		*c = Text(t)
	case float64:
		*c = Number(t)
	case bool:
		// Upstream never sends booleans in tabular payloads; keep the
		// textual form rather than failing the whole table.
		*c = Text(strconv.FormatBool(t))
	default:
		return fmt.Errorf("frame: cannot decode cell from %T", v)
	}
	return nil
}
