package frame

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshkol/cancensus-go/errors"
)

const sampleCSV = ` GeoUID ,Type,Region Name,Area (sq km),Population,Dwellings,Households,v_CA16_408: Occupied private dwellings
5915022,CSD,Vancouver,114.97,"631,486",283916,264573,283916
5915025,CSD,Burnaby,98.6,232755,x,98500,F
5915043,CSD,"Langley, Township of",308.03,117285,...,-,41390
`

func TestParseCSV_TrimsHeaders(t *testing.T) {
	tbl, err := ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GeoUID", "Type", "Region Name", "Area (sq km)",
		"Population", "Dwellings", "Households",
		"v_CA16_408: Occupied private dwellings",
	}, tbl.Columns)
	assert.Equal(t, 3, tbl.NumRows())
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(nil)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestNormalize_NASentinels(t *testing.T) {
	tbl, err := ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	n := Normalize(tbl)

	// Numeric strings become numbers, including comma-separated counts.
	pop, ok := n.Cell(0, "Population").Float()
	assert.True(t, ok)
	assert.Equal(t, 631486.0, pop)

	// Sentinels become typed nulls, never zero and never text.
	assert.True(t, n.Cell(1, "Dwellings").IsNull(), `"x" is null`)
	assert.True(t, n.Cell(2, "Dwellings").IsNull(), `"..." is null`)
	assert.True(t, n.Cell(2, "Households").IsNull(), `"-" is null`)
	assert.True(t, n.Cell(1, "v_CA16_408: Occupied private dwellings").IsNull(), `"F" is null`)

	// Non-numeric columns keep their text untouched.
	name, ok := n.Cell(2, "Region Name").Text()
	assert.True(t, ok)
	assert.Equal(t, "Langley, Township of", name)
}

func TestNormalize_SentinelPositions(t *testing.T) {
	tbl := NewTable("GeoUID", "Population")
	for _, v := range []string{"100", "x", "F", "...", "-", "250.5"} {
		tbl.AppendRow(Text("id"), Text(v))
	}
	n := Normalize(tbl)

	col := n.Column("Population")
	require.Len(t, col, 6)
	wantNull := []bool{false, true, true, true, true, false}
	for i, c := range col {
		assert.Equal(t, wantNull[i], c.IsNull(), "row %d", i)
	}
	f, _ := col[0].Float()
	assert.Equal(t, 100.0, f)
	f, _ = col[5].Float()
	assert.Equal(t, 250.5, f)
}

func TestNormalize_CoercionFailureIsNull(t *testing.T) {
	tbl := NewTable("v_CA16_1")
	tbl.AppendRow(Text("not a number"))
	tbl.AppendRow(Text("12"))
	n := Normalize(tbl)

	assert.True(t, n.Rows[0][0].IsNull())
	f, ok := n.Rows[1][0].Float()
	assert.True(t, ok)
	assert.Equal(t, 12.0, f)
}

func TestNormalize_Idempotent(t *testing.T) {
	tbl, err := ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)

	once := Normalize(tbl)
	twice := Normalize(once)
	assert.True(t, once.Equal(twice))
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	tbl := NewTable("Population")
	tbl.AppendRow(Text("x"))
	_ = Normalize(tbl)

	s, ok := tbl.Rows[0][0].Text()
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestParseJSONRows(t *testing.T) {
	raw := []byte(`[
		{"region": "59933", "name": "Vancouver", "level": "CMA", "pop": 2463431},
		{"region": "35535", "name": "Toronto", "level": "CMA", "pop": 5928040},
		{"region": "0000", "name": null, "level": "C"}
	]`)
	tbl, err := ParseJSONRows(raw, []string{"region", "name", "level", "pop"})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	pop, ok := tbl.Cell(0, "pop").Float()
	assert.True(t, ok)
	assert.Equal(t, 2463431.0, pop)
	assert.True(t, tbl.Cell(2, "name").IsNull())
	assert.True(t, tbl.Cell(2, "pop").IsNull(), "absent key is null")
}

func TestParseJSONRows_Malformed(t *testing.T) {
	_, err := ParseJSONRows([]byte(`{"not": "an array"}`), []string{"region"})
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestCellJSONRoundTrip(t *testing.T) {
	tbl := NewTable("GeoUID", "Population", "Region Name")
	tbl.AppendRow(Text("5915022"), Number(631486), Text("Vancouver"))
	tbl.AppendRow(Text("5915025"), Null(), Text("Burnaby"))

	raw, err := json.Marshal(tbl)
	require.NoError(t, err)

	var decoded Table
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, tbl.Equal(&decoded))
}
