package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshkol/cancensus-go/errors"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"id": "5915022", "name": "Vancouver"},
			"geometry": {"type": "Polygon", "coordinates": [[[-123.2, 49.2], [-123.0, 49.2], [-123.0, 49.3], [-123.2, 49.3], [-123.2, 49.2]]]}
		},
		{
			"type": "Feature",
			"properties": {"rgid": "5915025"},
			"geometry": {"type": "Polygon", "coordinates": [[[-123.0, 49.2], [-122.9, 49.2], [-122.9, 49.25], [-123.0, 49.25], [-123.0, 49.2]]]}
		},
		{
			"type": "Feature",
			"properties": {"name": "no id here"},
			"geometry": {"type": "Point", "coordinates": [-123.1, 49.25]}
		},
		{
			"type": "Feature",
			"properties": {"id": "5915043"},
			"geometry": null
		}
	]
}`

func TestParseGeoJSON(t *testing.T) {
	c, err := ParseGeoJSON([]byte(sampleGeoJSON))
	require.NoError(t, err)

	assert.Equal(t, DefaultCRS, c.CRS)
	require.Equal(t, 2, c.Len(), "features without id or geometry are dropped")
	assert.Equal(t, "5915022", c.Features[0].RegionID)
	assert.Equal(t, "5915025", c.Features[1].RegionID, "rgid property recognized")
}

func TestParseGeoJSON_Malformed(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`{"type": "FeatureCollection", "features": "nope"}`))
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestByRegion(t *testing.T) {
	c, err := ParseGeoJSON([]byte(sampleGeoJSON))
	require.NoError(t, err)

	m := c.ByRegion()
	assert.Len(t, m, 2)
	assert.Contains(t, m, "5915022")
	assert.Contains(t, m, "5915025")
	assert.NotNil(t, m["5915022"])
}

func TestFilter(t *testing.T) {
	c, err := ParseGeoJSON([]byte(sampleGeoJSON))
	require.NoError(t, err)

	kept := c.Filter(func(id string) bool { return id == "5915025" })
	require.Equal(t, 1, kept.Len())
	assert.Equal(t, "5915025", kept.Features[0].RegionID)
	assert.Equal(t, 2, c.Len(), "filter does not mutate the source")
}

func TestNilCollection(t *testing.T) {
	var c *Collection
	assert.Zero(t, c.Len())
	assert.Nil(t, c.ByRegion())
	assert.Nil(t, c.Filter(func(string) bool { return true }))
}

func TestCollectionJSONRoundTrip(t *testing.T) {
	c, err := ParseGeoJSON([]byte(sampleGeoJSON))
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded Collection
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, c.CRS, decoded.CRS)
	require.Equal(t, c.Len(), decoded.Len())
	for i := range c.Features {
		assert.Equal(t, c.Features[i].RegionID, decoded.Features[i].RegionID)
		assert.Equal(t, c.Features[i].Geometry.FlatCoords(), decoded.Features[i].Geometry.FlatCoords())
	}
}
