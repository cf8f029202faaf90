package geometry

import (
	"encoding/json"
	"fmt"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dshkol/cancensus-go/errors"
)

// DefaultCRS is the coordinate reference system of census boundary
// payloads; the service serves plain GeoJSON, which is WGS84.
const DefaultCRS = "EPSG:4326"

// regionIDProperties are the feature property names the service has used
// for the region identifier, in lookup order.
var regionIDProperties = []string{"id", "rgid", "GeoUID", "geo_uid"}

// Feature is one region boundary.
type Feature struct {
	RegionID string
	Geometry geom.T
}

// Collection is a set of region boundaries sharing one CRS.
type Collection struct {
	CRS      string
	Features []Feature
}

// rawFeature is the subset of a GeoJSON feature this package reads. The
// geometry stays raw until the feature is known to be usable, so a null
// geometry never fails the whole response.
type rawFeature struct {
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// ParseGeoJSON converts a raw GeoJSON FeatureCollection payload into a
// typed Collection. Features without a recognizable region identifier or
// without geometry are dropped; boundary coverage is best-effort and a
// gap must not fail the whole response.
func ParseGeoJSON(raw []byte) (*Collection, error) {
	var fc rawCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, errors.Parse("geometry", "ParseGeoJSON", "decode feature collection", err)
	}

	out := &Collection{CRS: DefaultCRS}
	for _, f := range fc.Features {
		id := regionID(f)
		if id == "" {
			continue
		}
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		var g geom.T
		if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
			return nil, errors.Parse("geometry", "ParseGeoJSON", "decode geometry for "+id, err)
		}
		out.Features = append(out.Features, Feature{RegionID: id, Geometry: g})
	}
	return out, nil
}

// regionID extracts the region identifier from a feature, preferring
// properties over the feature-level ID.
func regionID(f rawFeature) string {
	for _, key := range regionIDProperties {
		if v, ok := f.Properties[key]; ok {
			if s := stringID(v); s != "" {
				return s
			}
		}
	}
	return stringID(f.ID)
}

func stringID(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	default:
		return ""
	}
}

// ByRegion returns a map from region id to geometry. Duplicate ids keep
// the first feature.
func (c *Collection) ByRegion() map[string]geom.T {
	if c == nil {
		return nil
	}
	m := make(map[string]geom.T, len(c.Features))
	for _, f := range c.Features {
		if _, ok := m[f.RegionID]; !ok {
			m[f.RegionID] = f.Geometry
		}
	}
	return m
}

// Filter returns a copy of the collection containing only the features
// whose region id satisfies keep, preserving order.
func (c *Collection) Filter(keep func(regionID string) bool) *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{CRS: c.CRS}
	for _, f := range c.Features {
		if keep(f.RegionID) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// Len returns the number of features. Safe on a nil collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}

// featureJSON is the persisted form of a Feature.
type featureJSON struct {
	RegionID string          `json:"region_id"`
	Geometry json.RawMessage `json:"geometry"`
}

type collectionJSON struct {
	CRS      string        `json:"crs"`
	Features []featureJSON `json:"features"`
}

// MarshalJSON encodes the collection with geometries as GeoJSON, the form
// the cache store persists.
func (c *Collection) MarshalJSON() ([]byte, error) {
	cj := collectionJSON{CRS: c.CRS, Features: make([]featureJSON, 0, len(c.Features))}
	for _, f := range c.Features {
		g, err := geojson.Marshal(f.Geometry)
		if err != nil {
			return nil, errors.Wrap(err, "geometry", "MarshalJSON", "encode "+f.RegionID)
		}
		cj.Features = append(cj.Features, featureJSON{RegionID: f.RegionID, Geometry: g})
	}
	return json.Marshal(cj)
}

// UnmarshalJSON decodes the persisted form produced by MarshalJSON.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var cj collectionJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	c.CRS = cj.CRS
	c.Features = nil
	for _, fj := range cj.Features {
		var g geom.T
		if err := geojson.Unmarshal(fj.Geometry, &g); err != nil {
			return errors.Wrap(err, "geometry", "UnmarshalJSON", "decode "+fj.RegionID)
		}
		c.Features = append(c.Features, Feature{RegionID: fj.RegionID, Geometry: g})
	}
	return nil
}
