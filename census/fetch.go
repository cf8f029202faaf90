package census

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dshkol/cancensus-go/cachestore"
	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/frame"
	"github.com/dshkol/cancensus-go/geometry"
)

const (
	endpointData     = "data.csv"
	endpointGeometry = "geo.geojson"

	// regionIDColumn is the tabular column carrying the region identifier
	// that geometry features join on.
	regionIDColumn = "GeoUID"
)

// Result is the assembled outcome of one Fetch.
type Result struct {
	// Table holds the normalized tabular data.
	Table *frame.Table
	// Geometry holds region boundaries when the spec requested them,
	// filtered to regions present in Table. Nil otherwise.
	Geometry *geometry.Collection
	// FromCache reports whether the result was served from the local store
	// without touching the network.
	FromCache bool
	// Attribution is the text to reproduce when publishing this data. It is
	// resolved from the cached dataset catalog when available, otherwise
	// the Statistics Canada boilerplate.
	Attribution string
}

// FetchOption adjusts a single Fetch call.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	skipCache bool
}

// SkipCache bypasses the cache read for this call. The refreshed result is
// still written back, replacing any stale entry.
func SkipCache() FetchOption {
	return func(o *fetchOptions) { o.skipCache = true }
}

// Fetch retrieves the data described by spec. The flow is cache-first:
// a stored entry with the same canonical key is returned without any
// network traffic. On a miss it downloads the tabular data, normalizes it,
// optionally downloads and joins geometry, persists the assembled payload,
// and returns it.
func (c *Client) Fetch(ctx context.Context, spec RequestSpec, opts ...FetchOption) (*Result, error) {
	var fo fetchOptions
	for _, opt := range opts {
		opt(&fo)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec = spec.normalized()

	start := time.Now()
	requestID := uuid.NewString()
	emit := func(stage Stage, rows int, fromCache bool) {
		c.observer.Progress(ProgressEvent{
			RequestID: requestID,
			Dataset:   spec.Dataset,
			Stage:     stage,
			Rows:      rows,
			FromCache: fromCache,
			Elapsed:   time.Since(start),
		})
	}

	key := spec.CacheKey()
	if !fo.skipCache {
		if p, ok, err := c.store.Get(key); err != nil {
			c.logger.Warn("cache read failed, falling through to network",
				"component", "census", "key", key, "error", err)
		} else if ok {
			emit(StageCacheCheck, p.Table.NumRows(), true)
			emit(StageDone, p.Table.NumRows(), true)
			c.logger.Debug("request served from cache",
				"component", "census", "dataset", spec.Dataset, "rows", p.Table.NumRows())
			return &Result{
				Table:       p.Table,
				Geometry:    p.Geometry,
				FromCache:   true,
				Attribution: c.offlineAttribution(spec.Dataset),
			}, nil
		}
	}
	emit(StageCacheCheck, 0, false)

	fields, err := formFields(spec)
	if err != nil {
		return nil, err
	}
	raw, err := c.tp.PostForm(ctx, endpointData, fields)
	if err != nil {
		return nil, err
	}
	table, err := frame.ParseCSV(raw)
	if err != nil {
		return nil, err
	}
	emit(StageFetchData, table.NumRows(), false)

	table = frame.Normalize(table)
	emit(StageNormalize, table.NumRows(), false)

	var coll *geometry.Collection
	if spec.Geometry {
		geoRaw, err := c.tp.PostForm(ctx, endpointGeometry, fields)
		if err != nil {
			return nil, err
		}
		coll, err = geometry.ParseGeoJSON(geoRaw)
		if err != nil {
			return nil, err
		}
		emit(StageFetchGeometry, coll.Len(), false)

		coll = joinGeometry(table, coll)
		emit(StageJoin, coll.Len(), false)
	}

	payload := &cachestore.Payload{Dataset: spec.Dataset, Table: table, Geometry: coll}
	if err := c.store.Put(key, payload); err != nil {
		// A full disk must not turn a successful download into a failure.
		c.logger.Warn("cache write failed",
			"component", "census", "key", key, "error", err)
	}
	emit(StageCacheWrite, table.NumRows(), false)
	emit(StageDone, table.NumRows(), false)
	c.logger.Info("request assembled",
		"component", "census", "dataset", spec.Dataset, "level", spec.Level,
		"rows", table.NumRows(), "geometry", spec.Geometry, "elapsed", time.Since(start))
	return &Result{Table: table, Geometry: coll, Attribution: c.offlineAttribution(spec.Dataset)}, nil
}

// formFields serializes the spec the way the service expects: region and
// vector selectors travel as JSON-encoded form fields.
func formFields(spec RequestSpec) (map[string]string, error) {
	regions, err := json.Marshal(spec.Regions)
	if err != nil {
		return nil, errors.InvalidSpec("census", "Fetch", "region selector not serializable", err)
	}
	fields := map[string]string{
		"dataset":       spec.Dataset,
		"level":         spec.Level,
		"regions":       string(regions),
		"geo_hierarchy": "true",
	}
	if len(spec.Vectors) > 0 {
		vectors, err := json.Marshal(spec.Vectors)
		if err != nil {
			return nil, errors.InvalidSpec("census", "Fetch", "vector list not serializable", err)
		}
		fields["vectors"] = string(vectors)
	}
	if spec.Labels == LabelsShort {
		fields["labels"] = LabelsShort
	}
	return fields, nil
}

// joinGeometry keeps the tabular table authoritative: every table row
// survives whether or not a boundary arrived for it, while geometry
// features with no matching table row are dropped.
func joinGeometry(table *frame.Table, coll *geometry.Collection) *geometry.Collection {
	ids := make(map[string]bool, table.NumRows())
	col := table.ColumnIndex(regionIDColumn)
	if col < 0 {
		return coll.Filter(func(string) bool { return false })
	}
	for _, row := range table.Rows {
		if col < len(row) {
			ids[row[col].String()] = true
		}
	}
	return coll.Filter(func(regionID string) bool { return ids[regionID] })
}
