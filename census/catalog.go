package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dshkol/cancensus-go/cachestore"
	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/frame"
)

// defaultAttribution is the fallback when a dataset carries no attribution
// text of its own.
const defaultAttribution = "Source: Statistics Canada, Census Profile. " +
	"Reproduced and distributed on an 'as is' basis with the permission " +
	"of Statistics Canada."

var (
	datasetColumns = []string{"dataset", "description", "geo_dataset", "attribution"}
	regionColumns  = []string{"region", "name", "level", "pop", "municipal_status", "CMA_UID", "CD_UID"}
)

// ListDatasets returns the catalog of available datasets as a table with
// columns dataset, description, geo_dataset, attribution. Results are held
// in memory for the life of the client and persisted to the store.
func (c *Client) ListDatasets(ctx context.Context) (*frame.Table, error) {
	return c.catalogTable(ctx, "catalog_datasets", func(ctx context.Context) (*frame.Table, error) {
		raw, err := c.tp.Execute(ctx, http.MethodGet, "list_datasets", url.Values{"format": {"json"}})
		if err != nil {
			return nil, err
		}
		rows, err := unwrapRows(raw, "datasets")
		if err != nil {
			return nil, errors.Parse("census", "ListDatasets", "decode dataset catalog", err)
		}
		return frame.ParseJSONRows(rows, datasetColumns)
	})
}

// DatasetAttribution returns the attribution text callers must reproduce
// when publishing data from dataset.
func (c *Client) DatasetAttribution(ctx context.Context, dataset string) (string, error) {
	dataset = strings.ToUpper(strings.TrimSpace(dataset))
	if !datasetPattern.MatchString(dataset) {
		return "", errors.InvalidSpec("census", "DatasetAttribution",
			fmt.Sprintf("dataset %q does not match CAnn", dataset), errors.ErrUnknownDataset)
	}
	table, err := c.ListDatasets(ctx)
	if err != nil {
		return "", err
	}
	text, ok := attributionFromTable(table, dataset)
	if !ok {
		return "", errors.NotFound("census", "DatasetAttribution",
			fmt.Sprintf("dataset %s is not in the catalog", dataset), errors.ErrUnknownDataset)
	}
	return text, nil
}

// attributionFromTable scans a dataset catalog for the attribution text of
// dataset. A present row with blank attribution yields the default text.
func attributionFromTable(table *frame.Table, dataset string) (string, bool) {
	idCol := table.ColumnIndex("dataset")
	attrCol := table.ColumnIndex("attribution")
	for _, row := range table.Rows {
		if idCol < 0 || idCol >= len(row) {
			continue
		}
		if !strings.EqualFold(row[idCol].String(), dataset) {
			continue
		}
		if attrCol >= 0 && attrCol < len(row) && !row[attrCol].IsNull() {
			if text := strings.TrimSpace(row[attrCol].String()); text != "" {
				return text, true
			}
		}
		return defaultAttribution, true
	}
	return "", false
}

// offlineAttribution resolves attribution text for Fetch results without
// touching the network: only the memo and the store are consulted, with the
// default boilerplate as the fallback.
func (c *Client) offlineAttribution(dataset string) string {
	table, ok := c.catalog.Get("catalog_datasets")
	if !ok {
		p, found, err := c.store.Get("catalog_datasets")
		if err != nil || !found {
			return defaultAttribution
		}
		table = p.Table
	}
	if text, found := attributionFromTable(table, dataset); found {
		return text
	}
	return defaultAttribution
}

// ListRegions returns the region catalog for dataset: region, name, level,
// pop, municipal_status, CMA_UID, CD_UID. Population is normalized to a
// numeric column.
func (c *Client) ListRegions(ctx context.Context, dataset string) (*frame.Table, error) {
	dataset = strings.ToUpper(strings.TrimSpace(dataset))
	if !datasetPattern.MatchString(dataset) {
		return nil, errors.InvalidSpec("census", "ListRegions",
			fmt.Sprintf("dataset %q does not match CAnn", dataset), errors.ErrUnknownDataset)
	}
	return c.catalogTable(ctx, "catalog_regions_"+dataset, func(ctx context.Context) (*frame.Table, error) {
		raw, err := c.tp.Execute(ctx, http.MethodGet, "list_regions",
			url.Values{"dataset": {dataset}, "format": {"json"}})
		if err != nil {
			return nil, err
		}
		rows, err := unwrapRows(raw, "regions")
		if err != nil {
			return nil, errors.Parse("census", "ListRegions", "decode region catalog", err)
		}
		table, err := frame.ParseJSONRows(rows, regionColumns)
		if err != nil {
			return nil, err
		}
		return frame.Normalize(table), nil
	})
}

// SearchRegions filters the region catalog by a case-insensitive substring
// match on region names. A non-empty level restricts matches to that
// aggregation level.
func (c *Client) SearchRegions(ctx context.Context, dataset, term, level string) (*frame.Table, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.InvalidSpec("census", "SearchRegions", "search term is empty", nil)
	}
	regions, err := c.ListRegions(ctx, dataset)
	if err != nil {
		return nil, err
	}
	nameCol := regions.ColumnIndex("name")
	levelCol := regions.ColumnIndex("level")
	needle := strings.ToLower(term)

	out := frame.NewTable(regions.Columns...)
	for _, row := range regions.Rows {
		if nameCol < 0 || nameCol >= len(row) {
			continue
		}
		if !strings.Contains(strings.ToLower(row[nameCol].String()), needle) {
			continue
		}
		if level != "" && (levelCol < 0 || levelCol >= len(row) || row[levelCol].String() != level) {
			continue
		}
		out.AppendRow(row...)
	}
	return out, nil
}

// ListVectors returns the vector catalog for dataset. The service ships it
// as CSV with columns vector, label, type, units, add, parent, details.
func (c *Client) ListVectors(ctx context.Context, dataset string) (*frame.Table, error) {
	dataset = strings.ToUpper(strings.TrimSpace(dataset))
	if !datasetPattern.MatchString(dataset) {
		return nil, errors.InvalidSpec("census", "ListVectors",
			fmt.Sprintf("dataset %q does not match CAnn", dataset), errors.ErrUnknownDataset)
	}
	return c.catalogTable(ctx, "catalog_vectors_"+dataset, func(ctx context.Context) (*frame.Table, error) {
		raw, err := c.tp.Execute(ctx, http.MethodGet, "list_vectors", url.Values{"dataset": {dataset}})
		if err != nil {
			return nil, err
		}
		return frame.ParseCSV(raw)
	})
}

// catalogTable serves a catalog request through two cache tiers: the
// in-process memo first, then the persistent store, then the network.
func (c *Client) catalogTable(ctx context.Context, key string, fetch func(context.Context) (*frame.Table, error)) (*frame.Table, error) {
	if t, ok := c.catalog.Get(key); ok {
		return t, nil
	}
	if p, ok, err := c.store.Get(key); err != nil {
		c.logger.Warn("catalog cache read failed",
			"component", "census", "key", key, "error", err)
	} else if ok {
		c.catalog.Set(key, p.Table)
		return p.Table, nil
	}
	table, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog.Set(key, table)
	if err := c.store.Put(key, &cachestore.Payload{Table: table}); err != nil {
		c.logger.Warn("catalog cache write failed",
			"component", "census", "key", key, "error", err)
	}
	return table, nil
}

// unwrapRows accepts either a bare JSON array or an object wrapping the
// array under field, and returns the array bytes.
func unwrapRows(raw []byte, field string) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return raw, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	rows, ok := envelope[field]
	if !ok {
		return nil, fmt.Errorf("response has no %q field", field)
	}
	return rows, nil
}
