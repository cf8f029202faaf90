package vectors

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/frame"
	"github.com/dshkol/cancensus-go/pkg/cache"
)

// CatalogSource supplies the raw vector catalog for a dataset. The census
// client satisfies this interface.
type CatalogSource interface {
	ListVectors(ctx context.Context, dataset string) (*frame.Table, error)
}

// Node is one vector in the hierarchy.
type Node struct {
	Vector      string
	Label       string
	Type        string
	Units       string
	Aggregation string
	Parent      string
	Details     string
}

// Match pairs a node with its search relevance.
type Match struct {
	Node  Node
	Score float64
}

// datasetIndex is the fully built hierarchy for one dataset.
type datasetIndex struct {
	nodes    map[string]Node
	children map[string][]string
}

// Index answers hierarchy and search queries over vector catalogs. Each
// dataset's catalog is parsed once and memoized.
type Index struct {
	src    CatalogSource
	logger *slog.Logger
	memo   *cache.Cache[*datasetIndex]
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// New builds an Index over src.
func New(src CatalogSource, opts ...Option) (*Index, error) {
	if src == nil {
		return nil, errors.InvalidSpec("vectors", "New", "catalog source is nil", nil)
	}
	memo, err := cache.New[*datasetIndex]()
	if err != nil {
		return nil, errors.Wrap(err, "vectors", "New", "build index memo")
	}
	ix := &Index{src: src, logger: slog.Default(), memo: memo}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

func (ix *Index) load(ctx context.Context, dataset string) (*datasetIndex, error) {
	dataset = strings.ToUpper(strings.TrimSpace(dataset))
	return ix.memo.GetOrCompute(dataset, func() (*datasetIndex, error) {
		table, err := ix.src.ListVectors(ctx, dataset)
		if err != nil {
			return nil, err
		}
		idx := buildIndex(table)
		ix.logger.Debug("vector hierarchy built",
			"component", "vectors", "dataset", dataset, "nodes", len(idx.nodes))
		return idx, nil
	})
}

func buildIndex(table *frame.Table) *datasetIndex {
	idx := &datasetIndex{
		nodes:    make(map[string]Node, table.NumRows()),
		children: map[string][]string{},
	}
	col := func(name string) int { return table.ColumnIndex(name) }
	vCol, lCol := col("vector"), col("label")
	tCol, uCol := col("type"), col("units")
	aCol, pCol, dCol := col("add"), col("parent"), col("details")

	cellText := func(row []frame.Cell, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		if row[i].IsNull() {
			return ""
		}
		return row[i].String()
	}
	for _, row := range table.Rows {
		id := cellText(row, vCol)
		if id == "" {
			continue
		}
		n := Node{
			Vector:      id,
			Label:       cellText(row, lCol),
			Type:        cellText(row, tCol),
			Units:       cellText(row, uCol),
			Aggregation: cellText(row, aCol),
			Parent:      cellText(row, pCol),
			Details:     cellText(row, dCol),
		}
		idx.nodes[id] = n
		if n.Parent != "" {
			idx.children[n.Parent] = append(idx.children[n.Parent], id)
		}
	}
	for parent := range idx.children {
		ids := idx.children[parent]
		sort.Slice(ids, func(i, j int) bool { return lessVector(ids[i], ids[j]) })
	}
	return idx
}

// lessVector orders vector ids by their numeric suffix when both have one,
// so v_CA16_2 sorts before v_CA16_10.
func lessVector(a, b string) bool {
	ai, aok := vectorOrdinal(a)
	bi, bok := vectorOrdinal(b)
	if aok && bok && ai != bi {
		return ai < bi
	}
	return a < b
}

func vectorOrdinal(id string) (int, bool) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Get returns a single node by id.
func (ix *Index) Get(ctx context.Context, dataset, id string) (Node, error) {
	idx, err := ix.load(ctx, dataset)
	if err != nil {
		return Node{}, err
	}
	n, ok := idx.nodes[id]
	if !ok {
		return Node{}, errors.NotFound("vectors", "Get",
			fmt.Sprintf("vector %s is not in the %s catalog", id, dataset), nil)
	}
	return n, nil
}

// ParentsOf returns the direct parent of id as a zero-or-one element
// slice. Unknown ids, root vectors, and dangling parent pointers all yield
// an empty result rather than an error.
func (ix *Index) ParentsOf(ctx context.Context, dataset, id string) ([]Node, error) {
	idx, err := ix.load(ctx, dataset)
	if err != nil {
		return nil, err
	}
	n, ok := idx.nodes[id]
	if !ok || n.Parent == "" {
		return nil, nil
	}
	parent, ok := idx.nodes[n.Parent]
	if !ok {
		return nil, nil
	}
	return []Node{parent}, nil
}

// ChildrenOf returns the direct children of id, ordered by vector id.
// Unknown and childless ids yield an empty result.
func (ix *Index) ChildrenOf(ctx context.Context, dataset, id string) ([]Node, error) {
	idx, err := ix.load(ctx, dataset)
	if err != nil {
		return nil, err
	}
	ids := idx.children[id]
	out := make([]Node, 0, len(ids))
	for _, child := range ids {
		out = append(out, idx.nodes[child])
	}
	return out, nil
}
