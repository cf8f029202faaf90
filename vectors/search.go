package vectors

import (
	"context"
	"sort"
	"strings"
)

// Relevance weights for search. An exact token hit on the label or details
// dominates, a substring hit counts half as much, and a hit anywhere in the
// ancestor chain contributes a weak signal.
const (
	scoreExactToken    = 3.0
	scoreSubstring     = 1.5
	scoreAncestorMatch = 0.5
)

// Search scans a dataset's vector catalog for query terms and returns
// scored matches, best first. Ties are broken by ascending vector id so
// results are deterministic. A query with no usable terms matches
// nothing and yields an empty result, not an error.
func (ix *Index) Search(ctx context.Context, dataset, query string) ([]Match, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	idx, err := ix.load(ctx, dataset)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, n := range idx.nodes {
		if s := scoreNode(idx, n, tokens); s > 0 {
			matches = append(matches, Match{Node: n, Score: s})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return lessVector(matches[i].Node.Vector, matches[j].Node.Vector)
	})
	return matches, nil
}

func queryTokens(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// scoreNode sums per-token relevance. Each token scores at most once, at
// its strongest tier.
func scoreNode(idx *datasetIndex, n Node, tokens []string) float64 {
	label := strings.ToLower(n.Label)
	details := strings.ToLower(n.Details)
	labelTokens := tokenSet(label)
	detailTokens := tokenSet(details)

	var score float64
	for _, tok := range tokens {
		switch {
		case labelTokens[tok] || detailTokens[tok] || strings.EqualFold(tok, n.Vector):
			score += scoreExactToken
		case strings.Contains(label, tok) || strings.Contains(details, tok):
			score += scoreSubstring
		case ancestorContains(idx, n, tok):
			score += scoreAncestorMatch
		}
	}
	return score
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == ',' || r == ':' || r == '(' || r == ')'
	}) {
		set[strings.ToLower(t)] = true
	}
	return set
}

// ancestorContains walks the parent chain looking for tok in ancestor
// labels. The visited set stops cyclic catalogs from spinning forever.
func ancestorContains(idx *datasetIndex, n Node, tok string) bool {
	visited := map[string]bool{n.Vector: true}
	for n.Parent != "" && !visited[n.Parent] {
		parent, ok := idx.nodes[n.Parent]
		if !ok {
			return false
		}
		visited[parent.Vector] = true
		if strings.Contains(strings.ToLower(parent.Label), tok) {
			return true
		}
		n = parent
	}
	return false
}
