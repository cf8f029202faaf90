package census

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshkol/cancensus-go/errors"
)

// datasetPattern matches CensusMapper dataset identifiers: CA16, CA21, ...
var datasetPattern = regexp.MustCompile(`^CA\d{2}$`)

// Levels recognized by the census service. EA exists only for 1996 and DB
// for 2001 onward; the service rejects mismatches, so the client does not
// second-guess dataset/level pairing.
var validLevels = map[string]bool{
	"Regions": true,
	"PR":      true,
	"CMA":     true,
	"CD":      true,
	"CSD":     true,
	"CT":      true,
	"DA":      true,
	"EA":      true,
	"DB":      true,
}

// Label styles for vector columns.
const (
	LabelsDetailed = "detailed"
	LabelsShort    = "short"
)

// RequestSpec is the immutable description of one logical data request.
// It fully determines a canonical cache key: two specs that differ only in
// the insertion order of regions or vectors are the same request.
type RequestSpec struct {
	// Dataset is a CensusMapper dataset identifier, e.g. "CA16".
	Dataset string
	// Regions maps region type to one or more region codes.
	Regions map[string][]string
	// Vectors lists requested vector identifiers; may be empty for a
	// geography-only request.
	Vectors []string
	// Level is the aggregation level to retrieve. Empty means "Regions".
	Level string
	// Geometry requests region boundaries alongside the tabular data.
	Geometry bool
	// Labels selects the vector column label style. Empty means detailed.
	Labels string
}

// normalized returns a copy with case and defaults applied. Validation and
// key derivation both operate on the normalized form.
func (s RequestSpec) normalized() RequestSpec {
	s.Dataset = strings.ToUpper(strings.TrimSpace(s.Dataset))
	s.Level = strings.TrimSpace(s.Level)
	if s.Level == "" {
		s.Level = "Regions"
	}
	if s.Labels == "" {
		s.Labels = LabelsDetailed
	}
	return s
}

// Validate checks the spec before any network call.
func (s RequestSpec) Validate() error {
	n := s.normalized()
	if !datasetPattern.MatchString(n.Dataset) {
		return errors.InvalidSpec("census", "Validate",
			fmt.Sprintf("dataset %q does not match CAnn", s.Dataset), errors.ErrUnknownDataset)
	}
	if !validLevels[n.Level] {
		return errors.InvalidSpec("census", "Validate",
			fmt.Sprintf("level %q is not a census aggregation level", s.Level), errors.ErrUnknownLevel)
	}
	if len(n.Regions) == 0 {
		return errors.InvalidSpec("census", "Validate", "region selector is empty", errors.ErrEmptyRegions)
	}
	for typ, codes := range n.Regions {
		if strings.TrimSpace(typ) == "" {
			return errors.InvalidSpec("census", "Validate", "region type is empty", errors.ErrEmptyRegions)
		}
		nonEmpty := 0
		for _, c := range codes {
			if strings.TrimSpace(c) != "" {
				nonEmpty++
			}
		}
		if nonEmpty == 0 {
			return errors.InvalidSpec("census", "Validate",
				fmt.Sprintf("region type %q has no codes", typ), errors.ErrEmptyRegions)
		}
	}
	if n.Labels != LabelsDetailed && n.Labels != LabelsShort {
		return errors.InvalidSpec("census", "Validate",
			fmt.Sprintf("labels %q must be %q or %q", s.Labels, LabelsDetailed, LabelsShort), nil)
	}
	return nil
}

// CacheKey derives the canonical cache key. Region types, region codes
// within a type, and vector ids are sorted before hashing, so callers can
// build the collections in any order without being penalized with a cache
// miss.
func (s RequestSpec) CacheKey() string {
	n := s.normalized()

	types := make([]string, 0, len(n.Regions))
	for typ := range n.Regions {
		types = append(types, typ)
	}
	sort.Strings(types)

	var b strings.Builder
	fmt.Fprintf(&b, "dataset=%s|level=%s|geometry=%t|labels=%s|regions=", n.Dataset, n.Level, n.Geometry, n.Labels)
	for i, typ := range types {
		if i > 0 {
			b.WriteByte(';')
		}
		codes := append([]string(nil), n.Regions[typ]...)
		for j := range codes {
			codes[j] = strings.TrimSpace(codes[j])
		}
		sort.Strings(codes)
		b.WriteString(typ)
		b.WriteByte(':')
		b.WriteString(strings.Join(codes, ","))
	}
	vectors := append([]string(nil), n.Vectors...)
	sort.Strings(vectors)
	b.WriteString("|vectors=")
	b.WriteString(strings.Join(vectors, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
