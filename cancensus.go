// Package cancensus retrieves Canadian census data: tabular measures,
// region boundaries, and the variable catalogs that describe them.
//
// The package is a thin front door. New builds a census.Client wired with
// a resilient HTTP transport and a durable on-disk cache; NewVectorIndex
// layers a hierarchy index over the same client. Typical use:
//
//	cfg := config.Config{APIKey: key, CacheDir: dir}
//	client, err := cancensus.New(cfg)
//	if err != nil {
//		return err
//	}
//	res, err := client.Fetch(ctx, census.RequestSpec{
//		Dataset: "CA16",
//		Regions: map[string][]string{"CMA": {"59933"}},
//		Vectors: []string{"v_CA16_408"},
//		Level:   "CSD",
//	})
//
// Results carry the attribution text that Statistics Canada requires when
// the data is republished.
package cancensus

import (
	"github.com/dshkol/cancensus-go/census"
	"github.com/dshkol/cancensus-go/config"
	"github.com/dshkol/cancensus-go/vectors"
)

// New builds a census client from cfg. See census.New for options.
func New(cfg config.Config, opts ...census.Option) (*census.Client, error) {
	return census.New(cfg, opts...)
}

// NewVectorIndex builds a vector hierarchy index backed by client's
// catalog operations.
func NewVectorIndex(client *census.Client, opts ...vectors.Option) (*vectors.Index, error) {
	return vectors.New(client, opts...)
}
