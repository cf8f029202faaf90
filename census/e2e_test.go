package census

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshkol/cancensus-go/config"
	"github.com/dshkol/cancensus-go/pkg/retry"
	"github.com/dshkol/cancensus-go/testutil"
)

// e2eClient wires a real transport and a real store against the fake
// service, the same composition production callers get from New.
func e2eClient(t *testing.T, fake *testutil.FakeService) *Client {
	t.Helper()
	cfg := config.Config{
		APIKey:    "e2e-key",
		BaseURL:   fake.URL(),
		CacheDir:  t.TempDir(),
		RateLimit: 1000,
		RateBurst: 1000,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestEndToEnd_FetchWithGeometry(t *testing.T) {
	fake := testutil.NewFakeService()
	defer fake.Close()
	fake.Respond(endpointData, testutil.SampleCSV)
	fake.Respond(endpointGeometry, testutil.SampleGeoJSON)

	c := e2eClient(t, fake)
	spec := basicSpec()
	spec.Geometry = true

	res, err := c.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.NumRows())
	require.NotNil(t, res.Geometry)
	assert.Equal(t, 2, res.Geometry.Len())

	// The credential travels as a form field, never handled by callers.
	reqs := fake.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "e2e-key", reqs[0].Form["api_key"])
	assert.Equal(t, "CA16", reqs[0].Form["dataset"])

	// Identical request again: served from disk, no new traffic.
	again, err := c.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.Equal(t, 1, fake.Count(endpointData))
	assert.Equal(t, 1, fake.Count(endpointGeometry))
}

func TestEndToEnd_TransientOutageRecovered(t *testing.T) {
	fake := testutil.NewFakeService()
	defer fake.Close()
	fake.Script(endpointData, &testutil.Script{
		Statuses: []int{503, 503, 200},
		Body:     testutil.SampleCSV,
	})

	c := e2eClient(t, fake)
	res, err := c.Fetch(context.Background(), basicSpec())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.NumRows())
	assert.Equal(t, 3, fake.Count(endpointData))
}

func TestEndToEnd_CatalogThroughRealTransport(t *testing.T) {
	fake := testutil.NewFakeService()
	defer fake.Close()
	fake.Respond("list_regions", testutil.SampleRegionsJSON)

	c := e2eClient(t, fake)
	found, err := c.SearchRegions(context.Background(), "CA16", "vancouver", "CSD")
	require.NoError(t, err)
	require.Equal(t, 1, found.NumRows())

	reqs := fake.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "e2e-key", reqs[0].Query.Get("api_key"))
	assert.Equal(t, "CA16", reqs[0].Query.Get("dataset"))
}
