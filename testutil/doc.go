// Package testutil provides shared fixtures and a scripted fake census
// service for integration tests.
//
// # Core Components
//
// FakeService - httptest-backed census API double:
//   - Scripted responses per endpoint, with optional status sequences
//     (e.g. two 503s then a 200) for retry tests
//   - Records every request, form fields included, for verification
//   - No network access required
//
// Fixture Data:
//   - SampleCSV: tabular payload with NA sentinels and comma grouping
//   - SampleGeoJSON: boundary FeatureCollection keyed by region id
//   - SampleDatasetsJSON, SampleRegionsJSON: catalog payloads
//   - SampleVectorsCSV: a small vector hierarchy
//
// All fixtures use real CensusMapper response shapes so tests exercise the
// same parsing paths as production traffic.
package testutil
