package testutil

// SampleCSV is a tabular payload in the service's data.csv shape. It mixes
// clean numbers, comma-grouped numbers, and NA sentinels so normalization
// paths are exercised end to end.
const SampleCSV = `GeoUID,Type,Region Name,Population,Dwellings,Households,v_CA16_408: Occupied private dwellings
5915022,CSD,Vancouver,"631,486",283916,283916,283916
5915025,CSD,Burnaby,232755,x,98354,98354
5915004,CSD,Surrey,517887,185671,F,...
`

// SampleGeoJSON is a boundary payload in the service's geo.geojson shape.
// Region 5915004 is deliberately absent and region 9999999 deliberately
// extra, so join tests can assert left-outer semantics.
const SampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"id": "5915022"},
     "geometry": {"type": "Polygon", "coordinates": [[[-123.2, 49.2], [-123.0, 49.2], [-123.0, 49.3], [-123.2, 49.3], [-123.2, 49.2]]]}},
    {"type": "Feature", "properties": {"id": "5915025"},
     "geometry": {"type": "Point", "coordinates": [-122.9, 49.2]}},
    {"type": "Feature", "properties": {"id": "9999999"},
     "geometry": {"type": "Point", "coordinates": [0, 0]}}
  ]
}`

// SampleDatasetsJSON is a list_datasets payload. CA21 has a blank
// attribution so fallback handling can be tested.
const SampleDatasetsJSON = `{"datasets": [
  {"dataset": "CA16", "description": "2016 Census", "geo_dataset": "CA16", "attribution": "StatCan 2016 Census"},
  {"dataset": "CA21", "description": "2021 Census", "geo_dataset": "CA21", "attribution": ""}
]}`

// SampleRegionsJSON is a list_regions payload spanning three levels.
const SampleRegionsJSON = `{"regions": [
  {"region": "59", "name": "British Columbia", "level": "PR", "pop": 4648055, "municipal_status": null, "CMA_UID": null, "CD_UID": null},
  {"region": "5915022", "name": "Vancouver", "level": "CSD", "pop": 631486, "municipal_status": "CY", "CMA_UID": "59933", "CD_UID": "5915"},
  {"region": "59933", "name": "Vancouver", "level": "CMA", "pop": 2463431, "municipal_status": null, "CMA_UID": null, "CD_UID": null}
]}`

// SampleVectorsCSV is a list_vectors payload forming a small hierarchy:
// two roots, nested age brackets under the first.
const SampleVectorsCSV = `vector,label,type,units,add,parent,details
v_CA16_1,Age,Total,Number,additive,,Total; Age
v_CA16_2,0 to 14 years,Total,Number,additive,v_CA16_1,Total; Age; 0 to 14 years
v_CA16_10,65 years and over,Total,Number,additive,v_CA16_1,Total; Age; 65 years and over
v_CA16_3,0 to 4 years,Total,Number,additive,v_CA16_2,Total; Age; 0 to 14 years; 0 to 4 years
v_CA16_401,Population,Total,Number,additive,,Population counts
v_CA16_408,Occupied private dwellings,Total,Number,additive,v_CA16_401,Occupied private dwellings
`
