// Package dataprocessing turns the rows of the published poll spreadsheet
// into per-pollster time series and computes the dashboard views on top of
// them.
//
// # Pipeline
//
// The pipeline has three stages:
//
// 1. Normalize: coerces a raw row into a typed observation or rejects it
// 2. Indexer: folds observations into one SourceSeries per pollster
// 3. Views: Ranking, Evolution and Comparison read the finished dataset
//
// Typical use:
//
//	dataset, accepted := dataprocessing.Ingest(rows)
//	ranking := dataprocessing.Ranking(dataset, "DATUM")
//	chart := dataprocessing.Evolution(dataset, "DATUM", []string{"Keiko Fujimori"})
//	table := dataprocessing.Comparison(dataset, dataprocessing.DefaultSelection(dataset, 5))
//
// # Periods
//
// Period labels are indexed in the order each pollster first reports them.
// Nothing is parsed or sorted, so the input is expected to be chronological
// already. Two pollsters may give the same label different indices.
//
// # Absent values
//
// A nil entry in a candidate's value array means the pollster has no
// result for that candidate in that period. Views never turn it into zero.
//
// # Malformed rows
//
// Rows with blank key fields or a non-numeric value are dropped without
// an error or a log line.
package dataprocessing
