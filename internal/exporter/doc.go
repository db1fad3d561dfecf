// Package exporter renders dashboard views as downloadable tables.
//
// A view is first laid out as a Table (RankingTable, ComparisonTable) and
// then written as CSV or as an Excel workbook:
//
//	t := exporter.ComparisonTable(sources, rows)
//	err := exporter.Write(w, exporter.FormatXLSX, t)
//
// CSV output starts with a UTF-8 BOM for Excel. Values are written with one
// decimal place and missing values as "—".
package exporter
