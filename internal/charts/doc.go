// Package charts turns a cleaned table collection into chart-ready frames.
//
// Each builder reads one or more known result tables, pivots them to an
// index of years (or land uses, or biomes) by a set of named series, and
// applies the unit conversions of its chart. Frames carry colors for every
// series with an assigned color, so the workbook exporter and API clients
// render the same palette.
//
// A missing table or an unknown year is a NOT_FOUND error. A table lacking a
// required column is a DATA_FORMAT error, and invalid arguments such as an
// unknown unit are VALIDATION errors.
package charts
