// Package services implements the business logic between the transports
// (HTTP handlers and the CLI) and the import pipeline.
//
// # Available Services
//
//   - ScenarioService: lists result archives, imports them, builds charts
//     and exports workbooks or CSV files
//   - HealthService: liveness, readiness and version information
//
// ScenarioService imports the archive on every call. Requests never share a
// table collection, so handlers may run concurrently without locking.
//
// # Error Handling
//
// Services return *errors.AppError values from the internal/errors package.
// Handlers pass them to the error handler, which maps the error type to an
// RFC 7807 problem:
//
//   - NOT_FOUND for unknown scenarios, tables and charts
//   - VALIDATION for bad scenario names and chart parameters
//   - READ and DATA_FORMAT for archives the pipeline cannot use
//
// # Testing
//
// The importer is an interface so tests can mock it:
//
//	importer := &MockImporter{}
//	importer.On("Import", mock.Anything, "baseline.gdx", dir, true).Return(tables, nil)
//	service := NewScenarioService(discovery, importer, csv, workbook, logger)
package services
