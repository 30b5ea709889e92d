// Package shared provides common utilities and test helpers used across the
// gdxtoolbox codebase.
//
// # Structure
//
//   - testutil: slog capture handlers, table fixtures and a stub archive reader
//
// # Usage Guidelines
//
// This package should only contain test utilities used by multiple packages
// and generic helpers with no domain logic. It must not import internal
// packages that themselves use testutil in their tests, which is why the stub
// reader satisfies the archive reader contract by method set only.
//
// Example usage:
//
//	func TestCharts(t *testing.T) {
//	    tables := testutil.ScenarioTables(t)
//	    frame, err := charts.DeltaT(tables)
//	    require.NoError(t, err)
//	    assert.Len(t, frame.Index, len(testutil.ModelYears))
//	}
package shared
