// Package http implements the HTTP handlers of the gdxtoolbox web service.
// Handlers stay thin: they parse and validate the request, call a service and
// render the result.
//
// # Routes
//
//	GET /api/v1/scenarios                                  result archives
//	GET /api/v1/scenarios/{scenario}/tables                table summaries
//	GET /api/v1/scenarios/{scenario}/tables/{table}        rows, ?format=json|csv
//	GET /api/v1/scenarios/{scenario}/charts/{chart}        chart frames
//	GET /api/v1/scenarios/{scenario}/commodities           commodity names
//	GET /api/v1/scenarios/{scenario}/export.xlsx           workbook download
//	GET /api/v1/charts                                     chart names
//	GET /healthz, /readyz, /livez, /metrics
//
// Scenario routes import only the essential outputs unless ?all=true is
// given. Chart parameters come from the query string (year, unit, joules,
// commodities, commodity, stacked, cumulative, scale_by) and are checked with
// go-playground/validator before the archive is opened.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Resource Not Found",
//	    "status": 404,
//	    "detail": "table LU_Area not found",
//	    "instance": "/api/v1/scenarios/baseline/tables/LU_Area",
//	    "scenario": "baseline"
//	}
//
// # Testing
//
// Handlers depend on ScenarioServiceInterface so tests mock the service with
// testify and drive the chi router through httptest.
package http
