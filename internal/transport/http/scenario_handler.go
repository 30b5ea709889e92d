package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"gdxtoolbox/internal/charts"
	apierrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/exporter"
	appmiddleware "gdxtoolbox/internal/middleware"
	"gdxtoolbox/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ScenarioHandler serves the result archives of the results directory
type ScenarioHandler struct {
	service      ScenarioServiceInterface
	validator    *appmiddleware.ValidationMiddleware
	query        *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// scenarioParam is validated before any handler touches the results directory
type scenarioParam struct {
	Scenario string `json:"scenario" validate:"required,scenario"`
}

// tableParam validates the table path segment
type tableParam struct {
	Table string `json:"table" validate:"required,symbol"`
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(service ScenarioServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ScenarioHandler {
	logger = logger.With(slog.String("component", "scenario_handler"))
	return &ScenarioHandler{
		service:      service,
		validator:    appmiddleware.NewValidationMiddleware(logger),
		query:        appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the scenario routes
func (h *ScenarioHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListScenarios)

	r.Route("/{scenario}", func(r chi.Router) {
		r.Use(h.ScenarioCtx)
		r.Get("/tables", h.ListTables)
		r.Get("/tables/{table}", h.GetTable)
		r.Get("/charts/{chart}", h.GetChart)
		r.Get("/commodities", h.ListCommodities)
		r.Get("/export.xlsx", h.ExportWorkbook)
	})

	return r
}

// ScenarioCtx rejects scenario names that are not plain file names
func (h *ScenarioHandler) ScenarioCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.validator.ValidateStruct(scenarioParam{Scenario: chi.URLParam(r, "scenario")}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.service.ListScenarios(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   scenarios,
		"count":  len(scenarios),
	})
}

// ListTables handles GET /api/v1/scenarios/{scenario}/tables
func (h *ScenarioHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	essential, ok := h.essentialOnly(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "listing tables",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("scenario", scenario),
		slog.Bool("essential_only", essential),
	)

	summaries, err := h.service.Tables(r.Context(), scenario, essential)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"scenario": scenario,
		"data":     summaries,
		"count":    len(summaries),
	})
}

// GetTable handles GET /api/v1/scenarios/{scenario}/tables/{table}. The
// format query parameter selects json (default) or csv.
func (h *ScenarioHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	name := chi.URLParam(r, "table")

	if err := h.validator.ValidateStruct(tableParam{Table: name}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}
	essential, ok := h.essentialOnly(w, r)
	if !ok {
		return
	}

	table, err := h.service.Table(r.Context(), scenario, name, essential)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == "csv" {
		var buf bytes.Buffer
		if err := exporter.WriteTable(&buf, table); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(name+".csv"))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"scenario": scenario,
		"data": map[string]interface{}{
			"name":    table.Name,
			"columns": table.ColumnNames(),
			"rows":    table.Rows(),
		},
		"count": table.Len(),
	})
}

// GetChart handles GET /api/v1/scenarios/{scenario}/charts/{chart}
func (h *ScenarioHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")
	chart := chi.URLParam(r, "chart")

	params, ok := h.chartParams(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "building chart",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("scenario", scenario),
		slog.String("chart", chart),
	)

	frames, err := h.service.Chart(r.Context(), scenario, chart, params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"scenario": scenario,
		"chart":    chart,
		"data":     frames,
		"count":    len(frames),
	})
}

// ExportWorkbook handles GET /api/v1/scenarios/{scenario}/export.xlsx. The
// workbook is built in memory so a failure still yields a problem response.
func (h *ScenarioHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")

	params, ok := h.chartParams(w, r)
	if !ok {
		return
	}
	includeTables, ok := h.query.ValidateBool(w, r, "tables", false)
	if !ok {
		return
	}
	essential, ok := h.essentialOnly(w, r)
	if !ok {
		return
	}

	req := services.ExportRequest{
		Charts:        h.query.List(r, "charts"),
		Params:        params,
		IncludeTables: includeTables,
		EssentialOnly: essential,
	}

	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(r.Context(), &buf, scenario, req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "workbook exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("scenario", scenario),
		slog.Int("bytes", buf.Len()),
	)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(stem(scenario)+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ListCommodities handles GET /api/v1/scenarios/{scenario}/commodities
func (h *ScenarioHandler) ListCommodities(w http.ResponseWriter, r *http.Request) {
	scenario := chi.URLParam(r, "scenario")

	commodities, err := h.service.Commodities(r.Context(), scenario)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"scenario": scenario,
		"data":     commodities,
		"count":    len(commodities),
	})
}

// ChartNames handles GET /api/v1/charts
func (h *ScenarioHandler) ChartNames(w http.ResponseWriter, r *http.Request) {
	names := charts.Names()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   names,
		"count":  len(names),
	})
}

// chartParams reads and validates the chart query parameters
func (h *ScenarioHandler) chartParams(w http.ResponseWriter, r *http.Request) (charts.Params, bool) {
	var (
		p  charts.Params
		ok bool
	)
	if p.Year, ok = h.query.ValidateInt(w, r, "year", 0, 9999, 0); !ok {
		return p, false
	}
	if p.Joules, ok = h.query.ValidateBool(w, r, "joules", false); !ok {
		return p, false
	}
	if p.Stacked, ok = h.query.ValidateBool(w, r, "stacked", false); !ok {
		return p, false
	}
	if p.Cumulative, ok = h.query.ValidateBool(w, r, "cumulative", false); !ok {
		return p, false
	}
	if p.ScaleBy, ok = h.query.ValidateFloat(w, r, "scale_by", 0); !ok {
		return p, false
	}
	p.Unit = r.URL.Query().Get("unit")
	p.Commodity = r.URL.Query().Get("commodity")
	p.Commodities = h.query.List(r, "commodities")

	if err := h.validator.ValidateStruct(p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return p, false
	}
	return p, true
}

// essentialOnly reads the all flag; by default only essential outputs are
// imported
func (h *ScenarioHandler) essentialOnly(w http.ResponseWriter, r *http.Request) (bool, bool) {
	all, ok := h.query.ValidateBool(w, r, "all", false)
	return !all, ok
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func stem(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
