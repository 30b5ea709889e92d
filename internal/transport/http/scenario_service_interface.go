package http

import (
	"context"
	"io"

	"gdxtoolbox/internal/charts"
	"gdxtoolbox/internal/files"
	"gdxtoolbox/internal/services"
	"gdxtoolbox/pkg/contracts/domain"
)

// ScenarioServiceInterface defines the scenario operations the handlers use
type ScenarioServiceInterface interface {
	ListScenarios(ctx context.Context) ([]files.FileInfo, error)
	Tables(ctx context.Context, name string, essentialOnly bool) ([]domain.TableSummary, error)
	Table(ctx context.Context, name, table string, essentialOnly bool) (*domain.Table, error)
	Chart(ctx context.Context, name, chart string, params charts.Params) ([]*domain.Frame, error)
	Commodities(ctx context.Context, name string) ([]string, error)
	ExportWorkbook(ctx context.Context, dst io.Writer, name string, req services.ExportRequest) error
}
