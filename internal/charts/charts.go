package charts

import (
	"fmt"
	"sort"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// Chart names accepted by Build
const (
	ChartDeltaT                = "delta_t"
	ChartEmissions             = "emissions"
	ChartNetEmissionsCO2eq     = "net_emissions_co2eq"
	ChartLandUse               = "land_use"
	ChartSecondaryForest       = "secondary_forest"
	ChartPrimaryForestClearing = "primary_forest_clearing"
	ChartLivestockProduction   = "livestock_production"
	ChartPassengerTransport    = "passenger_transport"
	ChartFreightTransport      = "freight_transport"
	ChartElectricityProduction = "electricity_production"
	ChartCommodityProduction   = "commodity_production"
	ChartCommodityByProcess    = "commodity_by_process"
)

// Params carries the arguments of the charts that take any
type Params struct {
	Year        int      `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2200"`
	Unit        string   `json:"unit,omitempty" validate:"omitempty,max=16"`
	Joules      bool     `json:"joules,omitempty"`
	Commodities []string `json:"commodities,omitempty" validate:"omitempty,dive,required"`
	Commodity   string   `json:"commodity,omitempty"`
	Stacked     bool     `json:"stacked,omitempty"`
	Cumulative  bool     `json:"cumulative,omitempty"`
	ScaleBy     float64  `json:"scale_by,omitempty" validate:"omitempty,gt=0"`
}

func (p Params) production() ProductionOptions {
	return ProductionOptions{Stacked: p.Stacked, Cumulative: p.Cumulative, Unit: p.Unit, ScaleBy: p.ScaleBy}
}

type builder func(tables domain.Collection, p Params) ([]*domain.Frame, error)

func single(f func(domain.Collection, Params) (*domain.Frame, error)) builder {
	return func(tables domain.Collection, p Params) ([]*domain.Frame, error) {
		frame, err := f(tables, p)
		if err != nil {
			return nil, err
		}
		return []*domain.Frame{frame}, nil
	}
}

func requireYear(p Params) error {
	if p.Year == 0 {
		return apperrors.NewAppValidationError("year is required")
	}
	return nil
}

var builders = map[string]builder{
	ChartDeltaT: single(func(t domain.Collection, _ Params) (*domain.Frame, error) {
		return DeltaT(t)
	}),
	ChartEmissions: func(t domain.Collection, _ Params) ([]*domain.Frame, error) {
		return Emissions(t)
	},
	ChartNetEmissionsCO2eq: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		return TotalNetEmissionsCO2eq(t, p.Unit)
	}),
	ChartLandUse: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		if err := requireYear(p); err != nil {
			return nil, err
		}
		return LandUse(t, p.Year)
	}),
	ChartSecondaryForest: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		if err := requireYear(p); err != nil {
			return nil, err
		}
		return SecondaryForest(t, p.Year)
	}),
	ChartPrimaryForestClearing: single(func(t domain.Collection, _ Params) (*domain.Frame, error) {
		return PrimaryForestClearing(t)
	}),
	ChartLivestockProduction: func(t domain.Collection, _ Params) ([]*domain.Frame, error) {
		return LivestockProduction(t)
	},
	ChartPassengerTransport: single(func(t domain.Collection, _ Params) (*domain.Frame, error) {
		return PassengerTransport(t)
	}),
	ChartFreightTransport: single(func(t domain.Collection, _ Params) (*domain.Frame, error) {
		return FreightTransport(t)
	}),
	ChartElectricityProduction: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		return ElectricityProduction(t, p.Joules)
	}),
	ChartCommodityProduction: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		return CommodityProduction(t, p.Commodities, p.production())
	}),
	ChartCommodityByProcess: single(func(t domain.Collection, p Params) (*domain.Frame, error) {
		return CommodityByProcess(t, p.Commodity, p.production())
	}),
}

// Names returns the chart names accepted by Build, sorted
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build builds the named chart from a cleaned collection
func Build(tables domain.Collection, name string, p Params) ([]*domain.Frame, error) {
	b, ok := builders[name]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chart %s", name)).
			WithContext("available", strings.Join(Names(), ", "))
	}
	return b(tables, p)
}
