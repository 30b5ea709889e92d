package charts

import (
	"fmt"
	"sort"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// Global warming potentials over 100 years
const (
	GWPCO2 = 1.0
	GWPCH4 = 28.0
	GWPN2O = 265.0
)

// emissionUnits maps a mass unit to its size in megatonnes
var emissionUnits = map[string]struct {
	label string
	scale float64
}{
	"kg": {"kg", 1e-9},
	"t":  {"t", 1e-6},
	"kt": {"kt", 1e-3},
	"mt": {"Mt", 1},
	"gt": {"Gt", 1e3},
	"tt": {"Tt", 1e6},
}

// EmissionUnits returns the accepted units for CO2-equivalent totals
func EmissionUnits() []string {
	out := make([]string, 0, len(emissionUnits))
	for u := range emissionUnits {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// DeltaT returns the global mean temperature change per year
func DeltaT(tables domain.Collection) (*domain.Frame, error) {
	table, err := lookup(tables, "CLIM_DeltaT")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "year", "level")
	if err != nil {
		return nil, err
	}

	g := newGrid()
	for i := 0; i < table.Len(); i++ {
		g.add(cols[0].Text(i), "ΔT", cols[1].Float(i))
	}
	return g.frame(&domain.Frame{
		Name:  "delta_t",
		Title: "Global Mean Temperature Change",
		Unit:  "ΔT (°C)",
		Kind:  domain.ChartLine,
	}, g.sortedIndex(), []string{"ΔT"}, 1), nil
}

// emissionsGrid pivots EmissionAnnual to year by emission type
func emissionsGrid(tables domain.Collection) (*grid, []string, error) {
	table, err := lookup(tables, "EmissionAnnual")
	if err != nil {
		return nil, nil, err
	}
	g, err := pivot(table, "year", "emission", "level", nil)
	if err != nil {
		return nil, nil, err
	}
	return g, g.sortedIndex(), nil
}

// matching returns the series labels containing substr, sorted
func matching(labels []string, substr string) []string {
	var out []string
	for _, l := range labels {
		if strings.Contains(l, substr) {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// addCO2Sum adds a CO2sum series holding the total of every CO2 series
func addCO2Sum(g *grid, index []string) {
	co2 := matching(g.series, "CO2")
	for _, year := range index {
		var total float64
		for _, s := range co2 {
			total += g.get(year, s)
		}
		g.add(year, "CO2sum", total)
	}
}

// Emissions returns three frames: CO2 in Gt per year including the CO2sum
// total, then CH4 and N2O in Mt per year
func Emissions(tables domain.Collection) ([]*domain.Frame, error) {
	g, index, err := emissionsGrid(tables)
	if err != nil {
		return nil, err
	}
	addCO2Sum(g, index)

	var co2 []string
	for _, s := range matching(g.series, "CO2") {
		if s != "CO2sum" {
			co2 = append(co2, s)
		}
	}
	co2 = append(co2, "CO2sum")

	return []*domain.Frame{
		g.frame(&domain.Frame{
			Name:  "emissions_co2",
			Title: "CO2 net emissions",
			Unit:  "Gt CO2 / year",
			Kind:  domain.ChartLine,
		}, index, co2, 1000),
		g.frame(&domain.Frame{
			Name:  "emissions_ch4",
			Title: "CH4 net emissions",
			Unit:  "Mt CH4 / year",
			Kind:  domain.ChartLine,
		}, index, matching(g.series, "CH4"), 1),
		g.frame(&domain.Frame{
			Name:  "emissions_n2o",
			Title: "N2O net emissions",
			Unit:  "Mt N2O / year",
			Kind:  domain.ChartLine,
		}, index, matching(g.series, "N2O"), 1),
	}, nil
}

// TotalNetEmissionsCO2eq weights CO2, CH4 and N2O by their global warming
// potentials and returns the yearly total in unit (kg, t, kt, Mt, Gt or Tt,
// case-insensitive). An empty unit means Gt.
func TotalNetEmissionsCO2eq(tables domain.Collection, unit string) (*domain.Frame, error) {
	if unit == "" {
		unit = "Gt"
	}
	u, ok := emissionUnits[strings.ToLower(unit)]
	if !ok {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("unknown unit %q, expected one of %s", unit, strings.Join(EmissionUnits(), ", ")),
		).WithContext("unit", unit)
	}

	g, index, err := emissionsGrid(tables)
	if err != nil {
		return nil, err
	}
	for _, gas := range []string{"CH4", "N2O"} {
		if !g.hasSeries(gas) {
			return nil, apperrors.NewDataFormatError(
				fmt.Sprintf("EmissionAnnual has no %s emissions", gas), nil,
			).WithContext("table", "EmissionAnnual")
		}
	}
	addCO2Sum(g, index)

	values := make([]float64, len(index))
	for i, year := range index {
		values[i] = (GWPCO2*g.get(year, "CO2sum") +
			GWPCH4*g.get(year, "CH4") +
			GWPN2O*g.get(year, "N2O")) / u.scale
	}

	return &domain.Frame{
		Name:  "net_emissions_co2eq",
		Title: fmt.Sprintf("Total net emissions (%sCO2eq)", u.label),
		Unit:  u.label + " CO2-eq / year",
		Kind:  domain.ChartLine,
		Index: index,
		Series: []domain.Series{{
			Name:   "CO2eq",
			Color:  Color("CO2eq"),
			Values: values,
		}},
	}, nil
}
