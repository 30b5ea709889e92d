package charts

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// EJToPWh converts exajoules to petawatt-hours
const EJToPWh = 0.27777777777778

// Generators are the electricity generating processes
var Generators = []string{
	"ELEC_Coal", "ELEC_OilL", "ELEC_GasT", "ELEC_BioM", "ELEC_Wste", "ELEC_Fiss",
	"ELEC_Hydr", "ELEC_Wnd1", "ELEC_SPV1", "ELEC_BCCS", "ELEC_CCCS", "ELEC_GCCS",
}

// CumulativeMultipliers are the years represented by each milestone year
// when commodity production is accumulated
var CumulativeMultipliers = []float64{5, 10, 10, 10, 10, 10, 10, 10, 5}

// ElectricityProduction returns generation by source, in EJ per year when
// joules is set and PWh per year otherwise. Each row is rounded to whole
// units of a thousand before summing.
func ElectricityProduction(tables domain.Collection, joules bool) (*domain.Frame, error) {
	table, err := lookup(tables, "OutputAnnualByProcess")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "process", "commodity", "year", "level")
	if err != nil {
		return nil, err
	}

	generators := make(map[string]bool, len(Generators))
	for _, p := range Generators {
		generators[p] = true
	}

	g := newGrid()
	for i := 0; i < table.Len(); i++ {
		if !generators[cols[0].Text(i)] || cols[1].Text(i) != "ELECGen" {
			continue
		}
		g.add(cols[2].Text(i), cols[0].Text(i), math.RoundToEven(cols[3].Float(i)/1000))
	}

	frame := &domain.Frame{
		Name:  "electricity_production",
		Title: "Annual Electricity Generation",
		Unit:  "EJ / year",
		Kind:  domain.ChartStackedArea,
	}
	scale := 1.0
	if !joules {
		frame.Unit = "PWh / year"
		scale = 1 / EJToPWh
	}
	label := func(p string) string { return strings.TrimPrefix(p, "ELEC_") }
	return g.frameAs(frame, g.sortedIndex(), sortLabels(g.series), scale, label), nil
}

// Commodities returns the sorted unique commodities with annual output
func Commodities(tables domain.Collection) ([]string, error) {
	table, err := lookup(tables, "OutputAnnual")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "commodity")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for i := 0; i < table.Len(); i++ {
		c := cols[0].Text(i)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ProductionOptions controls CommodityProduction and CommodityByProcess
type ProductionOptions struct {
	// Stacked draws a stacked area chart instead of lines
	Stacked bool
	// Cumulative accumulates production weighted by CumulativeMultipliers
	Cumulative bool
	// Unit is the axis unit label
	Unit string
	// ScaleBy divides every value; zero means 1
	ScaleBy float64
}

func (o ProductionOptions) scale() (float64, error) {
	switch {
	case o.ScaleBy == 0:
		return 1, nil
	case o.ScaleBy < 0 || math.IsNaN(o.ScaleBy) || math.IsInf(o.ScaleBy, 0):
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("scale_by must be a positive number, got %v", o.ScaleBy))
	}
	return o.ScaleBy, nil
}

func (o ProductionOptions) unitLabel() string {
	unit := o.Unit
	if unit == "" {
		unit = "[unit]"
	}
	return fmt.Sprintf("Production (%s/year)", unit)
}

// CommodityProduction returns yearly production of the given commodities,
// summed over rows and divided by ScaleBy. Every commodity must occur in
// OutputAnnual.
func CommodityProduction(tables domain.Collection, commodities []string, opts ProductionOptions) (*domain.Frame, error) {
	if len(commodities) == 0 {
		return nil, apperrors.NewAppValidationError("at least one commodity is required")
	}
	scale, err := opts.scale()
	if err != nil {
		return nil, err
	}
	table, err := lookup(tables, "OutputAnnual")
	if err != nil {
		return nil, err
	}
	g, err := pivot(table, "year", "commodity", "level", nil)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range commodities {
		if !g.hasSeries(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("commodities %s", strings.Join(missing, ", "))).
			WithContext("commodities", missing)
	}

	index := g.sortedIndex()
	if opts.Cumulative && len(index) != len(CumulativeMultipliers) {
		return nil, apperrors.NewDataFormatError(
			fmt.Sprintf("cumulative production needs %d years, data has %d", len(CumulativeMultipliers), len(index)), nil,
		).WithContext("table", "OutputAnnual")
	}

	frame := g.frame(&domain.Frame{
		Name:  "commodity_production",
		Title: productionTitle(commodities, opts),
		Unit:  opts.unitLabel(),
		Kind:  domain.ChartLine,
	}, index, commodities, scale)
	if opts.Stacked {
		frame.Kind = domain.ChartStackedArea
	}
	if opts.Cumulative {
		for s := range frame.Series {
			var total float64
			for i, v := range frame.Series[s].Values {
				total += v * CumulativeMultipliers[i]
				frame.Series[s].Values[i] = total
			}
		}
	}
	return frame, nil
}

func productionTitle(commodities []string, opts ProductionOptions) string {
	parts := []string{"Production of commodities"}
	if len(commodities) == 1 {
		parts = []string{"Production of " + commodities[0]}
	}
	if opts.Stacked {
		parts = append(parts, "stacked")
	}
	if opts.Cumulative {
		parts = append(parts, "cumulative")
	}
	return strings.Join(parts, " ")
}

// CommodityByProcess returns yearly production of one commodity stacked by
// producing process
func CommodityByProcess(tables domain.Collection, commodity string, opts ProductionOptions) (*domain.Frame, error) {
	if commodity == "" {
		return nil, apperrors.NewAppValidationError("commodity is required")
	}
	scale, err := opts.scale()
	if err != nil {
		return nil, err
	}
	table, err := lookup(tables, "OutputAnnualByProcess")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "commodity")
	if err != nil {
		return nil, err
	}
	col := cols[0]

	g, err := pivot(table, "year", "process", "level", func(i int) bool {
		return col.Text(i) == commodity
	})
	if err != nil {
		return nil, err
	}
	if len(g.series) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("commodity %s", commodity)).
			WithContext("commodity", commodity)
	}

	return g.frame(&domain.Frame{
		Name:  "commodity_by_process",
		Title: commodity + " production by process",
		Unit:  opts.unitLabel(),
		Kind:  domain.ChartStackedArea,
	}, g.sortedIndex(), sortLabels(g.series), scale), nil
}
