package charts

import (
	"fmt"
	"sort"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

const areaUnit = "mln. km²"

// BiomeOrder is the display order of biomes, wettest tropics first
var BiomeOrder = []string{
	"TropicalHumid", "TropicalDry", "TemperateHumid", "TemperateDry", "Boreal",
	"Tundra", "Semiarid", "Desert", "DesertCold", "Unproductive",
}

// LandUseLabels names the land use codes
var LandUseLabels = map[string]string{
	"crops": "Cropland",
	"pastr": "Pastures",
	"primf": "Primary Forest",
	"secdf": "Secondary Forest",
	"primn": "Primary Non-forest",
	"secdn": "Secondary Non-forest",
	"urban": "Urban",
}

// LivestockLabels names the livestock product codes
var LivestockLabels = map[string]string{
	"LVST_milk":    "Milk",
	"LVST_beef":    "Beef",
	"LVST_eggs":    "Eggs",
	"LVST_pork":    "Pork",
	"LVST_poultry": "Poultry",
	"LVST_shoat":   "Shoat",
}

// clearingPeriods is the number of years each milestone year represents
var clearingPeriods = map[int64]float64{
	2020: 5, 2030: 10, 2040: 10, 2050: 10, 2060: 10, 2070: 10, 2080: 10, 2090: 10, 2100: 5,
}

func labelOr(labels map[string]string) func(string) string {
	return func(key string) string {
		if l, ok := labels[key]; ok {
			return l
		}
		return key
	}
}

// LandUse returns the area by land use type in one year as a pie chart.
// Slices keep the order of the table rows.
func LandUse(tables domain.Collection, year int) (*domain.Frame, error) {
	table, err := lookup(tables, "LU_AreaByUse")
	if err != nil {
		return nil, err
	}
	keep, err := yearFilter(table, year)
	if err != nil {
		return nil, err
	}
	g, err := pivot(table, "landuse", "year", "value", keep)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprint(year)
	frame := &domain.Frame{
		Name:        "land_use",
		Title:       fmt.Sprintf("Land Use in %d", year),
		Unit:        areaUnit,
		Kind:        domain.ChartPie,
		Index:       g.index,
		PointColors: Viridis(len(g.index)),
		Series: []domain.Series{{
			Name:   "value",
			Values: g.column(g.index, key, 1),
		}},
	}
	return frame, nil
}

// SecondaryForest returns secondary forest area in one year with one bar
// per biome, stacked by age class from young to old
func SecondaryForest(tables domain.Collection, year int) (*domain.Frame, error) {
	table, err := lookup(tables, "LU_Area_SecdF")
	if err != nil {
		return nil, err
	}
	keep, err := yearFilter(table, year)
	if err != nil {
		return nil, err
	}
	// transposed: biomes along the axis, ages as series
	g, err := pivot(table, "biome", "age", "level", keep)
	if err != nil {
		return nil, err
	}

	ages := sortLabels(g.series)
	shades := Gradient(forestGreens, max(15, len(ages)))
	frame := &domain.Frame{
		Name:  "secondary_forest",
		Title: fmt.Sprintf("Secondary Forest Distribution in %d", year),
		Unit:  areaUnit,
		Kind:  domain.ChartStackedBar,
		Index: ordered(g.index, BiomeOrder),
	}
	for i, age := range ages {
		frame.Series = append(frame.Series, domain.Series{
			Name:   age,
			Color:  shades[i],
			Values: g.column(frame.Index, age, 1),
		})
	}
	return frame, nil
}

// PrimaryForestClearing returns the cumulative primary forest cleared per
// biome. Each milestone year is weighted by the years it represents.
func PrimaryForestClearing(tables domain.Collection) (*domain.Frame, error) {
	table, err := lookup(tables, "LU_clear_pri")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "year", "biome", "level")
	if err != nil {
		return nil, err
	}

	type entry struct {
		year  int64
		label string
		value float64
	}
	byBiome := make(map[string][]entry)
	var biomes []string
	for i := 0; i < table.Len(); i++ {
		year, ok := cols[0].Int(i)
		period, known := clearingPeriods[year]
		if !ok || !known {
			return nil, apperrors.NewDataFormatError(
				fmt.Sprintf("LU_clear_pri row %d: %s is not a milestone year", i, cols[0].Text(i)), nil,
			).WithContext("table", "LU_clear_pri").WithContext("row", i)
		}
		biome := cols[1].Text(i)
		if _, seen := byBiome[biome]; !seen {
			biomes = append(biomes, biome)
		}
		byBiome[biome] = append(byBiome[biome], entry{year, cols[0].Text(i), cols[2].Float(i) * period})
	}

	g := newGrid()
	for _, biome := range biomes {
		entries := byBiome[biome]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].year < entries[j].year })
		var total float64
		for _, e := range entries {
			total += e.value
			g.add(e.label, biome, total)
		}
	}

	return g.frame(&domain.Frame{
		Name:  "primary_forest_clearing",
		Title: "Cumulative cut-down primary forest (pristine, unmanaged forest)",
		Unit:  areaUnit,
		Kind:  domain.ChartStackedArea,
	}, g.sortedIndex(), ordered(g.series, BiomeOrder), 1), nil
}

// LivestockProduction returns two frames: milk on its own, and the other
// products stacked, since milk is produced at a much higher volume
func LivestockProduction(tables domain.Collection) ([]*domain.Frame, error) {
	table, err := lookup(tables, "LVST_product_output")
	if err != nil {
		return nil, err
	}
	g, err := pivot(table, "year", "lvst_products", "level", nil)
	if err != nil {
		return nil, err
	}
	if len(g.series) == 0 {
		return nil, apperrors.NewDataFormatError("LVST_product_output has no rows", nil).
			WithContext("table", "LVST_product_output")
	}

	index := g.sortedIndex()
	label := labelOr(LivestockLabels)
	var others []string
	for _, p := range sortLabels(g.series) {
		if p != "LVST_milk" {
			others = append(others, p)
		}
	}

	var frames []*domain.Frame
	if g.hasSeries("LVST_milk") {
		frames = append(frames, g.frameAs(&domain.Frame{
			Name:  "livestock_milk",
			Title: "Milk Production",
			Unit:  "Mt / year",
			Kind:  domain.ChartStackedArea,
		}, index, []string{"LVST_milk"}, 1, label))
	}
	if len(others) > 0 {
		frames = append(frames, g.frameAs(&domain.Frame{
			Name:  "livestock_products",
			Title: "Livestock production, stacked",
			Unit:  "Mt / year",
			Kind:  domain.ChartStackedArea,
		}, index, others, 1, label))
	}
	return frames, nil
}
