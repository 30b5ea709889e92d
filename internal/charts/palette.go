package charts

import (
	"fmt"
	"strings"
)

// namedColors maps the color names used by the series palettes to hex
var namedColors = map[string]string{
	"tab:blue":        "#1f77b4",
	"tab:orange":      "#ff7f0e",
	"tab:green":       "#2ca02c",
	"tab:red":         "#d62728",
	"tab:purple":      "#9467bd",
	"tab:brown":       "#8c564b",
	"tab:pink":        "#e377c2",
	"tab:gray":        "#7f7f7f",
	"tab:olive":       "#bcbd22",
	"tab:cyan":        "#17becf",
	"aquamarine":      "#7fffd4",
	"black":           "#000000",
	"chocolate":       "#d2691e",
	"coral":           "#ff7f50",
	"darkgray":        "#a9a9a9",
	"darkgreen":       "#006400",
	"darkolivegreen":  "#556b2f",
	"darkorchid":      "#9932cc",
	"darksalmon":      "#e9967a",
	"darkseagreen":    "#8fbc8f",
	"dimgray":         "#696969",
	"dodgerblue":      "#1e90ff",
	"forestgreen":     "#228b22",
	"gold":            "#ffd700",
	"gray":            "#808080",
	"greenyellow":     "#adff2f",
	"khaki":           "#f0e68c",
	"lightcyan":       "#e0ffff",
	"lightgray":       "#d3d3d3",
	"lightgreen":      "#90ee90",
	"lightpink":       "#ffb6c1",
	"lightskyblue":    "#87cefa",
	"lightsteelblue":  "#b0c4de",
	"lime":            "#00ff00",
	"limegreen":       "#32cd32",
	"maroon":          "#800000",
	"mediumvioletred": "#c71585",
	"navy":            "#000080",
	"olive":           "#808000",
	"olivedrab":       "#6b8e23",
	"palegreen":       "#98fb98",
	"peachpuff":       "#ffdab9",
	"peru":            "#cd853f",
	"pink":            "#ffc0cb",
	"rosybrown":       "#bc8f8f",
	"royalblue":       "#4169e1",
	"saddlebrown":     "#8b4513",
	"seashell":        "#fff5ee",
	"sienna":          "#a0522d",
	"silver":          "#c0c0c0",
	"slategray":       "#708090",
	"springgreen":     "#00ff7f",
	"steelblue":       "#4682b4",
	"teal":            "#008080",
	"yellow":          "#ffff00",
}

// seriesColors assigns a color name or hex value to known series labels
var seriesColors = map[string]string{
	// biomes
	"Boreal":         "darkolivegreen",
	"Desert":         "peru",
	"DesertCold":     "lightsteelblue",
	"Semiarid":       "sienna",
	"TemperateDry":   "lime",
	"TemperateHumid": "limegreen",
	"TropicalDry":    "forestgreen",
	"TropicalHumid":  "darkgreen",
	"Tundra":         "darkseagreen",
	"Unproductive":   "gray",

	// land use
	"crops": "gold",
	"pastr": "khaki",
	"primf": "darkgreen",
	"secdf": "limegreen",
	"primn": "peru",
	"secdn": "sienna",
	"urban": "dimgray",

	// livestock products
	"LVST_beef":    "#c20000",
	"LVST_poultry": "#ffc257",
	"LVST_pork":    "pink",
	"LVST_eggs":    "#fffc4f",
	"LVST_milk":    "#4feaff",
	"LVST_shoat":   "#de6f00",

	// passenger transport
	"BusDiesel":           "saddlebrown",
	"BusBEV":              "sienna",
	"CarGasoline":         "maroon",
	"CarDiesel":           "darksalmon",
	"CarHEV":              "coral",
	"CarPHEV":             "lightpink",
	"CarBEV":              "mediumvioletred",
	"RailDiesel":          "dimgray",
	"RailElectric":        "lightgray",
	"AviationJetfuel_Int": "navy",
	"AviationJetfuel_Dom": "royalblue",
	"AviationBiofuel_Int": "teal",
	"AviationBiofuel_Dom": "aquamarine",

	// freight transport
	"ShipsHFO":    "black",
	"ShipsMDO":    "slategray",
	"ShipsLNG":    "steelblue",
	"ShipsBio":    "olivedrab",
	"TruckDiesel": "chocolate",
	"TruckBEV":    "darkorchid",
	"VanDiesel":   "peachpuff",
	"VanBEV":      "lightskyblue",

	// electricity generators
	"ELEC_Coal": "black",
	"ELEC_OilL": "maroon",
	"ELEC_GasT": "tab:gray",
	"ELEC_BioM": "olivedrab",
	"ELEC_Wste": "rosybrown",
	"ELEC_Fiss": "darkorchid",
	"ELEC_Hydr": "dodgerblue",
	"ELEC_Wnd1": "lightskyblue",
	"ELEC_SPV1": "gold",
	"ELEC_BCCS": "palegreen",
	"ELEC_CCCS": "dimgray",
	"ELEC_GCCS": "silver",

	// emissions
	"CO2_FFI": "tab:gray",
	"CO2_LU":  "tab:green",
	"CO2sum":  "black",
	"CH4":     "tab:orange",
	"N2O":     "tab:purple",
	"CO2eq":   "black",
}

// processColors colors processes by the four letter sector prefix of their name
var processColors = map[string]string{
	"XTRC": "saddlebrown",
	"REFN": "tab:brown",
	"ELEC": "gold",
	"TRAN": "royalblue",
	"RESI": "tab:orange",
	"COMM": "tab:pink",
	"INDU": "slategray",
	"AGRI": "tab:green",
	"LAND": "forestgreen",
	"LVST": "tab:red",
	"BIOM": "olivedrab",
	"HYDG": "tab:cyan",
	"MATR": "tab:olive",
}

// Viridis returns n colors sampled evenly from the viridis color map, from
// dark purple to yellow. Sizes without a fixed table are interpolated.
func Viridis(n int) []string {
	if colors, ok := viridis[n]; ok {
		return append([]string(nil), colors...)
	}
	return Gradient(viridisAnchors, n)
}

var viridis = map[int][]string{
	2: {"#440154", "#fde725"},
	3: {"#440154", "#21918c", "#fde725"},
	4: {"#440154", "#31688e", "#35b779", "#fde725"},
	7: {"#440154", "#443983", "#31688e", "#21918c", "#35b779", "#90d743", "#fde725"},
	8: {"#440154", "#46327e", "#365c8d", "#277f8e", "#1fa187", "#4ac16d", "#a0da39", "#fde725"},
	9: {"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c", "#28ae80", "#5ec962", "#addc30", "#fde725"},
}

var viridisAnchors = viridis[9]

// forestGreens is the light to dark palette used for forest age classes
var forestGreens = []string{"#eaf6e0", "#c2e6b4", "#9ad78a", "#71c85f", "#4fb844", "#2d9e2d", "#1f7a1f"}

// Color returns the hex color for a series label, or "" when the label has
// no assigned color. Process names fall back to their sector color.
func Color(label string) string {
	if name, ok := seriesColors[label]; ok {
		return hex(name)
	}
	if len(label) >= 4 {
		if name, ok := processColors[label[:4]]; ok {
			return hex(name)
		}
	}
	return ""
}

// hex resolves a color name to its hex value; hex input passes through
func hex(name string) string {
	if strings.HasPrefix(name, "#") {
		return strings.ToLower(name)
	}
	return namedColors[name]
}

// Gradient interpolates n colors linearly through the anchor colors
func Gradient(anchors []string, n int) []string {
	if n <= 0 || len(anchors) == 0 {
		return nil
	}
	if n == 1 || len(anchors) == 1 {
		out := make([]string, n)
		for i := range out {
			out[i] = anchors[0]
		}
		return out
	}

	rgb := make([][3]float64, len(anchors))
	for i, a := range anchors {
		rgb[i] = parseHex(a)
	}

	out := make([]string, n)
	segments := float64(len(anchors) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * segments
		lo := int(pos)
		if lo >= len(anchors)-1 {
			lo = len(anchors) - 2
		}
		frac := pos - float64(lo)
		var c [3]float64
		for k := range c {
			c[k] = rgb[lo][k] + (rgb[lo+1][k]-rgb[lo][k])*frac
		}
		out[i] = fmt.Sprintf("#%02x%02x%02x", int(c[0]+0.5), int(c[1]+0.5), int(c[2]+0.5))
	}
	return out
}

func parseHex(s string) [3]float64 {
	var r, g, b int
	_, _ = fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b)
	return [3]float64{float64(r), float64(g), float64(b)}
}
