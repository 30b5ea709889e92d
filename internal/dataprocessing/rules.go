package dataprocessing

import "regexp"

// Rules holds the fixed cleaning configuration of the pipeline. DefaultRules
// returns a fresh copy on every call, so callers may adjust their copy without
// affecting anyone else.
type Rules struct {
	// JunkKeyPatterns match equation and raw-input tables by name
	JunkKeyPatterns []*regexp.Regexp
	// JunkKeys are internal set and parameter names removed by exact match
	JunkKeys []string
	// JunkColumns are solver metadata columns dropped from every table
	JunkColumns []string
	// ColumnRenames maps lowercased abbreviated dimension names to canonical ones
	ColumnRenames map[string]string
	// YearColumn is coerced to integer after renaming
	YearColumn string
	// AgeTables carry an age-class column labelled with AgePrefix
	AgeTables []string
	AgeColumn string
	AgePrefix string
}

// DefaultRules returns the rules used for model result archives
func DefaultRules() Rules {
	return Rules{
		JunkKeyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^EQ_*`),
			regexp.MustCompile(`^data_*`),
		},
		JunkKeys: []string{
			"Objective", "CLIM_TOCEAN", "CLIM_tocean0", "path", "tstep", "timestep",
			"weekk", "hourr", "hour_last", "SpecifiedDemandProfile", "DaysInDayType",
			"Conversionls", "Conversionlh", "Conversionld", "CommodityHasEqualityBalance",
			"YearSplit", "t", "tt", "TIMESLICE", "l", "SEASON", "ls", "lsls", "DAYTYPE",
			"ld", "ldld", "DAILYTIMEBRACKET", "lh", "lhlh", "p", "c", "e", "m", "s",
			"r", "rr", "box", "boxx", "boxxx", "i", "z",
		},
		JunkColumns: []string{"Marginal", "Lower", "Upper", "Scale"},
		ColumnRenames: map[string]string{
			"t":    "year",
			"time": "year",
			"r":    "region",
			"pool": "biome",
			"use":  "landuse",
		},
		YearColumn: "year",
		AgeTables:  []string{"LU_Area_SecdF", "LU_clear_sec"},
		AgeColumn:  "age",
		AgePrefix:  "age",
	}
}

// IsJunkKey reports whether a table name is removed by the junk-key filter
func (r Rules) IsJunkKey(name string) bool {
	for _, p := range r.JunkKeyPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	for _, k := range r.JunkKeys {
		if k == name {
			return true
		}
	}
	return false
}
