package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/shared/testutil"
	"gdxtoolbox/pkg/contracts/domain"
)

func oneRow(t *testing.T, name string, header ...string) *domain.Table {
	t.Helper()
	row := make([]any, len(header))
	for i := range row {
		row[i] = "x"
	}
	return testutil.TableFromRows(t, name, header, row)
}

func TestRemoveEmpty(t *testing.T) {
	tables := domain.Collection{
		"Full":  oneRow(t, "Full", "a"),
		"Empty": testutil.TableFromRows(t, "Empty", []string{"a"}),
		"NoCol": &domain.Table{Name: "NoCol"},
	}

	removed := RemoveEmpty(tables)

	assert.Equal(t, []string{"Empty", "NoCol"}, removed)
	assert.Equal(t, []string{"Full"}, tables.Names())
}

func TestRemoveJunkKeys(t *testing.T) {
	rules := DefaultRules()
	tables := domain.Collection{}
	for _, name := range []string{
		"EQ_Balance", "EQ", "data_input", "datax", "Objective", "t", "tt", "z",
		"EmissionAnnual", "Data_upper", "LU_AreaByUse",
	} {
		tables[name] = oneRow(t, name, "a")
	}

	removed := RemoveJunkKeys(tables, rules)

	assert.Equal(t, []string{"EQ", "EQ_Balance", "Objective", "data_input", "datax", "t", "tt", "z"}, removed)
	assert.Equal(t, []string{"Data_upper", "EmissionAnnual", "LU_AreaByUse"}, tables.Names())

	for _, name := range tables.Names() {
		assert.False(t, rules.IsJunkKey(name), name)
	}
}

func TestRemoveJunkKeys_EveryDenylistedName(t *testing.T) {
	rules := DefaultRules()
	tables := domain.Collection{"EmissionAnnual": oneRow(t, "EmissionAnnual", "a")}
	for _, name := range rules.JunkKeys {
		tables[name] = oneRow(t, name, "a")
	}

	removed := RemoveJunkKeys(tables, rules)

	assert.Len(t, removed, len(rules.JunkKeys))
	assert.Equal(t, []string{"EmissionAnnual"}, tables.Names())
	for _, name := range rules.JunkKeys {
		assert.False(t, tables.Has(name), name)
	}
}

func TestFilters_Idempotent(t *testing.T) {
	rules := DefaultRules()
	seed := func() domain.Collection {
		return domain.Collection{
			"EmissionAnnual": oneRow(t, "EmissionAnnual", "t", "Level", "Marginal", "Scale"),
			"EQ_Balance":     oneRow(t, "EQ_Balance", "Level", "Lower"),
			"Objective":      oneRow(t, "Objective", "Level"),
			"Empty":          testutil.TableFromRows(t, "Empty", []string{"a"}),
			"LU_AreaByUse":   oneRow(t, "LU_AreaByUse", "use", "Upper"),
		}
	}

	tests := []struct {
		name  string
		apply func(domain.Collection) int
	}{
		{"remove empty", func(c domain.Collection) int { return len(RemoveEmpty(c)) }},
		{"remove junk keys", func(c domain.Collection) int { return len(RemoveJunkKeys(c, rules)) }},
		{"remove junk columns", func(c domain.Collection) int { return RemoveJunkColumns(c, rules) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := seed()
			twice := seed()

			require.Positive(t, tt.apply(once))
			tt.apply(twice)
			assert.Zero(t, tt.apply(twice))

			assert.Equal(t, once, twice)
		})
	}
}

func TestRemoveJunkKeys_AbsentNamesIgnored(t *testing.T) {
	tables := domain.Collection{"EmissionAnnual": oneRow(t, "EmissionAnnual", "a")}
	assert.Empty(t, RemoveJunkKeys(tables, DefaultRules()))
	assert.Len(t, tables, 1)
}

func TestRemoveJunkColumns(t *testing.T) {
	tables := domain.Collection{
		"Var":   oneRow(t, "Var", "t", "Level", "Marginal", "Lower", "Upper", "Scale"),
		"Par":   oneRow(t, "Par", "t", "Value"),
		"Mixed": oneRow(t, "Mixed", "Upper", "use"),
	}

	dropped := RemoveJunkColumns(tables, DefaultRules())

	assert.Equal(t, 5, dropped)
	assert.Equal(t, []string{"t", "Level"}, tables["Var"].ColumnNames())
	assert.Equal(t, []string{"t", "Value"}, tables["Par"].ColumnNames())
	assert.Equal(t, []string{"use"}, tables["Mixed"].ColumnNames())
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essential_outputs.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadEssentialOutputs(t *testing.T) {
	path := writeList(t, "EmissionAnnual\n\n  LU_AreaByUse  \r\n\t\nCLIM_DeltaT")

	names, err := LoadEssentialOutputs(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"EmissionAnnual", "LU_AreaByUse", "CLIM_DeltaT"}, names)
}

func TestLoadEssentialOutputs_Missing(t *testing.T) {
	_, err := LoadEssentialOutputs(filepath.Join(t.TempDir(), "nope.txt"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestFilterEssentialOutputs(t *testing.T) {
	tables := domain.Collection{
		"EmissionAnnual": oneRow(t, "EmissionAnnual", "a"),
		"LU_AreaByUse":   oneRow(t, "LU_AreaByUse", "a"),
		"Scratch":        oneRow(t, "Scratch", "a"),
	}

	removed := FilterEssentialOutputs(tables, []string{"EmissionAnnual", "LU_AreaByUse", "NotInArchive"})

	assert.Equal(t, []string{"Scratch"}, removed)
	assert.Equal(t, []string{"EmissionAnnual", "LU_AreaByUse"}, tables.Names())
}

func TestFilterEssentialOutputs_EmptyList(t *testing.T) {
	tables := domain.Collection{"EmissionAnnual": oneRow(t, "EmissionAnnual", "a")}
	FilterEssentialOutputs(tables, nil)
	assert.Empty(t, tables)
}
