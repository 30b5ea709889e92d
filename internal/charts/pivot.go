package charts

import (
	"fmt"
	"sort"
	"strconv"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// grid sums values by index label and series label. Cells never written
// read as zero.
type grid struct {
	index  []string
	series []string
	idxPos map[string]int
	serPos map[string]int
	cells  map[[2]int]float64
}

func newGrid() *grid {
	return &grid{
		idxPos: make(map[string]int),
		serPos: make(map[string]int),
		cells:  make(map[[2]int]float64),
	}
}

func (g *grid) add(index, series string, v float64) {
	i, ok := g.idxPos[index]
	if !ok {
		i = len(g.index)
		g.idxPos[index] = i
		g.index = append(g.index, index)
	}
	s, ok := g.serPos[series]
	if !ok {
		s = len(g.series)
		g.serPos[series] = s
		g.series = append(g.series, series)
	}
	g.cells[[2]int{i, s}] += v
}

func (g *grid) get(index, series string) float64 {
	i, ok := g.idxPos[index]
	if !ok {
		return 0
	}
	s, ok := g.serPos[series]
	if !ok {
		return 0
	}
	return g.cells[[2]int{i, s}]
}

func (g *grid) hasSeries(series string) bool {
	_, ok := g.serPos[series]
	return ok
}

// sortedIndex returns the index labels, numerically when all are integers
func (g *grid) sortedIndex() []string {
	return sortLabels(g.index)
}

// column returns the values of one series along index
func (g *grid) column(index []string, series string, scale float64) []float64 {
	out := make([]float64, len(index))
	for i, label := range index {
		out[i] = g.get(label, series) / scale
	}
	return out
}

// frame builds a frame with one series per label, colored by Color
func (g *grid) frame(f *domain.Frame, index, series []string, scale float64) *domain.Frame {
	return g.frameAs(f, index, series, scale, nil)
}

// frameAs is frame with display names produced by label. Colors are looked
// up by display name first and by series key second.
func (g *grid) frameAs(f *domain.Frame, index, series []string, scale float64, label func(string) string) *domain.Frame {
	f.Index = index
	f.Series = make([]domain.Series, 0, len(series))
	for _, key := range series {
		name := key
		if label != nil {
			name = label(key)
		}
		color := Color(name)
		if color == "" {
			color = Color(key)
		}
		f.Series = append(f.Series, domain.Series{
			Name:   name,
			Color:  color,
			Values: g.column(index, key, scale),
		})
	}
	return f
}

// sortLabels sorts a copy of labels, numerically when every label is an
// integer and lexically otherwise
func sortLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	nums := make(map[string]int64, len(out))
	for _, l := range out {
		n, err := strconv.ParseInt(l, 10, 64)
		if err != nil {
			sort.Strings(out)
			return out
		}
		nums[l] = n
	}
	sort.SliceStable(out, func(i, j int) bool { return nums[out[i]] < nums[out[j]] })
	return out
}

// ordered returns the labels of order that are present, followed by any
// remaining present labels sorted
func ordered(present []string, order []string) []string {
	have := make(map[string]bool, len(present))
	for _, p := range present {
		have[p] = true
	}
	out := make([]string, 0, len(present))
	used := make(map[string]bool, len(order))
	for _, o := range order {
		if have[o] && !used[o] {
			out = append(out, o)
			used[o] = true
		}
	}
	var rest []string
	for _, p := range present {
		if !used[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// lookup returns a named table or NOT_FOUND
func lookup(tables domain.Collection, name string) (*domain.Table, error) {
	table, ok := tables.Get(name)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %s", name)).
			WithContext("table", name)
	}
	return table, nil
}

// columns returns the named columns of a table or a DATA_FORMAT error
func columns(table *domain.Table, names ...string) ([]*domain.Column, error) {
	out := make([]*domain.Column, len(names))
	for i, name := range names {
		col := table.Column(name)
		if col == nil {
			return nil, apperrors.NewDataFormatError(
				fmt.Sprintf("table %s has no %s column", table.Name, name), nil,
			).WithContext("table", table.Name)
		}
		out[i] = col
	}
	return out, nil
}

// pivot sums valueCol by indexCol and seriesCol over the rows keep accepts.
// A nil keep accepts every row.
func pivot(table *domain.Table, indexCol, seriesCol, valueCol string, keep func(i int) bool) (*grid, error) {
	cols, err := columns(table, indexCol, seriesCol, valueCol)
	if err != nil {
		return nil, err
	}
	g := newGrid()
	for i := 0; i < table.Len(); i++ {
		if keep != nil && !keep(i) {
			continue
		}
		g.add(cols[0].Text(i), cols[1].Text(i), cols[2].Float(i))
	}
	return g, nil
}

// yearFilter returns a row predicate matching one year, or NOT_FOUND when no
// row carries that year
func yearFilter(table *domain.Table, year int) (func(i int) bool, error) {
	cols, err := columns(table, "year")
	if err != nil {
		return nil, err
	}
	col := cols[0]
	match := func(i int) bool {
		y, ok := col.Int(i)
		return ok && y == int64(year)
	}
	for i := 0; i < table.Len(); i++ {
		if match(i) {
			return match, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("year %d in table %s", year, table.Name)).
		WithContext("table", table.Name).
		WithContext("year", year)
}
