package archive

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// Reader loads every symbol of an archive into a fresh collection
type Reader interface {
	// Extension returns the file extension handled, without the dot
	Extension() string
	Read(ctx context.Context, path string) (domain.Collection, error)
}

// Registry selects a Reader by file extension
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates a registry holding the given readers
func NewRegistry(readers ...Reader) *Registry {
	r := &Registry{readers: make(map[string]Reader)}
	for _, reader := range readers {
		r.Register(reader)
	}
	return r
}

// Register adds or replaces the reader for its extension
func (r *Registry) Register(reader Reader) {
	r.readers[strings.ToLower(reader.Extension())] = reader
}

// Supports reports whether ext (with or without the dot) has a reader
func (r *Registry) Supports(ext string) bool {
	_, ok := r.readers[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// Extensions returns the registered extensions sorted alphabetically
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForPath returns the reader matching the extension of path
func (r *Registry) ForPath(path string) (Reader, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	reader, ok := r.readers[ext]
	if !ok {
		return nil, apperrors.NewReadError(
			fmt.Sprintf("no reader for archive %q (supported: %s)", filepath.Base(path), strings.Join(r.Extensions(), ", ")),
			nil,
		).WithContext("path", path)
	}
	return reader, nil
}

// valueColumns are the record fields that carry numbers. Every other column
// is a set domain and is kept as text.
var valueColumns = map[string]bool{
	"level":    true,
	"marginal": true,
	"lower":    true,
	"upper":    true,
	"scale":    true,
	"value":    true,
	"val":      true,
}

// IsValueColumn reports whether a header names a numeric record field
func IsValueColumn(header string) bool {
	return valueColumns[strings.ToLower(strings.TrimSpace(header))]
}

// ParseValue parses a numeric cell, mapping the GAMS special values
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "eps":
		return 0, nil
	case "+inf", "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "na", "undf", "":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// normalizeHeaders trims headers, renames the gdxdump "Val" field to "Value"
// and makes duplicate or blank names unique.
func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, "val") {
			h = "Value"
		}
		if h == "" || h == "*" {
			h = fmt.Sprintf("Dim%d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}

// buildTable turns a header and string records into a typed table. Short
// records are padded with empty cells.
func buildTable(name string, headers []string, records [][]string) (*domain.Table, error) {
	headers = normalizeHeaders(headers)
	columns := make([]*domain.Column, len(headers))

	for j, h := range headers {
		if IsValueColumn(h) {
			values := make([]float64, len(records))
			for i, rec := range records {
				cell := ""
				if j < len(rec) {
					cell = rec[j]
				}
				v, err := ParseValue(cell)
				if err != nil {
					return nil, fmt.Errorf("symbol %s row %d column %s: %w", name, i+1, h, err)
				}
				values[i] = v
			}
			columns[j] = domain.NewFloatColumn(h, values)
			continue
		}

		values := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				values[i] = strings.TrimSpace(rec[j])
			}
		}
		columns[j] = domain.NewStringColumn(h, values)
	}

	return domain.NewTable(name, columns...)
}
