package dataprocessing

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// RemoveEmpty deletes every table without rows and returns the removed names
func RemoveEmpty(tables domain.Collection) []string {
	var removed []string
	for _, name := range tables.Names() {
		if tables[name].Empty() {
			tables.Delete(name)
			removed = append(removed, name)
		}
	}
	return removed
}

// RemoveJunkKeys deletes equation tables, raw-input tables and the fixed
// denylist. Names absent from the collection are ignored.
func RemoveJunkKeys(tables domain.Collection, rules Rules) []string {
	var removed []string

	for _, pattern := range rules.JunkKeyPatterns {
		for _, name := range tables.Names() {
			if pattern.MatchString(name) && tables.Delete(name) {
				removed = append(removed, name)
			}
		}
	}

	for _, name := range rules.JunkKeys {
		if tables.Delete(name) {
			removed = append(removed, name)
		}
	}

	sort.Strings(removed)
	return removed
}

// RemoveJunkColumns drops the metadata columns that are present in each table
// and returns how many columns were dropped in total
func RemoveJunkColumns(tables domain.Collection, rules Rules) int {
	dropped := 0
	for _, table := range tables {
		dropped += table.DropColumns(rules.JunkColumns...)
	}
	return dropped
}

// LoadEssentialOutputs reads the allow-list of table names, one per line.
// Surrounding whitespace is trimmed and blank lines are ignored.
func LoadEssentialOutputs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot open essential outputs list", err).
			WithContext("path", path)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewConfigError("cannot read essential outputs list", err).
			WithContext("path", path)
	}
	return names, nil
}

// FilterEssentialOutputs deletes every table whose name is not allowed and
// returns the removed names
func FilterEssentialOutputs(tables domain.Collection, allowed []string) []string {
	keep := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		keep[name] = struct{}{}
	}

	var removed []string
	for _, name := range tables.Names() {
		if _, ok := keep[name]; !ok {
			tables.Delete(name)
			removed = append(removed, name)
		}
	}
	return removed
}

// requireTable returns the named table or a DATA_FORMAT error
func requireTable(tables domain.Collection, name string) (*domain.Table, error) {
	table, ok := tables.Get(name)
	if !ok {
		return nil, apperrors.NewDataFormatError(fmt.Sprintf("required table %s is missing", name), nil).
			WithContext("table", name)
	}
	return table, nil
}
