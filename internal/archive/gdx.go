package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// Runner executes an external command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements Runner. Standard error is folded into the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Symbol is one entry of a GDX symbol table
type Symbol struct {
	Name string
	Dim  int
	Type string
	Text string
}

// dumpable reports whether gdxdump can export the symbol as CSV
func (s Symbol) dumpable() bool {
	switch strings.ToLower(s.Type) {
	case "set", "par", "var", "equ":
		return true
	default:
		return false
	}
}

// GDXReader reads GDX archives through the gdxdump utility
type GDXReader struct {
	binary string
	runner Runner
	logger *slog.Logger
}

// NewGDXReader creates a GDX reader. A nil runner uses ExecRunner.
func NewGDXReader(binary string, runner Runner, logger *slog.Logger) *GDXReader {
	if binary == "" {
		binary = "gdxdump"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &GDXReader{
		binary: binary,
		runner: runner,
		logger: logger.With(slog.String("component", "gdx_reader")),
	}
}

// Extension implements Reader
func (r *GDXReader) Extension() string {
	return "gdx"
}

// Read dumps every symbol of the archive into a table
func (r *GDXReader) Read(ctx context.Context, path string) (domain.Collection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewReadError("cannot open archive", err).WithContext("path", path)
	}

	start := time.Now()
	r.logger.InfoContext(ctx, "Trying to read archive", slog.String("path", path))

	symbols, err := r.Symbols(ctx, path)
	if err != nil {
		return nil, err
	}

	tables := make(domain.Collection, len(symbols))
	for _, sym := range symbols {
		if !sym.dumpable() {
			r.logger.DebugContext(ctx, "skipping symbol",
				slog.String("symbol", sym.Name),
				slog.String("type", sym.Type))
			continue
		}

		table, err := r.dumpSymbol(ctx, path, sym.Name)
		if err != nil {
			return nil, apperrors.NewReadError(fmt.Sprintf("cannot dump symbol %s", sym.Name), err).
				WithContext("path", path).
				WithContext("symbol", sym.Name)
		}
		tables[sym.Name] = table
	}

	r.logger.InfoContext(ctx, "Archive read",
		slog.String("path", path),
		slog.Int("symbols", len(symbols)),
		slog.Int("tables", len(tables)),
		slog.Duration("duration", time.Since(start)))

	return tables, nil
}

// Symbols lists the symbols stored in the archive
func (r *GDXReader) Symbols(ctx context.Context, path string) ([]Symbol, error) {
	out, err := r.runner.Run(ctx, r.binary, path, "Symbols")
	if err != nil {
		return nil, apperrors.NewReadError("cannot list archive symbols", err).WithContext("path", path)
	}

	symbols, err := parseSymbols(bytes.NewReader(out))
	if err != nil {
		return nil, apperrors.NewReadError("malformed symbol listing", err).WithContext("path", path)
	}
	return symbols, nil
}

func (r *GDXReader) dumpSymbol(ctx context.Context, path, name string) (*domain.Table, error) {
	out, err := r.runner.Run(ctx, r.binary, path, "Symb="+name, "Format=csv", "CSVAllFields")
	if err != nil {
		return nil, err
	}
	return parseSymbolCSV(name, bytes.NewReader(out))
}

// parseSymbols parses the "Symbols" listing of gdxdump:
//
//	  Symbol        Dim Type  Explanatory text
//	1 EmissionAnnual  2  Var  annual emissions
//
// Lines that do not start with a symbol number are ignored.
func parseSymbols(r io.Reader) ([]Symbol, error) {
	var symbols []Symbol
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		dim, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("symbol %s: invalid dimension %q", fields[1], fields[2])
		}
		symbols = append(symbols, Symbol{
			Name: fields[1],
			Dim:  dim,
			Type: fields[3],
			Text: strings.Join(fields[4:], " "),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols found")
	}
	return symbols, nil
}

// parseSymbolCSV parses one symbol dumped with Format=csv. A dump without any
// lines yields an empty table.
func parseSymbolCSV(name string, r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", name, err)
	}
	if len(records) == 0 {
		return &domain.Table{Name: name}, nil
	}
	return buildTable(name, records[0], records[1:])
}
