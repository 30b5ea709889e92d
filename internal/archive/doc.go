// Package archive reads model result archives into typed table collections.
//
// Two formats are supported:
//
//  1. GDX files, read through the GAMS gdxdump utility. The symbol list is
//     dumped first, then every symbol is dumped as CSV with all fields.
//  2. XLSX workbooks as produced by gdx2xls or gdxxrw, one sheet per symbol
//     with the header in the first row.
//
// Readers are selected by file extension through a Registry:
//
//	registry := archive.NewRegistry(
//	    archive.NewGDXReader("gdxdump", nil, logger),
//	    archive.NewXLSXReader(logger),
//	)
//	reader, err := registry.ForPath("results/baseline.gdx")
//	tables, err := reader.Read(ctx, "results/baseline.gdx")
//
// Every failure to locate or parse an archive is reported as a READ
// application error.
package archive
