// Package exporter writes cleaned tables and chart frames to CSV files and
// Excel workbooks.
//
// CSVWriter resolves relative paths inside the reports directory and writes
// a UTF-8 BOM so Excel recognizes the encoding. StreamWriter writes large
// tables row by row. WriteTable and WriteFrame stream to any io.Writer, which
// the HTTP handlers use for downloads.
//
// WorkbookWriter puts every chart frame on its own sheet next to a native
// Excel chart of the same kind, followed by one sheet per table.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	err := writer.ExportTable("EmissionAnnual.csv", tables["EmissionAnnual"])
//
//	wb := exporter.NewWorkbookWriter(logger)
//	err = wb.Save(paths.ReportPath("run.xlsx"), tables, frames)
package exporter
