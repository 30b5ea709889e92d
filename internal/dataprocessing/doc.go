// Package dataprocessing imports model result archives and cleans them into
// a collection of tables ready for charting.
//
// # Pipeline
//
// Import runs the following stages in a fixed order:
//
//  1. Read the archive through the reader registered for its extension.
//  2. Remove tables without rows.
//  3. Remove equation tables, raw-input tables and internal index sets.
//  4. Drop the solver metadata columns Marginal, Lower, Upper and Scale.
//  5. Optionally keep only the tables named in the essential outputs list.
//  6. Lowercase column names, rename abbreviated dimensions and convert the
//     year column to integers where possible.
//  7. Convert the age classes of the secondary forest tables to integers.
//
// Stages 2 to 4 and 6 tolerate anything missing. Reading, the allow-list and
// the age classes fail loudly with READ, CONFIG and DATA_FORMAT errors.
//
// # Usage
//
//	tables, err := dataprocessing.ImportGDXFile(ctx, "baseline", "results", true)
//	if err != nil {
//	    return err
//	}
//	emissions := tables["EmissionAnnual"]
package dataprocessing
