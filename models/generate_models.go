package models

import (
	"fmt"
	"io"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
)

/*
Schema tooling used by the `migrate` and `generate` commands.

Migrate runs AutoMigrate for every model and then prints a column report:
for each table, the columns that exist in the database but have no field in
the Go model. Example output:

	=== COLUMN MISMATCH REPORT ===
	--- Table: projects ---
	Found 1 columns not accounted for in model:
	  - legacy_rank

	=== SUMMARY ===
	Total mismatched columns across all tables: 1
*/

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// GenerateModels writes typed gorm/gen query helpers for every model to outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()
	return nil
}

// ColumnMismatches maps table name to the database columns the model does not declare.
type ColumnMismatches map[string][]string

// Total returns the number of mismatched columns across all tables.
func (m ColumnMismatches) Total() int {
	total := 0
	for _, cols := range m {
		total += len(cols)
	}
	return total
}

// FindColumnMismatches compares every model's table against its parsed gorm schema.
// Tables that do not exist yet are skipped.
func FindColumnMismatches(db *gorm.DB) (ColumnMismatches, error) {
	out := ColumnMismatches{}
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(table) {
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns for table %s: %w", table, err)
		}

		known := make(map[string]bool, len(stmt.Schema.DBNames))
		for _, name := range stmt.Schema.DBNames {
			known[name] = true
		}

		var missing []string
		for _, ct := range columnTypes {
			if !known[ct.Name()] {
				missing = append(missing, ct.Name())
			}
		}
		sort.Strings(missing)
		out[table] = missing
	}
	return out, nil
}

// WriteColumnMismatchReport prints the mismatch report to w.
func WriteColumnMismatchReport(db *gorm.DB, w io.Writer) error {
	mismatches, err := FindColumnMismatches(db)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	tables := make([]string, 0, len(mismatches))
	for table := range mismatches {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		cols := mismatches[table]
		fmt.Fprintf(w, "\n--- Table: %s ---\n", table)
		if len(cols) == 0 {
			fmt.Fprintln(w, "All columns are accounted for in the model.")
			continue
		}
		fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(cols))
		for _, col := range cols {
			fmt.Fprintf(w, "  - %s\n", col)
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", mismatches.Total())
	return nil
}
