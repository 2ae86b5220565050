// kyomu-migrate applies the SQL schema file to a content store. It is the
// operator-facing counterpart of the embedded migrations: it refuses to
// touch a store that already has the expected tables unless --force is
// given, in which case the schema file's DROP statements recreate them.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

// expectedTables are the tables whose presence marks an already-migrated
// store.
var expectedTables = []string{"manga", "chapters", "chapter_pages"}

var (
	dbPath     string
	schemaFile string
	force      bool
)

var rootCmd = &cobra.Command{
	Use:           "kyomu-migrate",
	Short:         "Apply the kyomu database schema",
	Long:          "Apply the kyomu database schema from a SQL file, in a single transaction.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMigrate,
}

func init() {
	rootCmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database")
	rootCmd.Flags().StringVar(&schemaFile, "schema-file", "schema.sql", "path to the schema SQL file")
	rootCmd.Flags().BoolVar(&force, "force", false, "apply the schema even if tables already exist")
	rootCmd.MarkFlagRequired("db")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	schemaSQL, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", schemaFile, err)
	}

	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()
	if err := database.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	existing, err := existingTables(database)
	if err != nil {
		return fmt.Errorf("failed to check database status: %w", err)
	}

	if len(existing) > 0 && !force {
		// Benign no-op: the store is already migrated.
		fmt.Printf("Database tables already exist: %s\n", strings.Join(existing, ", "))
		fmt.Println("Use --force to recreate them.")
		return nil
	}
	if len(existing) > 0 {
		fmt.Println("Forcing migration - existing tables will be recreated")
	}

	if err := applySchema(database, string(schemaSQL)); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println("Database migration completed successfully!")
	return nil
}

// existingTables returns which of the expected tables are present.
func existingTables(database *sql.DB) ([]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(expectedTables)), ",")
	query := "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN (" + placeholders + ")"
	args := make([]interface{}, len(expectedTables))
	for i, name := range expectedTables {
		args[i] = name
	}

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// applySchema executes the whole schema batch inside one transaction,
// committing on success and rolling back on any failure.
func applySchema(database *sql.DB, schemaSQL string) error {
	tx, err := database.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
