package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"thot/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	if err := os.MkdirAll(filepath.Dir(flagDBPath), 0755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	version, err := storage.RunMigrations(flagDBPath)
	if err != nil {
		return err
	}
	logger.Info("Migrations applied", "path", flagDBPath, "schema_version", version)
	fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", flagDBPath, version)
	return nil
}
