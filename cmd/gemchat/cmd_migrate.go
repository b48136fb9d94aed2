package main

import (
	"fmt"
	"os"

	"github.com/elee1766/gemchat/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up MigrateUpCmd `cmd:"" help:"Run pending migrations"`
}

func (cli *CLI) databasePath() (string, error) {
	cfg, err := cli.loadConfig(GenerationFlags{})
	if err != nil {
		return "", err
	}
	return cfg.Storage.DatabasePath, nil
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct{}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(cli *CLI) error {
	path, err := cli.databasePath()
	if err != nil {
		return err
	}

	// Open applies every pending migration
	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Database %s is at migration %d\n", db.Path(), storage.LatestMigration())
	return nil
}
