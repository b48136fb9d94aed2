package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elee1766/gemchat/src/config"
	"github.com/spf13/afero"
)

// ConfigCmd shows and initialises configuration
type ConfigCmd struct {
	Show   ConfigShowCmd   `cmd:"" default:"1" help:"Print the effective configuration, API key redacted"`
	Schema ConfigSchemaCmd `cmd:"" help:"Print the JSON schema of the config file"`
	Init   ConfigInitCmd   `cmd:"" help:"Write a default user config file"`
}

// ConfigShowCmd prints the merged configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig(GenerationFlags{})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// ConfigSchemaCmd prints the config JSON schema
type ConfigSchemaCmd struct{}

// Run executes the config schema command
func (c *ConfigSchemaCmd) Run() error {
	data, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// ConfigInitCmd writes a default configuration file
type ConfigInitCmd struct {
	Path  string `type:"path" help:"Where to write (default: the user config file)"`
	Force bool   `help:"Overwrite an existing file"`
}

// Run executes the config init command
func (c *ConfigInitCmd) Run() error {
	path := c.Path
	if path == "" {
		path = config.UserConfigPath()
	}

	fsys := afero.NewOsFs()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return err
	}
	if exists && !c.Force {
		return fmt.Errorf("%w: %s already exists, use --force to overwrite", errInvalidArgument, path)
	}

	loader := config.NewLoaderFs(fsys, config.GetConfigPaths(), os.LookupEnv)
	if err := loader.SaveFile(config.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}
