package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/app"
	"github.com/elee1766/gemchat/src/gemini"
)

// ModelsCmd lists models offered by the API
type ModelsCmd struct {
	All    bool   `help:"Include models that cannot chat"`
	Search string `short:"s" help:"Only models whose id or name contains this text"`
	Format string `help:"Output format (table, json)" default:"table" enum:"table,json"`
}

// Run executes the models command
func (c *ModelsCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openApp(ctx, GenerationFlags{}, app.Options{SkipStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.Client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if !c.All {
		models = gemini.ChatModels(models)
	}
	models = filterModels(models, c.Search)

	switch c.Format {
	case "json":
		return printModelsJSON(os.Stdout, models)
	default:
		return printModelsTable(os.Stdout, models, a.Config.API.Model)
	}
}

func filterModels(models []*aisdk.ModelInfo, query string) []*aisdk.ModelInfo {
	if query == "" {
		return models
	}
	query = strings.ToLower(query)
	var matches []*aisdk.ModelInfo
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ID), query) ||
			strings.Contains(strings.ToLower(m.DisplayName), query) {
			matches = append(matches, m)
		}
	}
	return matches
}

func printModelsJSON(w io.Writer, models []*aisdk.ModelInfo) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(models)
}

func printModelsTable(w io.Writer, models []*aisdk.ModelInfo, current string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "\tID\tName\tInput\tOutput")
	for _, m := range models {
		marker := ""
		if m.ID == strings.TrimPrefix(current, "models/") {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", marker, m.ID, m.DisplayName, m.InputTokenLimit, m.OutputTokenLimit)
	}
	return nil
}
