package main

import (
	"context"
	"io"

	"github.com/elee1766/gemchat/src/app"
	"github.com/elee1766/gemchat/src/config"
	"github.com/elee1766/gemchat/src/render"
)

// configError marks failures to produce a usable configuration
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// GenerationFlags are the per-chat parameter flags
type GenerationFlags struct {
	Temperature *float64 `short:"t" help:"Initial temperature (0 to 1, step 0.05)"`
	MaxTokens   int      `help:"Initial max output tokens (50 to 65000, step 50)"`
}

// overrides collects the flags that take precedence over config files and env
func (cli *CLI) overrides(gen GenerationFlags) config.Overrides {
	return config.Overrides{
		APIKey:          cli.APIKey,
		BaseURL:         cli.BaseURL,
		Model:           cli.Model,
		DatabasePath:    cli.DB,
		LogLevel:        cli.LogLevel,
		Temperature:     gen.Temperature,
		MaxOutputTokens: gen.MaxTokens,
	}
}

// loadConfig loads the layered configuration with the CLI flags applied last
func (cli *CLI) loadConfig(gen GenerationFlags) (*config.Config, error) {
	precedence := config.GetConfigPaths()
	precedence.ExplicitConfig = cli.ConfigFile

	cfg, err := config.NewLoader(precedence).Load(cli.overrides(gen))
	if err != nil {
		return nil, &configError{err: err}
	}
	if cli.NoColor {
		cfg.UI.NoColor = true
	}
	return cfg, nil
}

// openApp loads the configuration and creates the services a one-shot command
// needs, logging to stderr
func (cli *CLI) openApp(ctx context.Context, gen GenerationFlags, opts app.Options) (*app.App, error) {
	cfg, err := cli.loadConfig(gen)
	if err != nil {
		return nil, err
	}
	opts.Config = cfg
	if opts.Logger == nil {
		opts.Logger = createCLILogger(cfg.Logging.Level)
	}
	return app.New(ctx, opts)
}

func newRenderer(out io.Writer, cfg *config.Config) *render.Renderer {
	return render.New(out, render.Options{
		Theme:     cfg.UI.Theme,
		CodeStyle: cfg.UI.CodeStyle,
		NoColor:   cfg.UI.NoColor,
	})
}
