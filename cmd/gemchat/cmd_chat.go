package main

import (
	"context"
	"fmt"
	"os"

	"github.com/elee1766/gemchat/src/app"
	"github.com/elee1766/gemchat/src/session"
)

// ChatCmd starts the chat with history
type ChatCmd struct {
	GenerationFlags `embed:""`
	Thread          int64 `help:"Open a saved chat by id"`
}

// Run executes the chat command
func (c *ChatCmd) Run(cli *CLI) error {
	return runChat(context.Background(), cli, c.GenerationFlags, session.Persisting, c.Thread)
}

// StatelessCmd starts the chat without history
type StatelessCmd struct {
	GenerationFlags `embed:""`
}

// Run executes the stateless command
func (c *StatelessCmd) Run(cli *CLI) error {
	return runChat(context.Background(), cli, c.GenerationFlags, session.Stateless, 0)
}

func runChat(ctx context.Context, cli *CLI, gen GenerationFlags, policy session.Policy, thread int64) error {
	cfg, err := cli.loadConfig(gen)
	if err != nil {
		return err
	}

	logger, logFile := createREPLLogger(cfg.Logging.Level, cfg.Logging.File)
	defer logFile.Close()

	a, err := app.New(ctx, app.Options{
		Config:      cfg,
		Logger:      logger,
		SkipStorage: policy == session.Stateless,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := a.Controller(policy)
	r := newRenderer(os.Stdout, cfg)

	subtitle := fmt.Sprintf("%s, chat history on. Type /help for commands.", cfg.API.Model)
	if policy == session.Stateless {
		subtitle = fmt.Sprintf("%s, no history: changing a parameter clears the chat. Type /help for commands.", cfg.API.Model)
	}
	r.Banner("gemchat", subtitle)

	if thread != 0 {
		if err := ctrl.Load(ctx, thread); err != nil {
			return err
		}
	}

	logger.Info("chat started", "model", cfg.API.Model, "policy", policy.String())
	params := cfg.Generation.Params()
	if err := params.Validate(); err != nil {
		return &configError{err: err}
	}
	return NewREPL(ctrl, r, os.Stdin, os.Stdout, params, logger).Run(ctx)
}
