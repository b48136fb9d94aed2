package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/config"
	"github.com/elee1766/gemchat/src/gemini"
	"github.com/elee1766/gemchat/src/session"
	"github.com/elee1766/gemchat/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("gemchat"), kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestCLIParse(t *testing.T) {
	t.Run("chat is the default", func(t *testing.T) {
		cli, kctx := parse(t)
		assert.Equal(t, "chat", kctx.Command())
		assert.Nil(t, cli.Chat.Temperature)
	})

	t.Run("chat flags", func(t *testing.T) {
		cli, kctx := parse(t, "--db", "/tmp/x.db", "-m", "gemini-2.5-pro", "chat", "--thread", "3", "-t", "0.4", "--max-tokens", "500")
		assert.Equal(t, "chat", kctx.Command())
		assert.Equal(t, int64(3), cli.Chat.Thread)
		require.NotNil(t, cli.Chat.Temperature)
		assert.Equal(t, 0.4, *cli.Chat.Temperature)

		o := cli.overrides(cli.Chat.GenerationFlags)
		assert.Equal(t, "/tmp/x.db", o.DatabasePath)
		assert.Equal(t, "gemini-2.5-pro", o.Model)
		assert.Equal(t, 500, o.MaxOutputTokens)
	})

	t.Run("stateless", func(t *testing.T) {
		cli, kctx := parse(t, "stateless", "-t", "0")
		assert.Equal(t, "stateless", kctx.Command())
		require.NotNil(t, cli.Stateless.Temperature)
		assert.Zero(t, *cli.Stateless.Temperature)
	})

	t.Run("threads export", func(t *testing.T) {
		cli, kctx := parse(t, "threads", "export", "7", "-o", "trip.md")
		assert.Equal(t, "threads export <id>", kctx.Command())
		assert.Equal(t, int64(7), cli.Threads.Export.ID)
		assert.True(t, strings.HasSuffix(cli.Threads.Export.Output, "trip.md"))
	})

	t.Run("threads rename joins words", func(t *testing.T) {
		cli, _ := parse(t, "threads", "rename", "2", "Trip", "to", "Rome")
		assert.Equal(t, []string{"Trip", "to", "Rome"}, cli.Threads.Rename.Name)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing key", err: fmt.Errorf("setup: %w", config.ErrMissingAPIKey), want: ExitConfig},
		{name: "bad config", err: &configError{err: errors.New("configuration validation failed")}, want: ExitConfig},
		{name: "auth", err: &gemini.APIError{StatusCode: 403, Message: "denied"}, want: ExitAuth},
		{name: "api", err: fmt.Errorf("failed to list models: %w", &gemini.APIError{StatusCode: 503}), want: ExitNetwork},
		{name: "interrupted", err: context.Canceled, want: ExitInterrupted},
		{name: "timeout", err: context.DeadlineExceeded, want: ExitTimeout},
		{name: "permission", err: &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, want: ExitPermission},
		{name: "unknown thread", err: fmt.Errorf("%w: 9", storage.ErrThreadNotFound), want: ExitUsage},
		{name: "empty name", err: storage.ErrEmptyName, want: ExitUsage},
		{name: "name required", err: session.ErrNameRequired, want: ExitUsage},
		{name: "other", err: errors.New("boom"), want: ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "y\n", want: true},
		{answer: " YES \n", want: true},
		{answer: "n\n", want: false},
		{answer: "\n", want: false},
		{answer: "", want: false},
	}

	for _, tt := range tests {
		var out strings.Builder
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.answer), &out, "sure? "), "answer %q", tt.answer)
		assert.Equal(t, "sure? ", out.String())
	}
}

func TestModelsOutput(t *testing.T) {
	models := []*aisdk.ModelInfo{
		{ID: "gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash", InputTokenLimit: 1048576, OutputTokenLimit: 65536},
		{ID: "gemini-2.5-pro", DisplayName: "Gemini 2.5 Pro", InputTokenLimit: 1048576, OutputTokenLimit: 65536},
	}

	assert.Len(t, filterModels(models, ""), 2)
	assert.Len(t, filterModels(models, "PRO"), 1)
	assert.Empty(t, filterModels(models, "ultra"))

	var out strings.Builder
	require.NoError(t, printModelsTable(&out, models, "models/gemini-2.5-pro"))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "*"))
	assert.False(t, strings.HasPrefix(lines[1], "*"))
}
