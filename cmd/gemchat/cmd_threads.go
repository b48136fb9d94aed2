package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/elee1766/gemchat/src/app"
	"github.com/elee1766/gemchat/src/storage"
	"github.com/elee1766/gemchat/src/transcript"
	"github.com/spf13/afero"
)

// ThreadsCmd manages saved chats
type ThreadsCmd struct {
	List   ThreadsListCmd   `cmd:"" default:"1" help:"List saved chats, newest first"`
	Show   ThreadsShowCmd   `cmd:"" help:"Print a saved chat"`
	Rename ThreadsRenameCmd `cmd:"" help:"Rename a saved chat"`
	Delete ThreadsDeleteCmd `cmd:"" help:"Delete a saved chat and its messages"`
	Export ThreadsExportCmd `cmd:"" help:"Export a saved chat as markdown"`
}

func (cli *CLI) openStore(ctx context.Context) (*app.App, error) {
	return cli.openApp(ctx, GenerationFlags{}, app.Options{SkipClient: true})
}

// ThreadsListCmd lists saved chats
type ThreadsListCmd struct{}

// Run executes the threads list command
func (c *ThreadsListCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	threads, err := a.Threads.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}
	newRenderer(os.Stdout, a.Config).Threads(threads, nil)
	return nil
}

// ThreadsShowCmd prints one saved chat
type ThreadsShowCmd struct {
	ID int64 `arg:"" help:"Chat id"`
}

// Run executes the threads show command
func (c *ThreadsShowCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	name, msgs, err := a.Threads.Load(ctx, c.ID)
	if err != nil {
		return err
	}
	r := newRenderer(os.Stdout, a.Config)
	r.Banner(name, fmt.Sprintf("chat %d, %d messages", c.ID, len(msgs)))
	r.Conversation(msgs)
	return nil
}

// ThreadsRenameCmd renames a saved chat
type ThreadsRenameCmd struct {
	ID   int64    `arg:"" help:"Chat id"`
	Name []string `arg:"" help:"New name"`
}

// Run executes the threads rename command
func (c *ThreadsRenameCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(c.Name, " ")
	if err := a.Threads.Rename(ctx, c.ID, name); err != nil {
		return err
	}
	newRenderer(os.Stdout, a.Config).Success(fmt.Sprintf("Chat %d renamed to %q", c.ID, strings.TrimSpace(name)))
	return nil
}

// ThreadsDeleteCmd deletes a saved chat
type ThreadsDeleteCmd struct {
	ID  int64 `arg:"" help:"Chat id"`
	Yes bool  `short:"y" help:"Do not ask for confirmation"`
}

// Run executes the threads delete command
func (c *ThreadsDeleteCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	th, err := a.Threads.Get(ctx, c.ID)
	if err != nil {
		return err
	}

	r := newRenderer(os.Stdout, a.Config)
	if !c.Yes && !confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete chat %d %q and all of its messages? [y/N] ", th.ID, th.Name)) {
		r.Info("Nothing deleted.")
		return nil
	}

	if err := a.Threads.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete chat %d: %w", c.ID, err)
	}
	r.Success(fmt.Sprintf("Chat %d deleted.", c.ID))
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ThreadsExportCmd exports a saved chat as markdown
type ThreadsExportCmd struct {
	ID     int64  `arg:"" help:"Chat id"`
	Output string `short:"o" type:"path" help:"Output file (default: derived from the chat name)"`
}

// Run executes the threads export command
func (c *ThreadsExportCmd) Run(cli *CLI) error {
	ctx := context.Background()
	a, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := loadTranscript(ctx, a.Threads, c.ID)
	if err != nil {
		return err
	}

	path := c.Output
	if path == "" {
		path = transcript.Filename(t)
	}
	if err := transcript.Export(afero.NewOsFs(), path, t); err != nil {
		return err
	}
	newRenderer(os.Stdout, a.Config).Success(fmt.Sprintf("Exported %d messages to %s", len(t.Messages), path))
	return nil
}

func loadTranscript(ctx context.Context, store *storage.ThreadStore, id int64) (transcript.Transcript, error) {
	th, err := store.Get(ctx, id)
	if err != nil {
		return transcript.Transcript{}, err
	}
	_, msgs, err := store.Load(ctx, id)
	if err != nil {
		return transcript.Transcript{}, err
	}
	return transcript.Transcript{
		ThreadID:  th.ID,
		Name:      th.Name,
		CreatedAt: th.CreatedAt,
		Messages:  msgs,
	}, nil
}
