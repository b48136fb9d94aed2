package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/render"
	"github.com/elee1766/gemchat/src/session"
	"github.com/elee1766/gemchat/src/storage"
)

// errQuit ends the REPL loop without an error
var errQuit = errors.New("quit")

// replCommand is one slash command of the chat prompt
type replCommand struct {
	name  string
	usage string
	help  string
	// persist marks commands that need chat history
	persist bool
	run     func(r *REPL, ctx context.Context, arg string) error
}

// replCommands lists the slash commands in help order
func replCommands() []replCommand {
	return []replCommand{
		{name: "temp", usage: "/temp F", help: "set temperature (0 to 1, step 0.05)", run: (*REPL).setTemperature},
		{name: "max", usage: "/max N", help: "set max output tokens (50 to 65000, step 50)", run: (*REPL).setMaxTokens},
		{name: "params", usage: "/params", help: "show generation parameters", run: (*REPL).showParams},
		{name: "name", usage: "/name NAME", help: "name the chat; named chats are saved after every reply", persist: true, run: (*REPL).rename},
		{name: "save", usage: "/save", help: "save the chat now", persist: true, run: (*REPL).save},
		{name: "new", usage: "/new", help: "start a new chat", run: (*REPL).startNew},
		{name: "load", usage: "/load ID", help: "load a saved chat", persist: true, run: (*REPL).load},
		{name: "list", usage: "/list", help: "list saved chats", persist: true, run: (*REPL).list},
		{name: "delete", usage: "/delete", help: "delete the current chat (asks for confirmation)", persist: true, run: (*REPL).requestDelete},
		{name: "confirm", usage: "/confirm", help: "confirm the pending delete", persist: true, run: (*REPL).confirmDelete},
		{name: "cancel", usage: "/cancel", help: "cancel the pending delete", persist: true, run: (*REPL).cancelDelete},
		{name: "clear", usage: "/clear", help: "discard the chat without saving", run: (*REPL).clear},
		{name: "help", usage: "/help", help: "show this help", run: (*REPL).help},
		{name: "quit", usage: "/quit", help: "leave", run: func(*REPL, context.Context, string) error { return errQuit }},
	}
}

// parseCommand splits "/name arg" into the command and its argument. ok is
// false for plain chat input.
func parseCommand(line string) (name, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(line[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// REPL is the interactive chat loop shared by both front-ends
type REPL struct {
	ctrl   *session.Controller
	render *render.Renderer
	in     *bufio.Reader
	out    io.Writer
	params aisdk.GenerationParams
	logger *slog.Logger

	// interruptible derives the context of one reply; Ctrl-C cancels the reply,
	// not the REPL
	interruptible func(context.Context) (context.Context, context.CancelFunc)
}

// NewREPL creates a chat loop reading lines from in
func NewREPL(ctrl *session.Controller, r *render.Renderer, in io.Reader, out io.Writer, params aisdk.GenerationParams, logger *slog.Logger) *REPL {
	return &REPL{
		ctrl:   ctrl,
		render: r,
		in:     bufio.NewReader(in),
		out:    out,
		params: params,
		logger: logger,
		interruptible: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

func (r *REPL) persisting() bool {
	return r.ctrl.Policy() == session.Persisting
}

// Run reads and handles lines until /quit or end of input. Every cycle starts
// with a reconciliation so parameter changes and loads take effect before the
// next line is read.
func (r *REPL) Run(ctx context.Context) error {
	for {
		r.reconcile()

		snap := r.ctrl.Snapshot()
		fmt.Fprint(r.out, r.render.Prompt(snap.ChatName, snap.InputDisabled()))

		line, err := r.in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		if err := r.handle(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

func (r *REPL) reconcile() {
	out := r.ctrl.Reconcile(r.params)
	if !out.Refresh {
		return
	}
	if out.Cleared {
		r.render.Info("Generation parameters changed, starting a fresh conversation.")
		return
	}
	snap := r.ctrl.Snapshot()
	if snap.ChatName != "" {
		r.render.Banner(snap.ChatName, "")
	}
	r.render.Conversation(snap.Messages)
}

// handle runs one line. Only unrecoverable errors are returned; everything
// else is rendered.
func (r *REPL) handle(ctx context.Context, line string) error {
	name, arg, isCommand := parseCommand(line)
	if !isCommand {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		r.send(ctx, strings.TrimRight(line, "\r\n"))
		return nil
	}

	for _, c := range replCommands() {
		if c.name != name && !(name == "exit" && c.name == "quit") {
			continue
		}
		if c.persist && !r.persisting() {
			r.render.Warn(fmt.Sprintf("/%s is not available without chat history", c.name))
			return nil
		}
		err := c.run(r, ctx, arg)
		if errors.Is(err, errQuit) {
			return err
		}
		r.report(err)
		return nil
	}

	r.render.Warn(fmt.Sprintf("unknown command /%s, try /help", name))
	return nil
}

// report renders a recovered error. Validation problems are warnings, store
// failures are errors.
func (r *REPL) report(err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, aisdk.ErrTemperatureRange),
		errors.Is(err, aisdk.ErrMaxTokensRange),
		errors.Is(err, storage.ErrEmptyName),
		errors.Is(err, session.ErrInputDisabled),
		errors.Is(err, session.ErrNameRequired),
		errors.Is(err, session.ErrUnsavedChanges),
		errors.Is(err, session.ErrNothingToSave),
		errors.Is(err, session.ErrNoActiveThread),
		errors.Is(err, session.ErrNoPendingDelete):
		r.render.Warn(err.Error())
	default:
		r.logger.Error("command failed", "error", err)
		r.render.Error(err)
	}
}

func (r *REPL) send(ctx context.Context, text string) {
	ctx, stop := r.interruptible(ctx)
	defer stop()

	started := false
	ex, err := r.ctrl.Send(ctx, text, r.params, func(_, fragment string) {
		if !started {
			r.render.BeginReply()
			started = true
		}
		r.render.Fragment(fragment)
	})
	if ex == nil {
		r.report(err)
		return
	}

	if !started {
		r.render.BeginReply()
	}
	r.render.EndReply(ex.Response, ex.Err)
	if err != nil {
		r.report(err)
	}
	if ex.Hint {
		r.render.SaveHint()
	}
}

func (r *REPL) setTemperature(_ context.Context, arg string) error {
	t, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("%w: /temp needs a number, got %q", errInvalidArgument, arg)
	}
	// range is checked on the typed value, snapping keeps it in range
	params := r.params
	params.Temperature = t
	if err := params.Validate(); err != nil {
		return err
	}
	params.Temperature = aisdk.SnapTemperature(t)
	r.params = params
	r.render.Params(r.params)
	return nil
}

func (r *REPL) setMaxTokens(_ context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: /max needs a whole number, got %q", errInvalidArgument, arg)
	}
	params := r.params
	params.MaxOutputTokens = n
	if err := params.Validate(); err != nil {
		return err
	}
	params.MaxOutputTokens = aisdk.SnapMaxOutputTokens(n)
	r.params = params
	r.render.Params(r.params)
	return nil
}

func (r *REPL) showParams(context.Context, string) error {
	r.render.Params(r.params)
	return nil
}

func (r *REPL) rename(ctx context.Context, arg string) error {
	if err := r.ctrl.Rename(ctx, arg); err != nil {
		return err
	}
	r.render.Success(fmt.Sprintf("Chat named %q", r.ctrl.Snapshot().ChatName))
	return nil
}

func (r *REPL) save(ctx context.Context, _ string) error {
	if err := r.ctrl.Save(ctx); err != nil {
		return err
	}
	r.render.Success(fmt.Sprintf("Chat saved as %q", r.ctrl.Snapshot().ChatName))
	return nil
}

func (r *REPL) startNew(ctx context.Context, _ string) error {
	if !r.persisting() {
		r.ctrl.Clear()
		r.render.Info("Started a new chat.")
		return nil
	}
	if err := r.ctrl.StartNew(ctx); err != nil {
		return err
	}
	r.render.Info("Started a new chat.")
	return nil
}

func (r *REPL) load(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: /load needs a chat id, got %q", errInvalidArgument, arg)
	}
	return r.ctrl.Load(ctx, id)
}

func (r *REPL) list(ctx context.Context, _ string) error {
	threads, err := r.ctrl.Threads(ctx)
	if err != nil {
		return err
	}
	r.render.Threads(threads, r.ctrl.Snapshot().ThreadID)
	return nil
}

func (r *REPL) requestDelete(context.Context, string) error {
	if err := r.ctrl.RequestDelete(); err != nil {
		return err
	}
	r.render.Warn(fmt.Sprintf("Delete chat %q? Type /confirm or /cancel.", r.ctrl.Snapshot().ChatName))
	return nil
}

func (r *REPL) confirmDelete(ctx context.Context, _ string) error {
	if err := r.ctrl.ConfirmDelete(ctx); err != nil {
		return err
	}
	r.render.Success("Chat deleted.")
	return nil
}

func (r *REPL) cancelDelete(context.Context, string) error {
	r.ctrl.CancelDelete()
	r.render.Info("Delete cancelled.")
	return nil
}

func (r *REPL) clear(context.Context, string) error {
	r.ctrl.Clear()
	r.render.Info("Chat cleared.")
	return nil
}

func (r *REPL) help(context.Context, string) error {
	var rows [][2]string
	for _, c := range replCommands() {
		if c.persist && !r.persisting() {
			continue
		}
		rows = append(rows, [2]string{c.usage, c.help})
	}
	r.render.Help(rows)
	return nil
}
