// Package render draws the chat front-ends on a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/storage"
)

const defaultWidth = 80

// Options configures a Renderer
type Options struct {
	Theme     string
	CodeStyle string
	NoColor   bool
	// Width limits thread list lines; 0 means 80 columns
	Width int
}

// Renderer writes styled chat output
type Renderer struct {
	out       io.Writer
	styles    Styles
	codeStyle string
	highlight bool
	rewrite   bool // cursor movement may replace streamed output
	width     int

	streamed strings.Builder
}

// New creates a renderer writing to out
func New(out io.Writer, opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	lr := lipgloss.NewRenderer(out)
	return &Renderer{
		out:       out,
		styles:    newStyles(lr, ThemeByName(opts.Theme), opts.NoColor),
		codeStyle: opts.CodeStyle,
		highlight: !opts.NoColor,
		rewrite:   !opts.NoColor,
		width:     opts.Width,
	}
}

// Banner prints the title line of a chat front-end.
func (r *Renderer) Banner(title, subtitle string) {
	fmt.Fprintln(r.out, r.styles.Title.Render(title))
	if subtitle != "" {
		fmt.Fprintln(r.out, r.styles.Muted.Render(subtitle))
	}
}

func (r *Renderer) roleLabel(role aisdk.Role) string {
	if role == aisdk.RoleUser {
		return r.styles.User.Render("you")
	}
	return r.styles.Assistant.Render("gemini")
}

// Message prints one complete message, highlighting fenced code.
func (r *Renderer) Message(m aisdk.Message) {
	fmt.Fprintf(r.out, "%s\n", r.roleLabel(m.Role))
	content := m.Content
	if r.highlight {
		content = highlightFences(content, r.codeStyle)
	}
	fmt.Fprintln(r.out, strings.TrimRight(content, "\n"))
	fmt.Fprintln(r.out)
}

// Conversation prints every message in order.
func (r *Renderer) Conversation(msgs []aisdk.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, r.styles.Muted.Render("No messages yet."))
		return
	}
	for _, m := range msgs {
		r.Message(m)
	}
}

// BeginReply prints the label of a streamed reply.
func (r *Renderer) BeginReply() {
	r.streamed.Reset()
	fmt.Fprintf(r.out, "%s\n", r.roleLabel(aisdk.RoleAssistant))
}

// Fragment prints one streamed fragment as it arrives.
func (r *Renderer) Fragment(fragment string) {
	r.streamed.WriteString(fragment)
	io.WriteString(r.out, fragment)
}

// EndReply finishes a streamed reply. A failed reply is replaced on screen by
// its error text. Without color the partial fragments cannot be erased and
// stay above the error.
func (r *Renderer) EndReply(response string, err error) {
	if err != nil {
		if r.rewrite && r.streamed.Len() > 0 {
			r.eraseStreamed()
		} else {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, r.styles.Error.Render(response))
		fmt.Fprintln(r.out)
		return
	}
	if !strings.HasSuffix(response, "\n") {
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out)
}

// eraseStreamed clears the rows taken by the streamed fragments, counting
// soft wraps at the renderer width, and leaves the cursor at the start of the
// first one.
func (r *Renderer) eraseStreamed() {
	rows := 0
	for _, line := range strings.Split(r.streamed.String(), "\n") {
		rows += max(1, (ansi.StringWidth(line)+r.width-1)/r.width)
	}
	var b strings.Builder
	b.WriteString("\r" + ansi.EraseEntireLine)
	for range rows - 1 {
		b.WriteString(ansi.CursorUp(1) + ansi.EraseEntireLine)
	}
	io.WriteString(r.out, b.String())
	r.streamed.Reset()
}

// Info prints an informational note.
func (r *Renderer) Info(msg string) {
	fmt.Fprintln(r.out, r.styles.Muted.Render("ℹ  "+msg))
}

// Success prints a confirmation.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+msg))
}

// Warn prints a recoverable problem.
func (r *Renderer) Warn(msg string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render("⚠  "+msg))
}

// Error prints an error.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.styles.Error.Render("Error: "+err.Error()))
}

// SaveHint nudges the user to name an unsaved conversation.
func (r *Renderer) SaveHint() {
	r.Info("Use /name NAME to automatically save your conversation progress!")
}

// Params prints the generation parameters.
func (r *Renderer) Params(p aisdk.GenerationParams) {
	fmt.Fprintf(r.out, "%s %.2f  %s %d\n",
		r.styles.Muted.Render("temperature"), p.Temperature,
		r.styles.Muted.Render("max output tokens"), p.MaxOutputTokens)
}

// Threads prints the chat history list, newest first, marking the active thread.
func (r *Renderer) Threads(threads []storage.ThreadSummary, active *int64) {
	if len(threads) == 0 {
		r.Info("No saved chats yet.")
		return
	}
	for _, th := range threads {
		marker := " "
		isActive := active != nil && *active == th.ID
		if isActive {
			marker = "*"
		}
		line := fmt.Sprintf("%s %4d  %s (%s, %d msgs)",
			marker, th.ID, th.Name, th.CreatedAt.Local().Format("2006-01-02"), th.MessageCount)
		line = ansi.Truncate(line, r.width, "…")
		if isActive {
			line = r.styles.Active.Render(line)
		}
		fmt.Fprintln(r.out, line)
	}
}

// Prompt returns the input prompt for the current conversation state.
func (r *Renderer) Prompt(chatName string, disabled bool) string {
	var b strings.Builder
	if chatName != "" {
		name := ansi.Truncate(chatName, 24, "…")
		b.WriteString(r.styles.Muted.Render("[" + name + "]"))
		b.WriteString(" ")
	}
	if disabled {
		b.WriteString(r.styles.Warning.Render("(input disabled)"))
		b.WriteString(" ")
	}
	b.WriteString("> ")
	return b.String()
}

// Help prints the command reference.
func (r *Renderer) Help(commands [][2]string) {
	width := 0
	for _, c := range commands {
		width = max(width, ansi.StringWidth(c[0]))
	}
	for _, c := range commands {
		pad := strings.Repeat(" ", width-ansi.StringWidth(c[0]))
		fmt.Fprintf(r.out, "  %s%s  %s\n", r.styles.Title.Render(c[0]), pad, r.styles.Muted.Render(c[1]))
	}
}
