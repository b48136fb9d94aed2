// Package transcript exports stored chat threads as markdown documents.
package transcript

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/spf13/afero"
)

// Transcript is one exported thread
type Transcript struct {
	ThreadID  int64
	Name      string
	CreatedAt time.Time
	Messages  []aisdk.Message
}

// WriteMarkdown writes t as markdown, one section per message in order.
func WriteMarkdown(w io.Writer, t Transcript) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	fmt.Fprintf(&b, "_Thread %d, created %s, %d messages_\n", t.ThreadID, t.CreatedAt.UTC().Format(time.RFC3339), len(t.Messages))

	for _, m := range t.Messages {
		heading := "User"
		if m.Role == aisdk.RoleAssistant {
			heading = "Assistant"
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", heading, strings.TrimRight(m.Content, "\n"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Export writes t to path on fsys, creating parent directories.
func Export(fsys afero.Fs, path string, t Transcript) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteMarkdown(f, t); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Filename derives a file name from the thread name, e.g. "trip-to-rome-12.md".
func Filename(t Transcript) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(t.Name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "chat"
	}
	return fmt.Sprintf("%s-%d.md", slug, t.ThreadID)
}
