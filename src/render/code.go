package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

const fence = "```"

// highlightFences syntax-highlights every fenced code block of a markdown
// reply and leaves the prose untouched. An unterminated fence, as seen in a
// truncated reply, is left as is.
func highlightFences(content, style string) string {
	if !strings.Contains(content, fence) {
		return content
	}
	if style == "" {
		style = "monokai"
	}

	var out strings.Builder
	lines := strings.SplitAfter(content, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			out.WriteString(line)
			continue
		}

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == fence {
				end = j
				break
			}
		}
		if end < 0 {
			out.WriteString(strings.Join(lines[i:], ""))
			break
		}

		lang := strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
		code := strings.Join(lines[i+1:end], "")

		out.WriteString(line)
		var hl strings.Builder
		if err := quick.Highlight(&hl, code, lang, "terminal256", style); err != nil {
			out.WriteString(code)
		} else {
			out.WriteString(hl.String())
		}
		if !strings.HasSuffix(code, "\n") {
			out.WriteString("\n")
		}
		out.WriteString(lines[end])
		i = end
	}
	return out.String()
}
