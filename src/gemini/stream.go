package gemini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/tidwall/gjson"
)

// finish reasons that end a candidate without a usable answer
var blockingFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

var _ aisdk.StreamInterface = (*sseStream)(nil)

// sseStream reads server-sent events from a streamGenerateContent response.
// Each "data:" line holds one GenerateContentResponse JSON document.
type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	reply  strings.Builder
	onDone func(reply string)
	err    error
	closed bool
}

func newSSEStream(body io.ReadCloser, onDone func(reply string)) *sseStream {
	return &sseStream{
		body:   body,
		reader: bufio.NewReader(body),
		onDone: onDone,
	}
}

// Read implements aisdk.StreamInterface.
func (s *sseStream) Read() (*aisdk.StreamChunk, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.err != nil {
		return nil, s.err
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				s.finish()
				return nil, s.err
			}
			return nil, s.fail(fmt.Errorf("network error: %w", err))
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "data:") {
			// blank separators, comments and event/id fields carry no content
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		chunk, err := parseEvent(data)
		if err != nil {
			return nil, s.fail(err)
		}
		if chunk == nil {
			continue
		}
		s.reply.WriteString(chunk.Text)
		return chunk, nil
	}
}

// Close implements aisdk.StreamInterface.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *sseStream) finish() {
	s.err = io.EOF
	if s.onDone != nil {
		s.onDone(s.reply.String())
		s.onDone = nil
	}
}

func (s *sseStream) fail(err error) error {
	s.err = err
	s.onDone = nil
	return err
}

// parseEvent converts one event payload into a chunk. It returns a nil chunk for
// events without text, such as a trailing usage-only event.
func parseEvent(data string) (*aisdk.StreamChunk, error) {
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("%w: %.80s", ErrMalformedEvent, data)
	}
	doc := gjson.Parse(data)

	if e := doc.Get("error"); e.Exists() {
		return nil, &APIError{
			StatusCode: int(e.Get("code").Int()),
			Status:     e.Get("status").String(),
			Message:    e.Get("message").String(),
		}
	}

	if reason := doc.Get("promptFeedback.blockReason").String(); reason != "" {
		return nil, &BlockedError{Reason: reason}
	}

	candidate := doc.Get("candidates.0")
	finish := candidate.Get("finishReason").String()
	if blockingFinishReasons[finish] {
		return nil, &BlockedError{Reason: finish}
	}

	var parts []string
	for _, p := range candidate.Get("content.parts").Array() {
		// thought summaries are not part of the answer
		if p.Get("thought").Bool() {
			continue
		}
		parts = append(parts, p.Get("text").String())
	}
	text := joinParts(parts)
	if text == "" && finish == "" {
		return nil, nil
	}
	return &aisdk.StreamChunk{Text: text, FinishReason: finish}, nil
}
