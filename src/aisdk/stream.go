package aisdk

import (
	"errors"
	"io"
	"strings"
)

// StreamCallback is a function called for each chunk in a stream.
type StreamCallback func(chunk *StreamChunk) error

// StreamToCallback reads a stream and calls the callback for each chunk.
func StreamToCallback(stream StreamInterface, callback StreamCallback) error {
	defer stream.Close()

	for {
		chunk, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil // End of stream
			}
			return err
		}

		if chunk == nil {
			return nil // End of stream
		}

		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// CollectStreamContent reads a stream and collects all content into a single string.
func CollectStreamContent(stream StreamInterface) (string, error) {
	var content strings.Builder

	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		content.WriteString(chunk.Text)
		return nil
	})

	return content.String(), err
}

// SliceStream replays a fixed list of fragments, optionally failing after them.
type SliceStream struct {
	Fragments []string
	// Err, when set, is returned after the fragments instead of io.EOF.
	Err    error
	pos    int
	closed bool
}

// NewSliceStream creates a stream over fragments.
func NewSliceStream(fragments ...string) *SliceStream {
	return &SliceStream{Fragments: fragments}
}

// Read implements StreamInterface.
func (s *SliceStream) Read() (*StreamChunk, error) {
	if s.closed {
		return nil, io.ErrClosedPipe
	}
	if s.pos < len(s.Fragments) {
		chunk := &StreamChunk{Text: s.Fragments[s.pos]}
		s.pos++
		return chunk, nil
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, io.EOF
}

// Close implements StreamInterface.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}
