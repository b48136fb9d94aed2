package aisdk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStreamContent(t *testing.T) {
	content, err := CollectStreamContent(NewSliceStream("pon", "g!"))
	require.NoError(t, err)
	assert.Equal(t, "pong!", content)
}

func TestStreamToCallbackError(t *testing.T) {
	boom := errors.New("quota exceeded")
	stream := &SliceStream{Fragments: []string{"partial"}, Err: boom}

	var seen []string
	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		seen = append(seen, chunk.Text)
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"partial"}, seen)
	assert.True(t, stream.closed, "stream should be closed after reading")
}

func TestStreamToCallbackStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := StreamToCallback(NewSliceStream("a", "b", "c"), func(chunk *StreamChunk) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
