package engines

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainertoe/voice/internal/tts"
)

func TestMockEngine_Deterministic(t *testing.T) {
	m := NewMockEngine()

	a, err := m.Synthesize(context.Background(), " GO! ")
	require.NoError(t, err)
	b, err := m.Synthesize(context.Background(), "GO!")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, MockAudio("GO!"), a)
	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, []string{"GO!", "GO!"}, m.Texts())
}

func TestMockEngine_Failures(t *testing.T) {
	m := NewMockEngine()
	m.FailWith = func(text string) error {
		if text == "boom" {
			return tts.NewStatusError(503, "")
		}
		return nil
	}

	_, err := m.Synthesize(context.Background(), "boom")
	assert.True(t, tts.IsRetriable(err))

	_, err = m.Synthesize(context.Background(), "fine")
	assert.NoError(t, err)

	_, err = m.Synthesize(context.Background(), "<>")
	var invalid *tts.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
	assert.Equal(t, 2, m.Calls())
}

func TestMockEngine_LatencyHonoursContext(t *testing.T) {
	m := NewMockEngine()
	m.Latency = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Synthesize(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
