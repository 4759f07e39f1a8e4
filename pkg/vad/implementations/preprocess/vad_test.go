package preprocess

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
)

// scriptedPreprocessor replays a predefined sequence of voice-activity
// verdicts on top of a pass-through Dummy.
type scriptedPreprocessor struct {
	*preprocess.Dummy
	activities []float64
	pos        int
}

func (s *scriptedPreprocessor) Process(ctx context.Context, input []byte, output []byte) (float64, error) {
	if _, err := s.Dummy.Process(ctx, input, output); err != nil {
		return 0, err
	}
	activity := s.activities[s.pos%len(s.activities)]
	s.pos++
	return activity, nil
}

func newScripted(chunkSize uint, activities ...float64) *scriptedPreprocessor {
	return &scriptedPreprocessor{
		Dummy: preprocess.NewDummy(
			audio.EncodingPCM{
				PCMFormat:  audio.PCMFormatS16LE,
				SampleRate: 16000,
			},
			1,
			chunkSize,
		),
		activities: activities,
	}
}

func TestNewVAD(t *testing.T) {
	ctx := context.Background()

	// 320 bytes == 160 samples == 10ms at 16kHz
	v, err := NewVAD(ctx, newScripted(320, 1))
	require.NoError(t, err)
	require.Equal(t, uint(320), v.ChunkSize)
	require.Equal(t, 10*time.Millisecond, v.ChunkDuration)
}

func TestFindNextVoice(t *testing.T) {
	ctx := context.Background()

	t.Run("empty_input", func(t *testing.T) {
		v, err := NewVAD(ctx, newScripted(320, 1))
		require.NoError(t, err)
		confidence, offset, err := v.FindNextVoice(ctx, nil, 0.5, 30*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, float64(0), confidence)
		require.Equal(t, -time.Nanosecond, offset)
	})

	t.Run("voice_after_silence", func(t *testing.T) {
		v, err := NewVAD(ctx, newScripted(320, 0, 0, 1, 1, 1, 1))
		require.NoError(t, err)
		samples := make([]byte, 320*6)
		confidence, offset, err := v.FindNextVoice(ctx, samples, 0.5, 30*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, float64(1), confidence)
		require.Equal(t, 20*time.Millisecond, offset)
	})

	t.Run("no_voice", func(t *testing.T) {
		v, err := NewVAD(ctx, newScripted(320, 0))
		require.NoError(t, err)
		samples := make([]byte, 320*10)
		confidence, offset, err := v.FindNextVoice(ctx, samples, 0.5, 30*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, float64(0), confidence)
		require.Equal(t, -time.Nanosecond, offset)
	})

	t.Run("too_short_voice", func(t *testing.T) {
		// a single active chunk does not satisfy minDuration
		v, err := NewVAD(ctx, newScripted(320, 0, 1, 0, 0, 0, 0))
		require.NoError(t, err)
		samples := make([]byte, 320*6)
		confidence, offset, err := v.FindNextVoice(ctx, samples, 0.5, 30*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, float64(1), confidence)
		require.Equal(t, 10*time.Millisecond, offset)
	})
}
