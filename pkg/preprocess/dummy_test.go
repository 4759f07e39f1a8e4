package preprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

func testEncoding() audio.EncodingPCM {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: 16000,
	}
}

func TestDummyPassThrough(t *testing.T) {
	ctx := context.Background()
	d := NewDummy(testEncoding(), 1, 320)

	input := make([]byte, 320)
	for idx := range input {
		input[idx] = byte(idx)
	}

	chunk, err := d.ProcessChunk(ctx, input)
	require.NoError(t, err)
	require.Equal(t, input, chunk.Audio)

	// the result is a fresh buffer, not an alias of the caller's memory
	input[0] ^= 0xFF
	require.NotEqual(t, input[0], chunk.Audio[0])
}

func TestDummyShapeMismatch(t *testing.T) {
	ctx := context.Background()
	d := NewDummy(testEncoding(), 1, 320)

	for _, size := range []int{0, 1, 319, 321, 640} {
		_, err := d.ProcessChunk(ctx, make([]byte, size))
		require.ErrorIs(t, err, ErrShapeMismatch, "input size: %d", size)
	}

	_, err := d.Process(ctx, make([]byte, 320), make([]byte, 100))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDummyVoiceActivity(t *testing.T) {
	ctx := context.Background()
	d := NewDummy(testEncoding(), 1, 320)

	activity, err := d.Process(ctx, make([]byte, 320), make([]byte, 320))
	require.NoError(t, err)
	require.Equal(t, float64(1), activity)
}
