package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPCMFormatSize(t *testing.T) {
	require.Equal(t, uint(1), PCMFormatU8.Size())
	require.Equal(t, uint(2), PCMFormatS16LE.Size())
	require.Equal(t, uint(2), PCMFormatS16BE.Size())
	require.Equal(t, uint(4), PCMFormatFloat32LE.Size())
	require.Equal(t, uint(4), PCMFormatFloat32BE.Size())
	require.Equal(t, uint(0), PCMFormatUndefined.Size())
}

func TestEncodingPCM(t *testing.T) {
	enc := EncodingPCM{
		PCMFormat:  PCMFormatS16LE,
		SampleRate: 16000,
	}
	require.Equal(t, uint(2), enc.BytesPerSample())
	require.Equal(t, uint64(320), enc.BytesForDuration(10*time.Millisecond))
	require.Equal(t, uint64(32000), enc.BytesForDuration(time.Second))
	require.Equal(t, 10*time.Millisecond, enc.DurationForBytes(320))
}
