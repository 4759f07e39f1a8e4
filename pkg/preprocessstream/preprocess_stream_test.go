package preprocessstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
)

func newDummy(chunkSize uint) *preprocess.Dummy {
	return preprocess.NewDummy(
		audio.EncodingPCM{
			PCMFormat:  audio.PCMFormatS16LE,
			SampleRate: 16000,
		},
		1,
		chunkSize,
	)
}

func pcmData(t *testing.T, size int) []byte {
	t.Helper()
	r := rand.New(rand.NewSource(42))
	b := make([]byte, size)
	_, err := r.Read(b)
	require.NoError(t, err)
	return b
}

func TestStreamPassThrough(t *testing.T) {
	ctx := context.Background()
	input := pcmData(t, 320*17)

	s, err := NewStream(ctx, bytes.NewReader(input), newDummy(320), 4096, 4096)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, input, got)
}

func TestStreamDropsIncompleteTail(t *testing.T) {
	ctx := context.Background()
	input := pcmData(t, 320*3+100)

	s, err := NewStream(ctx, bytes.NewReader(input), newDummy(320), 4096, 4096)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, input[:320*3], got)
}

func TestStreamBackpressure(t *testing.T) {
	// rings of exactly one chunk force the loops to wait on each other
	ctx := context.Background()
	input := pcmData(t, 320*50)

	s, err := NewStream(ctx, bytes.NewReader(input), newDummy(320), 320, 320)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, input, got)
}

func TestStreamEmptyInput(t *testing.T) {
	ctx := context.Background()

	s, err := NewStream(ctx, bytes.NewReader(nil), newDummy(320), 4096, 4096)
	require.NoError(t, err)
	defer s.Close()

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Empty(t, got)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("the device fell off")
}

func TestStreamReaderError(t *testing.T) {
	ctx := context.Background()

	s, err := NewStream(ctx, brokenReader{}, newDummy(320), 4096, 4096)
	require.NoError(t, err)
	defer s.Close()

	_, err = io.ReadAll(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "the device fell off")
}

func TestStreamTooSmallBuffers(t *testing.T) {
	ctx := context.Background()

	_, err := NewStream(ctx, bytes.NewReader(nil), newDummy(320), 100, 4096)
	require.Error(t, err)

	_, err = NewStream(ctx, bytes.NewReader(nil), newDummy(320), 4096, 100)
	require.Error(t, err)

	_, err = NewStream(ctx, bytes.NewReader(nil), newDummy(0), 4096, 4096)
	require.Error(t, err)
}
