package preprocess

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

// Dummy is a pass-through Preprocessor: it copies chunks verbatim and
// reports full voice activity.
type Dummy struct {
	EncodingValue  audio.Encoding
	ChannelsValue  audio.Channel
	ChunkSizeValue uint
}

var _ Preprocessor = (*Dummy)(nil)

func NewDummy(
	encoding audio.Encoding,
	channels audio.Channel,
	chunkSize uint,
) *Dummy {
	return &Dummy{
		EncodingValue:  encoding,
		ChannelsValue:  channels,
		ChunkSizeValue: chunkSize,
	}
}

func (s *Dummy) Close() error {
	return nil
}

func (s *Dummy) Encoding(context.Context) (audio.Encoding, error) {
	return s.EncodingValue, nil
}

func (s *Dummy) Channels(context.Context) (audio.Channel, error) {
	return s.ChannelsValue, nil
}

func (s *Dummy) ChunkSize() uint {
	return s.ChunkSizeValue
}

func (s *Dummy) Process(_ context.Context, input []byte, output []byte) (float64, error) {
	if uint(len(input)) != s.ChunkSizeValue {
		return 0, fmt.Errorf("%w: received %d bytes, expected %d", ErrShapeMismatch, len(input), s.ChunkSizeValue)
	}
	if uint(len(output)) != s.ChunkSizeValue {
		return 0, fmt.Errorf("%w: the output buffer is %d bytes, expected %d", ErrShapeMismatch, len(output), s.ChunkSizeValue)
	}
	copy(output, input)
	return 1, nil
}

func (s *Dummy) ProcessChunk(ctx context.Context, input []byte) (*ProcessedChunk, error) {
	output := make([]byte, s.ChunkSizeValue)
	if _, err := s.Process(ctx, input, output); err != nil {
		return nil, err
	}
	return &ProcessedChunk{Audio: output}, nil
}
