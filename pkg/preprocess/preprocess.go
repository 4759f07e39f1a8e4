package preprocess

import (
	"context"
	"io"

	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

// Preprocessor consumes PCM audio in fixed-size chunks and rewrites them
// (noise suppression, automatic gain control, ...). Chunks of one logical
// stream must be submitted in order: an implementation is allowed to adapt
// its internal statistics from call to call.
//
// An instance is not safe for concurrent invocations; use one instance per
// stream or serialize the calls externally.
type Preprocessor interface {
	io.Closer

	Encoding(context.Context) (audio.Encoding, error)
	Channels(context.Context) (audio.Channel, error)
	ChunkSize() uint

	// Process rewrites one chunk from input into output and reports the
	// voice-activity confidence of the chunk within [0, 1]. Both slices
	// must be exactly ChunkSize() bytes long; input is never mutated.
	Process(ctx context.Context, input []byte, output []byte) (float64, error)

	// ProcessChunk rewrites one chunk and returns it as a freshly allocated
	// buffer (the voice-activity verdict is dropped; use Process if it is
	// needed).
	ProcessChunk(ctx context.Context, input []byte) (*ProcessedChunk, error)
}

// ProcessedChunk is the result of processing one chunk. The buffer is owned
// by the caller.
type ProcessedChunk struct {
	Audio []byte
}
