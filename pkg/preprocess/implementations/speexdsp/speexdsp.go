//go:build speexdsp
// +build speexdsp

package speexdsp

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
)

/*
#cgo pkg-config: speexdsp
#include <speex/speex_preprocess.h>
*/
import "C"

const bytesPerSample = 2

// Processor drives one SpeexPreprocessState over 16-bit mono PCM at
// 16kHz. The state adapts its noise spectrum estimate and gain history
// from chunk to chunk, so chunks of one logical stream must arrive in
// order, and one Processor must not be shared between streams.
type Processor struct {
	Locker           sync.Mutex
	State            *C.SpeexPreprocessState
	ChunkSizeSamples int
	ChunkSizeBytes   int
}

var _ preprocess.Preprocessor = (*Processor)(nil)

func New(
	chunkSizeSamples int,
	autoGain float32,
	noiseSuppression int,
) (*Processor, error) {
	return NewWithConfig(chunkSizeSamples, Config{
		AutoGain:         autoGain,
		NoiseSuppression: noiseSuppression,
	})
}

func NewWithConfig(
	chunkSizeSamples int,
	cfg Config,
) (*Processor, error) {
	if chunkSizeSamples <= 0 {
		return nil, fmt.Errorf("%w: the chunk size must be positive, received %d samples", preprocess.ErrInvalidArgument, chunkSizeSamples)
	}

	state := C.speex_preprocess_state_init(C.int(chunkSizeSamples), C.int(SampleRate))
	if state == nil {
		return nil, fmt.Errorf("%w: speex_preprocess_state_init(%d, %d) returned NULL", preprocess.ErrInitializationFailure, chunkSizeSamples, SampleRate)
	}

	denoise := C.spx_int32_t(0)
	if cfg.NoiseSuppression != 0 {
		denoise = 1
	}
	C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_DENOISE, unsafe.Pointer(&denoise))
	if cfg.NoiseSuppression != 0 {
		level := C.spx_int32_t(cfg.NoiseSuppression)
		C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_NOISE_SUPPRESS, unsafe.Pointer(&level))
	}

	agc := C.spx_int32_t(0)
	if cfg.AutoGain > 0 {
		agc = 1
	}
	C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_AGC, unsafe.Pointer(&agc))
	if cfg.AutoGain > 0 {
		level := C.float(cfg.AutoGain)
		C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_AGC_LEVEL, unsafe.Pointer(&level))
	}

	if cfg.VAD {
		vad := C.spx_int32_t(1)
		C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_VAD, unsafe.Pointer(&vad))
		if cfg.VADProbStart > 0 {
			probStart := C.spx_int32_t(cfg.VADProbStart)
			C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_PROB_START, unsafe.Pointer(&probStart))
		}
		if cfg.VADProbContinue > 0 {
			probContinue := C.spx_int32_t(cfg.VADProbContinue)
			C.speex_preprocess_ctl(state, C.SPEEX_PREPROCESS_SET_PROB_CONTINUE, unsafe.Pointer(&probContinue))
		}
	}

	return &Processor{
		State:            state,
		ChunkSizeSamples: chunkSizeSamples,
		ChunkSizeBytes:   chunkSizeSamples * bytesPerSample,
	}, nil
}

func (p *Processor) Close() error {
	p.Locker.Lock()
	defer p.Locker.Unlock()
	if p.State == nil {
		return fmt.Errorf("double-free attempt")
	}
	C.speex_preprocess_state_destroy(p.State)
	p.State = nil
	return nil
}

func (p *Processor) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: SampleRate,
	}, nil
}

func (p *Processor) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (p *Processor) ChunkSize() uint {
	return uint(p.ChunkSizeBytes)
}

func (p *Processor) Process(ctx context.Context, input []byte, output []byte) (_ret float64, _err error) {
	logger.Tracef(ctx, "Process, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/Process, len:%d: %v %v", len(input), _ret, _err) }()

	if len(input) != p.ChunkSizeBytes {
		return 0, fmt.Errorf("%w: received %d bytes, expected %d (%d samples)", preprocess.ErrShapeMismatch, len(input), p.ChunkSizeBytes, p.ChunkSizeSamples)
	}
	if len(output) != p.ChunkSizeBytes {
		return 0, fmt.Errorf("%w: the output buffer is %d bytes, expected %d", preprocess.ErrShapeMismatch, len(output), p.ChunkSizeBytes)
	}

	// speex_preprocess_run mutates the buffer in place, so the caller's
	// memory is never handed to it directly.
	samples := make([]int16, p.ChunkSizeSamples)
	sampleBytes := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), p.ChunkSizeBytes)
	copy(sampleBytes, input)

	p.Locker.Lock()
	if p.State == nil {
		p.Locker.Unlock()
		return 0, fmt.Errorf("the processor is already closed")
	}
	activity := C.speex_preprocess_run(p.State, (*C.spx_int16_t)(unsafe.Pointer(&samples[0])))
	p.Locker.Unlock()

	copy(output, sampleBytes)
	return float64(activity), nil
}

func (p *Processor) ProcessChunk(ctx context.Context, input []byte) (*preprocess.ProcessedChunk, error) {
	output := make([]byte, p.ChunkSizeBytes)
	if _, err := p.Process(ctx, input, output); err != nil {
		return nil, err
	}
	return &preprocess.ProcessedChunk{Audio: output}, nil
}
