package preprocess

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
	"github.com/xaionaro-go/audiopreprocess/pkg/vad"
)

// VAD reports voice activity using the per-chunk verdict a Preprocessor
// computes anyway (and that ProcessChunk drops).
type VAD struct {
	preprocess.Preprocessor
	ChunkSize     uint
	ChunkDuration time.Duration
	Buffer        []byte
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD(
	ctx context.Context,
	preprocessor preprocess.Preprocessor,
) (*VAD, error) {
	chunkSize := preprocessor.ChunkSize()
	if chunkSize == 0 {
		return nil, fmt.Errorf("the preprocessor reports a zero chunk size")
	}
	channels, err := preprocessor.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get the amount of channels: %w", err)
	}
	encoding, err := preprocessor.Encoding(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get the encoding: %w", err)
	}
	encodingPCM, ok := encoding.(audio.EncodingPCM)
	if !ok {
		return nil, fmt.Errorf("the preprocessor encoding is not PCM: %T", encoding)
	}

	chunkSamples := uint64(chunkSize) / uint64(encodingPCM.BytesPerSample()) / uint64(channels)
	chunkDurationNS := uint64(1_000_000_000) * chunkSamples / uint64(encodingPCM.SampleRate)
	chunkDuration := time.Nanosecond * time.Duration(chunkDurationNS)
	logger.Debugf(ctx, "chunkSize:%d, chunkDuration:%v", chunkSize, chunkDuration)

	return &VAD{
		Preprocessor:  preprocessor,
		ChunkSize:     chunkSize,
		ChunkDuration: chunkDuration,
		Buffer:        make([]byte, chunkSize),
	}, nil
}

func (v *VAD) FindNextVoice(
	ctx context.Context,
	samples []byte,
	confidenceThreshold float64,
	minDuration time.Duration,
) (float64, time.Duration, error) {
	if len(samples) == 0 {
		return 0, -1, nil
	}

	var maxConfidence float64

	var foundVoiceFor time.Duration
	firstVoiceDetection := time.Duration(-1)

	chunkSize := v.ChunkSize
	chunkDuration := v.ChunkDuration
	for pos := 0; ; pos++ {
		if len(samples) < int(chunkSize) {
			return maxConfidence, firstVoiceDetection, nil
		}
		chunk := samples[:chunkSize]
		samples = samples[len(chunk):]
		voiceConfidence, err := v.Preprocessor.Process(ctx, chunk, v.Buffer)
		if err != nil {
			return maxConfidence, firstVoiceDetection, err
		}

		if voiceConfidence > maxConfidence {
			maxConfidence = voiceConfidence
		}

		if voiceConfidence >= confidenceThreshold {
			foundVoiceFor += chunkDuration
			if firstVoiceDetection < 0 {
				firstVoiceDetection = chunkDuration * time.Duration(pos)
			}
		}

		if foundVoiceFor >= minDuration {
			return maxConfidence, firstVoiceDetection, nil
		}
	}
}
