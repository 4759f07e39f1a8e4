//go:build fvad
// +build fvad

package fvad

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/josharian/fvad"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	"github.com/xaionaro-go/audiopreprocess/pkg/vad"
)

// VAD detects voice via libfvad (the WebRTC voice activity detector). It
// consumes 16-bit mono PCM and yields binary confidences (0 or 1).
type VAD struct {
	Detector        *fvad.Detector
	SampleRateValue audio.SampleRate
	FrameDuration   time.Duration
}

var _ vad.VAD = (*VAD)(nil)

// New initializes a detector. libfvad accepts sample rates 8000, 16000,
// 32000 and 48000Hz, frames of 10ms, 20ms or 30ms, and modes from
// 0 ("quality") to 3 ("very aggressive").
func New(
	sampleRate audio.SampleRate,
	frameDuration time.Duration,
	mode int,
) (*VAD, error) {
	if err := validateFrameDuration(frameDuration); err != nil {
		return nil, err
	}

	d := fvad.NewDetector()
	if err := d.SetSampleRate(int(sampleRate)); err != nil {
		d.Close()
		return nil, fmt.Errorf("unable to set the sample rate to %d: %w", sampleRate, err)
	}
	if err := d.SetMode(mode); err != nil {
		d.Close()
		return nil, fmt.Errorf("unable to set the mode to %d: %w", mode, err)
	}

	return &VAD{
		Detector:        d,
		SampleRateValue: sampleRate,
		FrameDuration:   frameDuration,
	}, nil
}

func (v *VAD) Close() error {
	v.Detector.Close()
	return nil
}

func (v *VAD) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatS16LE,
		SampleRate: v.SampleRateValue,
	}, nil
}

func (v *VAD) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (v *VAD) FrameSize() uint {
	return frameSizeBytes(v.SampleRateValue, v.FrameDuration)
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

	frameSize := v.FrameSize()
	for pos := 0; ; pos++ {
		if len(samples) < int(frameSize) {
			return maxConfidence, firstVoiceDetection, nil
		}
		frame := samples[:frameSize]
		samples = samples[len(frame):]
		active, err := v.Detector.Process(
			unsafe.Slice((*int16)(unsafe.Pointer(&frame[0])), len(frame)/2),
		)
		if err != nil {
			return maxConfidence, firstVoiceDetection, fmt.Errorf("unable to process a frame: %w", err)
		}

		voiceConfidence := float64(0)
		if active {
			voiceConfidence = 1
		}
		if voiceConfidence > maxConfidence {
			maxConfidence = voiceConfidence
		}

		if voiceConfidence >= confidenceThreshold {
			foundVoiceFor += v.FrameDuration
			if firstVoiceDetection < 0 {
				firstVoiceDetection = v.FrameDuration * time.Duration(pos)
			}
		}

		if foundVoiceFor >= minDuration {
			return maxConfidence, firstVoiceDetection, nil
		}
	}
}
