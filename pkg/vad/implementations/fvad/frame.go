package fvad

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

func validateFrameDuration(frameDuration time.Duration) error {
	switch frameDuration {
	case 10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond:
		return nil
	default:
		return fmt.Errorf("libfvad accepts only frames of 10ms, 20ms or 30ms, received %v", frameDuration)
	}
}

func frameSizeBytes(
	sampleRate audio.SampleRate,
	frameDuration time.Duration,
) uint {
	samplesPerFrame := uint64(sampleRate) * uint64(frameDuration) / uint64(time.Second)
	return uint(samplesPerFrame) * 2
}
