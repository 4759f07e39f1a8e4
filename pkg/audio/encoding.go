package audio

import (
	"time"
)

type Encoding interface {
	BytesPerSample() uint
	BytesForDuration(time.Duration) uint64
}

type EncodingPCM struct {
	PCMFormat  PCMFormat
	SampleRate SampleRate
}

var _ Encoding = EncodingPCM{}

func (enc EncodingPCM) BytesPerSample() uint {
	return enc.PCMFormat.Size()
}

func (enc EncodingPCM) BytesForDuration(d time.Duration) uint64 {
	samples := uint64(enc.SampleRate) * uint64(d) / uint64(time.Second)
	return samples * uint64(enc.BytesPerSample())
}

// DurationForBytes is the inverse of BytesForDuration (for one channel).
func (enc EncodingPCM) DurationForBytes(b uint64) time.Duration {
	samples := b / uint64(enc.BytesPerSample())
	return time.Duration(samples * uint64(time.Second) / uint64(enc.SampleRate))
}
