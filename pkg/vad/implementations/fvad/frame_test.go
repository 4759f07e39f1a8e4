package fvad

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

func TestValidateFrameDuration(t *testing.T) {
	for _, frameDuration := range []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
	} {
		require.NoError(t, validateFrameDuration(frameDuration), frameDuration)
	}

	for _, frameDuration := range []time.Duration{
		0,
		time.Millisecond,
		15 * time.Millisecond,
		40 * time.Millisecond,
		time.Second,
		-10 * time.Millisecond,
	} {
		require.Error(t, validateFrameDuration(frameDuration), frameDuration)
	}
}

func TestFrameSizeBytes(t *testing.T) {
	for _, testCase := range []struct {
		SampleRate    audio.SampleRate
		FrameDuration time.Duration
		Expected      uint
	}{
		{8000, 20 * time.Millisecond, 320},
		{16000, 10 * time.Millisecond, 320},
		{16000, 30 * time.Millisecond, 960},
		{32000, 10 * time.Millisecond, 640},
		{48000, 30 * time.Millisecond, 2880},
	} {
		t.Run(fmt.Sprintf("%dHz_%v", testCase.SampleRate, testCase.FrameDuration), func(t *testing.T) {
			require.Equal(t, testCase.Expected, frameSizeBytes(testCase.SampleRate, testCase.FrameDuration))
		})
	}
}
