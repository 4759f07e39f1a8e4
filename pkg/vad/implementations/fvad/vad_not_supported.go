//go:build !fvad
// +build !fvad

package fvad

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
	preprocessvad "github.com/xaionaro-go/audiopreprocess/pkg/vad/implementations/preprocess"
)

type VAD = preprocessvad.VAD

func New(
	sampleRate audio.SampleRate,
	frameDuration time.Duration,
	mode int,
) (*VAD, error) {
	return nil, fmt.Errorf("built without tag 'fvad'")
}
