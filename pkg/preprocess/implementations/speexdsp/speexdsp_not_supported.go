//go:build !speexdsp
// +build !speexdsp

package speexdsp

import (
	"fmt"

	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
)

type Processor = preprocess.Dummy

func New(
	chunkSizeSamples int,
	autoGain float32,
	noiseSuppression int,
) (*Processor, error) {
	return nil, fmt.Errorf("built without tag 'speexdsp'")
}

func NewWithConfig(
	chunkSizeSamples int,
	cfg Config,
) (*Processor, error) {
	return nil, fmt.Errorf("built without tag 'speexdsp'")
}
