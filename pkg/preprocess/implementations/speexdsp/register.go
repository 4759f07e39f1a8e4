//go:build speexdsp
// +build speexdsp

package speexdsp

import (
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
)

type Factory struct{}

var _ preprocess.Factory = Factory{}

func (Factory) NewPreprocessor(
	chunkSizeSamples int,
	autoGain float32,
	noiseSuppression int,
) (preprocess.Preprocessor, error) {
	p, err := New(chunkSizeSamples, autoGain, noiseSuppression)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func init() {
	preprocess.RegisterFactory(100, Factory{})
}
