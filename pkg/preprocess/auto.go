package preprocess

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/audiopreprocess/pkg/audio"
)

// NewAuto returns a Preprocessor from the first registered factory that
// initializes successfully. When no factory works (e.g. the binary was
// built without any backend enabled), a pass-through Dummy of the requested
// chunk size is returned instead.
func NewAuto(
	ctx context.Context,
	chunkSizeSamples int,
	autoGain float32,
	noiseSuppression int,
) Preprocessor {
	var mErr *multierror.Error
	for _, factory := range Factories() {
		p, err := factory.NewPreprocessor(chunkSizeSamples, autoGain, noiseSuppression)
		logger.Debugf(ctx, "initializing preprocessor via %T result is %v", factory, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize via %T: %w", factory, err))
			continue
		}
		return p
	}

	logger.Infof(ctx, "was unable to initialize any preprocessor: %v", mErr.ErrorOrNil())
	chunkSize := uint(0)
	if chunkSizeSamples > 0 {
		chunkSize = uint(chunkSizeSamples) * 2
	}
	return NewDummy(
		audio.EncodingPCM{
			PCMFormat:  audio.PCMFormatS16LE,
			SampleRate: 16000,
		},
		1,
		chunkSize,
	)
}
