package preprocessstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/iamcalledrob/circular"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess"
	"github.com/xaionaro-go/observability"
)

// Stream pulls raw PCM from an input io.Reader, frames it into chunks of
// exactly Preprocessor.ChunkSize() bytes, rewrites them through the
// Preprocessor and exposes the processed PCM as an io.Reader again.
//
// An incomplete tail (when the input ends mid-chunk) is dropped with a
// warning: the preprocessor cannot accept partial chunks.
type Stream struct {
	preprocess.Preprocessor

	inputBufferLocker sync.Mutex
	inputBuffer       *circular.Buffer
	inputBufferSize   uint
	inputFinished     bool

	outputBufferLocker sync.Mutex
	outputBuffer       *circular.Buffer
	outputFinished     bool
	resultError        error

	readCtx    context.Context
	cancelFunc context.CancelFunc

	// readProgressedCh and processInputProgressedCh are guarded by
	// inputBufferLocker; the other two by outputBufferLocker.
	readProgressedCh          chan struct{}
	processInputProgressedCh  chan struct{}
	processOutputProgressedCh chan struct{}
	consumeProgressedCh       chan struct{}
}

var _ io.Reader = (*Stream)(nil)

func NewStream(
	ctx context.Context,
	input io.Reader,
	preprocessor preprocess.Preprocessor,
	inputBufferSize uint,
	outputBufferSize uint,
) (*Stream, error) {
	chunkSize := preprocessor.ChunkSize()
	if chunkSize == 0 {
		return nil, fmt.Errorf("the preprocessor reports a zero chunk size")
	}
	if inputBufferSize < chunkSize {
		return nil, fmt.Errorf("the input buffer (%d bytes) cannot hold even one chunk (%d bytes)", inputBufferSize, chunkSize)
	}
	if outputBufferSize < chunkSize {
		return nil, fmt.Errorf("the output buffer (%d bytes) cannot hold even one chunk (%d bytes)", outputBufferSize, chunkSize)
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	s := &Stream{
		Preprocessor:    preprocessor,
		inputBuffer:     circular.NewBuffer(int(inputBufferSize)),
		inputBufferSize: inputBufferSize,
		outputBuffer:    circular.NewBuffer(int(outputBufferSize)),
		readCtx:         ctx,
		cancelFunc:      cancelFunc,

		readProgressedCh:          make(chan struct{}),
		processInputProgressedCh:  make(chan struct{}),
		processOutputProgressedCh: make(chan struct{}),
		consumeProgressedCh:       make(chan struct{}),
	}
	// cancel only on failure: a clean EOF must let the processing loop
	// drain everything that is still buffered
	observability.Go(ctx, func(ctx context.Context) {
		if err := s.readerLoop(ctx, input); err != nil {
			s.setResultError(fmt.Errorf("got an error from the reader loop: %w", err))
			cancelFunc()
		}
	})
	observability.Go(ctx, func(ctx context.Context) {
		if err := s.processLoop(ctx); err != nil {
			s.setResultError(fmt.Errorf("got an error from the preprocessing loop: %w", err))
			cancelFunc()
		}
	})
	return s, nil
}

// Close stops the internal loops and closes the underlying Preprocessor.
func (s *Stream) Close() error {
	s.cancelFunc()
	return s.Preprocessor.Close()
}

func (s *Stream) setResultError(err error) {
	s.outputBufferLocker.Lock()
	defer s.outputBufferLocker.Unlock()
	if s.resultError == nil {
		s.resultError = err
	}
	s.signalProcessOutputProgressed()
}

func (s *Stream) readerLoop(
	ctx context.Context,
	input io.Reader,
) (_err error) {
	logger.Tracef(ctx, "readerLoop")
	defer func() { logger.Tracef(ctx, "/readerLoop: %v", _err) }()

	defer func() {
		s.inputBufferLocker.Lock()
		defer s.inputBufferLocker.Unlock()
		s.inputFinished = true
		s.signalReadProgressed()
	}()

	readBufSize := uint(65536)
	if s.inputBufferSize < readBufSize {
		readBufSize = s.inputBufferSize
	}
	readBuf := make([]byte, readBufSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := input.Read(readBuf)
		logger.Tracef(ctx, "readerLoop: Read(): %v %v", n, err)
		if n > 0 {
			if err := s.pushInput(ctx, readBuf[:n]); err != nil {
				return err
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("unable to read the input: %w", err)
		}
	}
}

func (s *Stream) pushInput(ctx context.Context, b []byte) error {
	s.inputBufferLocker.Lock()
	defer s.inputBufferLocker.Unlock()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		w, err := s.inputBuffer.Write(b)
		if err != nil {
			if errors.Is(err, circular.ErrNoSpace) {
				s.waitForProcessInputProgressed(ctx)
				continue
			}
			return fmt.Errorf("unable to write to the input ring: %w", err)
		}
		if w != len(b) {
			return fmt.Errorf("wrote != requested: %d != %d", w, len(b))
		}
		s.signalReadProgressed()
		return nil
	}
}

// waitForProcessInputProgressed must be called under inputBufferLocker.
func (s *Stream) waitForProcessInputProgressed(ctx context.Context) {
	ch := s.processInputProgressedCh
	s.inputBufferLocker.Unlock()
	defer s.inputBufferLocker.Lock()
	select {
	case <-ctx.Done():
	case <-ch:
	}
}

func (s *Stream) processLoop(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "processLoop")
	defer func() { logger.Tracef(ctx, "/processLoop: %v", _err) }()

	defer func() {
		s.outputBufferLocker.Lock()
		defer s.outputBufferLocker.Unlock()
		s.outputFinished = true
		s.signalProcessOutputProgressed()
	}()

	chunkSize := s.Preprocessor.ChunkSize()
	logger.Debugf(ctx, "chunkSize: %d", chunkSize)

	inputBuf := make([]byte, chunkSize)
	outputBuf := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ok, err := s.nextChunk(ctx, inputBuf)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if _, err := s.Preprocessor.Process(ctx, inputBuf, outputBuf); err != nil {
			return fmt.Errorf("unable to preprocess a chunk: %w", err)
		}

		if err := s.pushOutput(ctx, outputBuf); err != nil {
			return err
		}
	}
}

// nextChunk blocks until it gathered exactly one chunk from the input ring.
// It reports false (with no error) when the input ended before another full
// chunk could be gathered.
func (s *Stream) nextChunk(ctx context.Context, chunk []byte) (bool, error) {
	receivedCount := 0
	for {
		var waitCh chan struct{}
		var finished bool
		if err := func() error {
			s.inputBufferLocker.Lock()
			defer s.inputBufferLocker.Unlock()
			n, err := s.inputBuffer.Read(chunk[receivedCount:])
			waitCh = s.readProgressedCh
			finished = s.inputFinished
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("unable to read from the input ring: %w", err)
			}
			if n < 0 {
				return fmt.Errorf("received a negative count: %d", n)
			}
			receivedCount += n
			if n > 0 {
				s.signalProcessInputProgressed()
			}
			return nil
		}(); err != nil {
			return false, err
		}
		if receivedCount >= len(chunk) {
			return true, nil
		}
		if finished {
			if receivedCount > 0 {
				logger.Warnf(ctx, "dropping an incomplete tail of %d bytes (the chunk size is %d)", receivedCount, len(chunk))
			}
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-waitCh:
		}
	}
}

func (s *Stream) pushOutput(ctx context.Context, b []byte) error {
	s.outputBufferLocker.Lock()
	defer s.outputBufferLocker.Unlock()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		w, err := s.outputBuffer.Write(b)
		if err != nil {
			if errors.Is(err, circular.ErrNoSpace) {
				s.waitForConsumeProgressed(ctx)
				continue
			}
			return fmt.Errorf("unable to write to the output ring: %w", err)
		}
		if w != len(b) {
			return fmt.Errorf("wrote != requested: %d != %d", w, len(b))
		}
		s.signalProcessOutputProgressed()
		return nil
	}
}

// waitForConsumeProgressed must be called under outputBufferLocker.
func (s *Stream) waitForConsumeProgressed(ctx context.Context) {
	ch := s.consumeProgressedCh
	s.outputBufferLocker.Unlock()
	defer s.outputBufferLocker.Lock()
	select {
	case <-ctx.Done():
	case <-ch:
	}
}

// Read hands out processed PCM. It returns io.EOF only after the input
// ended and everything processed was consumed; a failure of the internal
// loops surfaces here once the buffered output is drained.
func (s *Stream) Read(pcm []byte) (_ret int, _err error) {
	logger.Tracef(s.readCtx, "Read, len:%d", len(pcm))
	defer func() { logger.Tracef(s.readCtx, "/Read, len:%d: %d, %v", len(pcm), _ret, _err) }()

	s.outputBufferLocker.Lock()
	defer s.outputBufferLocker.Unlock()

	for {
		n, err := s.outputBuffer.Read(pcm)
		if err == nil {
			s.signalConsumeProgressed()
			return n, nil
		}
		if !errors.Is(err, io.EOF) {
			return n, err
		}
		if s.resultError != nil {
			return 0, s.resultError
		}
		if s.outputFinished {
			return 0, io.EOF
		}
		waitCh := s.processOutputProgressedCh
		s.outputBufferLocker.Unlock()
		select {
		case <-s.readCtx.Done():
			s.outputBufferLocker.Lock()
			return 0, s.readCtx.Err()
		case <-waitCh:
		}
		s.outputBufferLocker.Lock()
	}
}

// the signal* helpers must be called under the locker that guards the
// corresponding channel.

func (s *Stream) signalReadProgressed() {
	oldCh := s.readProgressedCh
	s.readProgressedCh = make(chan struct{})
	close(oldCh)
}

func (s *Stream) signalProcessInputProgressed() {
	oldCh := s.processInputProgressedCh
	s.processInputProgressedCh = make(chan struct{})
	close(oldCh)
}

func (s *Stream) signalProcessOutputProgressed() {
	oldCh := s.processOutputProgressedCh
	s.processOutputProgressedCh = make(chan struct{})
	close(oldCh)
}

func (s *Stream) signalConsumeProgressed() {
	oldCh := s.consumeProgressedCh
	s.consumeProgressedCh = make(chan struct{})
	close(oldCh)
}
