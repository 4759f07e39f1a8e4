package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/audiopreprocess/pkg/preprocess/implementations/speexdsp"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/observability"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	chunkSizeFlag := pflag.Int("chunk-size", 160, "chunk size in samples (the audio is 16kHz mono S16LE)")
	agcLevelFlag := pflag.Float32("agc-level", 0, "AGC target level; a value <= 0 disables AGC")
	noiseSuppressFlag := pflag.Int("noise-suppress", -30, "maximum noise attenuation in negative dB; 0 disables denoising")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <input-file> <output-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	input, err := readInput(pflag.Arg(0))
	assertNoError(err)

	preprocessor, err := speexdsp.New(*chunkSizeFlag, *agcLevelFlag, *noiseSuppressFlag)
	assertNoError(err)
	defer preprocessor.Close()

	chunkSize := int(preprocessor.ChunkSize())

	tailSize := len(input) % chunkSize
	if tailSize != 0 {
		input = append(input, make([]byte, chunkSize-tailSize)...)
	}

	output := make([]byte, 0, len(input))
	for offset := 0; offset < len(input); offset += chunkSize {
		chunk, err := preprocessor.ProcessChunk(ctx, input[offset:offset+chunkSize])
		assertNoError(err)
		output = append(output, chunk.Audio...)
	}

	err = writeOutput(ctx, pflag.Arg(1), output)
	assertNoError(err)
}

func readInput(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return readWAV(path)
	case ".ogg", ".oga":
		return readOggVorbis(path)
	default:
		return os.ReadFile(path)
	}
}

func readWAV(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("'%s' is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM buffer: %w", err)
	}
	if buf.Format.SampleRate != speexdsp.SampleRate {
		return nil, fmt.Errorf("the input must be %dHz, received %dHz", speexdsp.SampleRate, buf.Format.SampleRate)
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("the input must be mono, received %d channels", buf.Format.NumChannels)
	}
	if buf.SourceBitDepth != 16 {
		return nil, fmt.Errorf("the input must be 16-bit, received %d-bit", buf.SourceBitDepth)
	}

	pcm := make([]byte, len(buf.Data)*2)
	for idx, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[idx*2:], uint16(int16(sample)))
	}
	return pcm, nil
}

func readOggVorbis(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer file.Close()

	data, format, err := oggvorbis.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("unable to decode the vorbis stream: %w", err)
	}
	if format.SampleRate != speexdsp.SampleRate {
		return nil, fmt.Errorf("the input must be %dHz, received %dHz", speexdsp.SampleRate, format.SampleRate)
	}
	if format.Channels != 1 {
		return nil, fmt.Errorf("the input must be mono, received %d channels", format.Channels)
	}

	pcm := make([]byte, len(data)*2)
	for idx, sample := range data {
		v := sample * math.MaxInt16
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(pcm[idx*2:], uint16(int16(v)))
	}
	return pcm, nil
}

func writeOutput(ctx context.Context, path string, pcm []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", path, err)
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(path)) == ".wav" {
		buf := &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: 1,
				SampleRate:  speexdsp.SampleRate,
			},
			Data:           make([]int, len(pcm)/2),
			SourceBitDepth: 16,
		}
		for idx := range buf.Data {
			buf.Data[idx] = int(int16(binary.LittleEndian.Uint16(pcm[idx*2:])))
		}
		encoder := wav.NewEncoder(file, speexdsp.SampleRate, 16, 1, 1)
		if err := encoder.Write(buf); err != nil {
			return fmt.Errorf("unable to encode the WAV data: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("unable to finalize the WAV file: %w", err)
		}
		logger.Debugf(ctx, "wrote %d samples to '%s'", len(buf.Data), path)
		return nil
	}

	wc := datacounter.NewWriterCounter(file)
	if _, err := wc.Write(pcm); err != nil {
		return fmt.Errorf("unable to write the PCM data: %w", err)
	}
	logger.Debugf(ctx, "wrote %d bytes to '%s'", wc.Count(), path)
	return nil
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
