package speexdsp

// SampleRate is the only sample rate this wrapper drives libspeexdsp at.
const SampleRate = 16000

// Config holds the one-time configuration of a Processor. There is no
// setter surface: libspeexdsp keeps adapting from these values on its own.
type Config struct {
	// AutoGain is the AGC target level; a value <= 0 disables AGC.
	AutoGain float32

	// NoiseSuppression is the maximum attenuation of the noise floor in
	// negative dB (e.g. -30); 0 disables denoising.
	NoiseSuppression int

	// VAD enables the voice activity detector; its verdict is reported
	// through Process.
	VAD bool

	// VADProbStart and VADProbContinue tune the detector in percent
	// (ignored when zero or when VAD is off).
	VADProbStart    int
	VADProbContinue int
}
