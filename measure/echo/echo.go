// Package echo analyzes impulse responses captured from a delayed
// dry/wet mix and recovers the delay parameters, both in the time
// domain (peak picking) and the frequency domain (comb notch spacing).
//
// The analysis is offline tooling and is not safe for real-time audio
// threads.
package echo

import (
	"errors"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by echo analysis functions.
var (
	ErrEmptyResponse     = errors.New("echo: impulse response is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrNoEcho            = errors.New("echo: no echo found above the detection floor")
	ErrNoNotches         = errors.New("echo: too few comb notches to estimate a delay")
)

// defaultFloor is the minimum peak magnitude relative to the response
// maximum for a sample to count as direct sound or echo.
const defaultFloor = 1e-4

// Result holds the detected direct sound and dominant echo.
type Result struct {
	DirectIndex  int     // sample index of the direct sound
	DirectLevel  float64 // signed amplitude at DirectIndex
	EchoIndex    int     // sample index of the dominant echo
	EchoLevel    float64 // signed amplitude at EchoIndex
	DelaySamples int     // EchoIndex - DirectIndex
	DelaySeconds float64 // DelaySamples / SampleRate
	Mix          float64 // wet ratio estimated from the two levels
}

// Analyzer recovers slap delay parameters from impulse response data.
type Analyzer struct {
	SampleRate float64

	// Floor overrides the relative detection floor; zero keeps the
	// default.
	Floor float64
}

// NewAnalyzer creates an analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Analyze locates the direct sound and the dominant echo in ir.
//
// A mixed slap delay response has exactly these two spikes: the direct
// path scaled by 1-wet and the echo scaled by wet. A fully wet response
// carries a single spike and yields ErrNoEcho.
func (a *Analyzer) Analyze(ir []float64) (Result, error) {
	if len(ir) == 0 {
		return Result{}, ErrEmptyResponse
	}
	if a.SampleRate <= 0 {
		return Result{}, ErrInvalidSampleRate
	}

	floor := a.Floor
	if floor <= 0 {
		floor = defaultFloor
	}

	maxAbs := 0.0
	for _, v := range ir {
		if av := math.Abs(v); av > maxAbs {
			maxAbs = av
		}
	}
	if maxAbs == 0 {
		return Result{}, ErrNoEcho
	}

	threshold := maxAbs * floor

	direct := -1
	for i, v := range ir {
		if math.Abs(v) >= threshold {
			direct = i
			break
		}
	}

	echo := -1
	echoAbs := 0.0
	for i := direct + 1; i < len(ir); i++ {
		if av := math.Abs(ir[i]); av >= threshold && av > echoAbs {
			echo = i
			echoAbs = av
		}
	}
	if echo < 0 {
		return Result{}, ErrNoEcho
	}

	directAbs := math.Abs(ir[direct])
	r := Result{
		DirectIndex:  direct,
		DirectLevel:  ir[direct],
		EchoIndex:    echo,
		EchoLevel:    ir[echo],
		DelaySamples: echo - direct,
		DelaySeconds: float64(echo-direct) / a.SampleRate,
	}
	if directAbs+echoAbs > 0 {
		r.Mix = echoAbs / (directAbs + echoAbs)
	}
	return r, nil
}

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// CombSpectrum returns the magnitude spectrum of ir, zero padded to the
// next power of two. The result holds the non-negative-frequency bins
// [0..Nyquist], so an input padded to N yields N/2+1 values.
//
// A delayed mix turns the flat spectrum of an impulse into a comb whose
// notch spacing encodes the delay time; see EstimateDelaySeconds.
func CombSpectrum(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyResponse
	}

	fftSize := nextPowerOf2(len(ir))
	if fftSize < 2 {
		fftSize = 2
	}

	in := make([]complex128, fftSize)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, err
	}

	bins := fftSize/2 + 1
	mag := make([]float64, bins)
	re, im, buf := getScratch(bins)
	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	vecmath.Magnitude(mag, re, im)
	putScratch(buf)

	return mag, nil
}

// EstimateDelaySeconds recovers the delay time from a comb magnitude
// spectrum as produced by CombSpectrum. It averages the spacing of the
// spectral notches; at least two notches are required.
func EstimateDelaySeconds(mag []float64, sampleRate float64) (float64, error) {
	if len(mag) < 3 {
		return 0, ErrNoNotches
	}
	if sampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	fftSize := 2 * (len(mag) - 1)
	notches := findNotches(mag)
	if len(notches) < 2 {
		return 0, ErrNoNotches
	}

	spacing := float64(notches[len(notches)-1]-notches[0]) / float64(len(notches)-1)
	if spacing <= 0 {
		return 0, ErrNoNotches
	}

	delaySamples := float64(fftSize) / spacing
	return delaySamples / sampleRate, nil
}

// findNotches returns indices of local minima that dip below half the
// spectral mean.
func findNotches(mag []float64) []int {
	mean := 0.0
	for _, v := range mag {
		mean += v
	}
	mean /= float64(len(mag))
	threshold := mean / 2

	var notches []int
	for i := 1; i < len(mag)-1; i++ {
		if mag[i] < threshold && mag[i] <= mag[i-1] && mag[i] < mag[i+1] {
			notches = append(notches, i)
		}
	}
	return notches
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
