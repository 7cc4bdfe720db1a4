package plugin

import (
	"fmt"

	"github.com/cwbudde/algo-slapdelay/dsp/delay"
	"github.com/cwbudde/algo-slapdelay/dsp/param"
)

// Parameter ranges and defaults declared to the host.
const (
	MinDelayTimeMs     = 1.0
	MaxDelayTimeMs     = 1000.0
	DefaultDelayTimeMs = 120.0

	MinDryWet     = 0.0
	MaxDryWet     = 1.0
	DefaultDryWet = 0.1
	DryWetStep    = 0.001
)

const (
	stereoChannels = 2

	// Ramp length applied to host parameter changes before they reach
	// the engine, keeping delay-time and mix jumps click free.
	smoothingSeconds = 0.02
)

// Processor is the block-level adapter a host wrapper drives: it owns
// the two automatable parameters, their smoothers and the stereo delay
// engine, and resolves parameter values into the per-frame slices the
// engine consumes.
type Processor struct {
	info Info

	delayTime *param.Float
	dryWet    *param.Float

	timeSmoother *param.Smoother
	mixSmoother  *param.Smoother

	engine *delay.Engine

	// Preallocated per-block scratch, sized by Initialize.
	timeRamp []float64
	mixRamp  []float64
	views    [][]float64
	maxBlock int
}

// NewProcessor creates an uninitialized slap delay processor. Call
// Initialize once the host has negotiated a sample rate and a maximum
// block size.
func NewProcessor() (*Processor, error) {
	delayTime, err := param.NewFloat("Delay Time",
		MinDelayTimeMs, MaxDelayTimeMs, DefaultDelayTimeMs,
		param.WithUnit("ms"),
		param.WithFormatter(param.Rounded(1)))
	if err != nil {
		return nil, fmt.Errorf("delay time param: %w", err)
	}

	dryWet, err := param.NewFloat("Dry/Wet",
		MinDryWet, MaxDryWet, DefaultDryWet,
		param.WithStepSize(DryWetStep),
		param.WithFormatter(param.Rounded(1)))
	if err != nil {
		return nil, fmt.Errorf("dry/wet param: %w", err)
	}

	timeSmoother, err := param.NewSmoother(smoothingSeconds)
	if err != nil {
		return nil, fmt.Errorf("delay time smoother: %w", err)
	}

	mixSmoother, err := param.NewSmoother(smoothingSeconds)
	if err != nil {
		return nil, fmt.Errorf("dry/wet smoother: %w", err)
	}

	engine, err := delay.NewEngine(stereoChannels)
	if err != nil {
		return nil, fmt.Errorf("delay engine: %w", err)
	}

	return &Processor{
		info:         DefaultInfo(),
		delayTime:    delayTime,
		dryWet:       dryWet,
		timeSmoother: timeSmoother,
		mixSmoother:  mixSmoother,
		engine:       engine,
	}, nil
}

// Info returns the plugin descriptor.
func (p *Processor) Info() Info { return p.info }

// Buses returns the fixed stereo bus layout.
func (p *Processor) Buses() []BusInfo { return StereoLayout() }

// DelayTime returns the delay time parameter in milliseconds.
func (p *Processor) DelayTime() *param.Float { return p.delayTime }

// DryWet returns the dry/wet mix parameter.
func (p *Processor) DryWet() *param.Float { return p.dryWet }

// SampleRate returns the sample rate from the last Initialize call.
func (p *Processor) SampleRate() float64 { return p.engine.SampleRate() }

// TailSamples returns the effect tail length a host should render after
// the input stops, which is the full delay buffer.
func (p *Processor) TailSamples() int { return p.engine.Len() }

// Initialize configures the engine and smoothers for a stream. It is
// called on stream start and on every sample-rate change, never
// concurrently with ProcessBlock. All per-block scratch is allocated
// here so the audio path stays allocation free.
func (p *Processor) Initialize(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("max block size must be > 0: %d", maxBlockSize)
	}

	p.engine.Configure(sampleRate)

	p.timeSmoother.Configure(sampleRate)
	p.timeSmoother.Reset(p.delayTime.Value())
	p.mixSmoother.Configure(sampleRate)
	p.mixSmoother.Reset(p.dryWet.Value())

	p.timeRamp = make([]float64, maxBlockSize)
	p.mixRamp = make([]float64, maxBlockSize)
	p.views = make([][]float64, stereoChannels)
	p.maxBlock = maxBlockSize

	return nil
}

// SetDelayTime updates the delay time parameter in milliseconds and
// starts a smoothing ramp toward it.
func (p *Processor) SetDelayTime(ms float64) {
	p.delayTime.Set(ms)
	p.timeSmoother.SetTarget(p.delayTime.Value())
}

// SetDryWet updates the dry/wet mix parameter and starts a smoothing
// ramp toward it.
func (p *Processor) SetDryWet(mix float64) {
	p.dryWet.Set(mix)
	p.mixSmoother.SetTarget(p.dryWet.Value())
}

// ProcessBlock processes one block of stereo audio in place. Blocks
// larger than the initialized maximum are handled in chunks. Before
// Initialize the block passes through dry.
func (p *Processor) ProcessBlock(block [][]float64) {
	if len(block) == 0 {
		return
	}
	if p.maxBlock == 0 {
		return
	}

	channels := len(block)
	if channels > stereoChannels {
		channels = stereoChannels
	}
	frames := len(block[0])

	views := p.views[:channels]
	for off := 0; off < frames; off += p.maxBlock {
		n := frames - off
		if n > p.maxBlock {
			n = p.maxBlock
		}

		p.timeSmoother.Fill(p.timeRamp[:n])
		p.mixSmoother.Fill(p.mixRamp[:n])

		for c := 0; c < channels; c++ {
			views[c] = block[c][off : off+n]
		}

		p.engine.ProcessBlock(views, p.timeRamp[:n], p.mixRamp[:n])
	}
}

// SetActive arms or disarms the processor. Deactivating clears the
// delay history so a restarted stream does not replay stale audio.
func (p *Processor) SetActive(active bool) {
	if !active {
		p.engine.Reset()
	}
}
