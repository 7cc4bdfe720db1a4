// Package delay implements the slap delay engine: per-channel circular
// buffers sharing one write cursor, with a linear dry/wet crossfade
// between the input and the delayed signal.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-slapdelay/dsp/core"
)

// MaxDelaySeconds is the longest supported delay time. It covers the
// 1000 ms parameter ceiling plus a one millisecond safety margin.
const MaxDelaySeconds = 1.001

// Engine is a multichannel circular delay line. All channels share a
// single write cursor and a single delay length per frame, so they stay
// in lockstep; per-channel independent delay times are not supported.
type Engine struct {
	sampleRate float64
	buffers    [][]float64
	writePos   int
}

// NewEngine creates an engine with the given channel count.
//
// A fresh engine carries one-sample zeroed buffers so that processing
// before the first Configure call is harmless; call Configure to size
// the buffers for the actual sample rate.
func NewEngine(channels int) (*Engine, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("delay channels must be > 0: %d", channels)
	}
	e := &Engine{buffers: make([][]float64, channels)}
	for c := range e.buffers {
		e.buffers[c] = make([]float64, 1)
	}
	return e, nil
}

// Configure sizes the channel buffers for sampleRate and clears all
// state. The buffer length is ceil(sampleRate*MaxDelaySeconds), never
// below one sample, so a degenerate sample rate cannot produce an empty
// buffer. Safe to call repeatedly; must not run concurrently with
// ProcessBlock on the same engine.
func (e *Engine) Configure(sampleRate float64) {
	length := 1
	if sampleRate > 0 && !math.IsNaN(sampleRate) && !math.IsInf(sampleRate, 0) {
		length = int(math.Ceil(sampleRate * MaxDelaySeconds))
		if length < 1 {
			length = 1
		}
	} else {
		sampleRate = 0
	}

	e.sampleRate = sampleRate
	for c := range e.buffers {
		e.buffers[c] = core.EnsureLen(e.buffers[c], length)
		core.Zero(e.buffers[c])
	}
	e.writePos = 0
}

// ProcessBlock processes one block of audio in place.
//
// block holds one slice per channel, all with the same frame count.
// delayTimeMs and dryWet carry one value per frame for sample-accurate
// automation, or a single value applied to the whole block; when a
// slice is shorter than the block its last value is reused.
//
// For every frame the dry input is written into the delay line first
// and the delayed sample is read afterwards, so the line holds only dry
// history and a zero delay degenerates to a one-sample self-read-back.
// The delay in samples is clamped to [0, Len()-1] before indexing.
// This method performs no allocation and no locking.
func (e *Engine) ProcessBlock(block [][]float64, delayTimeMs, dryWet []float64) {
	if len(block) == 0 {
		return
	}

	frames := len(block[0])
	channels := len(e.buffers)
	if len(block) < channels {
		channels = len(block)
	}
	length := len(e.buffers[0])

	for i := 0; i < frames; i++ {
		wet := valueAt(dryWet, i)

		delaySamples := int(math.Round(valueAt(delayTimeMs, i) * 0.001 * e.sampleRate))
		delaySamples = core.ClampInt(delaySamples, 0, length-1)

		readPos := e.writePos + length - delaySamples
		if readPos >= length {
			readPos -= length
		}

		for c := 0; c < channels; c++ {
			buf := e.buffers[c]
			dry := block[c][i]
			buf[e.writePos] = dry
			block[c][i] = dry*(1-wet) + buf[readPos]*wet
		}

		e.writePos++
		if e.writePos >= length {
			e.writePos = 0
		}
	}
}

// Reset clears the channel buffers and the write cursor without
// touching the configured sample rate.
func (e *Engine) Reset() {
	for c := range e.buffers {
		core.Zero(e.buffers[c])
	}
	e.writePos = 0
}

// Len returns the per-channel buffer length in samples.
func (e *Engine) Len() int {
	return len(e.buffers[0])
}

// NumChannels returns the configured channel count.
func (e *Engine) NumChannels() int {
	return len(e.buffers)
}

// SampleRate returns the sample rate set by the last Configure call, or
// 0 before the first call.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// valueAt indexes a per-frame parameter slice, reusing the final value
// for frames past its end.
func valueAt(values []float64, i int) float64 {
	if len(values) == 0 {
		return 0
	}
	if i < len(values) {
		return values[i]
	}
	return values[len(values)-1]
}
