// Package param provides automatable float parameters with lock-free
// value storage, display formatting and per-sample smoothing.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Float is an automatable parameter with a linear plain-value range.
//
// The current value is stored atomically: a host or UI thread may write
// it while the audio thread reads it, without locking.
type Float struct {
	name   string
	unit   string
	min    float64
	max    float64
	def    float64
	step   float64
	format func(float64) string

	bits atomic.Uint64
}

// Option configures a Float.
type Option func(*Float)

// WithUnit sets the display unit appended by Format.
func WithUnit(unit string) Option {
	return func(p *Float) {
		p.unit = unit
	}
}

// WithStepSize quantizes stored values to multiples of step above the
// range minimum. Non-positive steps are ignored.
func WithStepSize(step float64) Option {
	return func(p *Float) {
		if step > 0 {
			p.step = step
		}
	}
}

// WithFormatter sets a custom display formatter for plain values.
func WithFormatter(format func(float64) string) Option {
	return func(p *Float) {
		if format != nil {
			p.format = format
		}
	}
}

// NewFloat creates a parameter with the given plain range and default.
func NewFloat(name string, min, max, def float64, opts ...Option) (*Float, error) {
	if name == "" {
		return nil, fmt.Errorf("param name must not be empty")
	}
	if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("param range must be finite: [%f, %f]", min, max)
	}
	if min >= max {
		return nil, fmt.Errorf("param range must satisfy min < max: [%f, %f]", min, max)
	}
	if math.IsNaN(def) || def < min || def > max {
		return nil, fmt.Errorf("param default must be in [%f, %f]: %f", min, max, def)
	}

	p := &Float{name: name, min: min, max: max, def: def}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.storePlain(def)
	return p, nil
}

// Name returns the parameter name.
func (p *Float) Name() string { return p.name }

// Unit returns the display unit, possibly empty.
func (p *Float) Unit() string { return p.unit }

// Min returns the plain range minimum.
func (p *Float) Min() float64 { return p.min }

// Max returns the plain range maximum.
func (p *Float) Max() float64 { return p.max }

// Default returns the default plain value.
func (p *Float) Default() float64 { return p.def }

// StepSize returns the quantization step, or 0 for continuous values.
func (p *Float) StepSize() float64 { return p.step }

// Set stores a plain value, clamped to the range and quantized to the
// step size when one is configured.
func (p *Float) Set(value float64) {
	if math.IsNaN(value) {
		value = p.def
	}
	if value < p.min {
		value = p.min
	}
	if value > p.max {
		value = p.max
	}
	if p.step > 0 {
		value = p.min + math.Round((value-p.min)/p.step)*p.step
		if value > p.max {
			value = p.max
		}
	}
	p.storePlain(value)
}

// Value returns the current plain value.
func (p *Float) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// SetNormalized stores a value from its normalized [0, 1] form.
func (p *Float) SetNormalized(normalized float64) {
	if math.IsNaN(normalized) {
		normalized = 0
	}
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	p.Set(p.min + normalized*(p.max-p.min))
}

// Normalized returns the current value mapped to [0, 1].
func (p *Float) Normalized() float64 {
	return (p.Value() - p.min) / (p.max - p.min)
}

// Reset restores the default value.
func (p *Float) Reset() {
	p.storePlain(p.def)
}

// Format renders the current value for display, using the configured
// formatter or two decimals by default, with the unit appended.
func (p *Float) Format() string {
	v := p.Value()

	var s string
	if p.format != nil {
		s = p.format(v)
	} else {
		s = strconv.FormatFloat(v, 'f', 2, 64)
	}

	if p.unit != "" {
		return s + " " + p.unit
	}
	return s
}

func (p *Float) storePlain(value float64) {
	p.bits.Store(math.Float64bits(value))
}
