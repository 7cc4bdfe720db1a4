package param

import (
	"fmt"
	"math"
)

// Smoother ramps a value linearly toward a target over a fixed time,
// producing per-sample values free of zipper noise. It performs no
// allocation after construction, so Next and Fill are safe on the audio
// thread.
type Smoother struct {
	rampSeconds float64
	sampleRate  float64

	current   float64
	target    float64
	step      float64
	remaining int
}

// NewSmoother creates a smoother that reaches a new target after
// rampSeconds. A zero ramp snaps immediately.
func NewSmoother(rampSeconds float64) (*Smoother, error) {
	if rampSeconds < 0 || math.IsNaN(rampSeconds) || math.IsInf(rampSeconds, 0) {
		return nil, fmt.Errorf("smoother ramp must be >= 0 seconds: %f", rampSeconds)
	}
	return &Smoother{rampSeconds: rampSeconds}, nil
}

// Configure sets the sample rate and cancels any ramp in progress.
// Until the first Configure call targets are applied immediately.
func (s *Smoother) Configure(sampleRate float64) {
	if sampleRate > 0 && !math.IsNaN(sampleRate) && !math.IsInf(sampleRate, 0) {
		s.sampleRate = sampleRate
	} else {
		s.sampleRate = 0
	}
	s.current = s.target
	s.step = 0
	s.remaining = 0
}

// Reset snaps the current value and target to v.
func (s *Smoother) Reset(v float64) {
	s.current = v
	s.target = v
	s.step = 0
	s.remaining = 0
}

// SetTarget starts a ramp from the current value to v.
func (s *Smoother) SetTarget(v float64) {
	s.target = v

	samples := int(math.Round(s.rampSeconds * s.sampleRate))
	if samples < 1 {
		s.current = v
		s.step = 0
		s.remaining = 0
		return
	}

	s.step = (v - s.current) / float64(samples)
	s.remaining = samples
}

// Next advances the ramp by one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.remaining > 0 {
		s.current += s.step
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		}
	}
	return s.current
}

// Fill writes one smoothed value per element into dst.
func (s *Smoother) Fill(dst []float64) {
	if s.remaining == 0 {
		for i := range dst {
			dst[i] = s.current
		}
		return
	}
	for i := range dst {
		dst[i] = s.Next()
	}
}

// IsSmoothing reports whether a ramp is still in progress.
func (s *Smoother) IsSmoothing() bool {
	return s.remaining > 0
}

// Value returns the current value without advancing the ramp.
func (s *Smoother) Value() float64 {
	return s.current
}
