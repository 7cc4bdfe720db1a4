package plugin

import (
	"math"
	"testing"
)

func newInitialized(t *testing.T, sampleRate float64, maxBlock int) *Processor {
	t.Helper()

	p, err := NewProcessor()
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	if err := p.Initialize(sampleRate, maxBlock); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return p
}

func stereoBlock(frames int) [][]float64 {
	return [][]float64{make([]float64, frames), make([]float64, frames)}
}

// --- declaration surface ---

func TestProcessorDefaults(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	if got := p.DelayTime().Value(); got != 120 {
		t.Fatalf("delay time default: got %v want 120", got)
	}
	if got := p.DelayTime().Format(); got != "120.0 ms" {
		t.Fatalf("delay time display: got %q want %q", got, "120.0 ms")
	}

	if got := p.DryWet().Value(); got != 0.1 {
		t.Fatalf("dry/wet default: got %v want 0.1", got)
	}
	if got := p.DryWet().Format(); got != "0.1" {
		t.Fatalf("dry/wet display: got %q want %q", got, "0.1")
	}

	if got := p.Info().Category; got != "Fx|Delay" {
		t.Fatalf("category: got %q", got)
	}

	buses := p.Buses()
	if len(buses) != 2 {
		t.Fatalf("bus count: got %d want 2", len(buses))
	}
	for _, b := range buses {
		if b.Channels != 2 {
			t.Fatalf("bus %q channels: got %d want 2", b.Name, b.Channels)
		}
	}
	if buses[0].Direction != BusInput || buses[1].Direction != BusOutput {
		t.Fatal("bus directions not stereo in/out")
	}
}

func TestParameterClampAndStep(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	p.SetDelayTime(5000)
	if got := p.DelayTime().Value(); got != 1000 {
		t.Fatalf("delay time clamp: got %v want 1000", got)
	}
	p.SetDelayTime(0)
	if got := p.DelayTime().Value(); got != 1 {
		t.Fatalf("delay time clamp: got %v want 1", got)
	}

	p.SetDryWet(0.1234)
	if got := p.DryWet().Value(); math.Abs(got-0.123) > 1e-12 {
		t.Fatalf("dry/wet step: got %v want 0.123", got)
	}
}

// --- lifecycle ---

func TestInitializeValidation(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Initialize(0, 512); err == nil {
		t.Fatal("expected error for sample rate 0")
	}
	if err := p.Initialize(48000, 0); err == nil {
		t.Fatal("expected error for max block size 0")
	}
}

func TestProcessBeforeInitializeLeavesAudioUntouched(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	block := stereoBlock(16)
	block[0][3] = 0.5
	p.ProcessBlock(block)

	if block[0][3] != 0.5 {
		t.Fatalf("got %v want 0.5", block[0][3])
	}
}

// --- end to end ---

// TestImpulseEcho runs a unit impulse through the full processor with a
// fully wet mix and checks the echo position against the declared delay
// time. Parameters are set before Initialize so the smoothers start
// snapped to their targets.
func TestImpulseEcho(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}
	p.SetDelayTime(120)
	p.SetDryWet(1)
	if err := p.Initialize(48000, 512); err != nil {
		t.Fatal(err)
	}

	want := 5760 // round(120 * 0.001 * 48000)
	block := stereoBlock(want + 100)
	block[0][0] = 1
	block[1][0] = -1

	p.ProcessBlock(block)

	for i := range block[0] {
		switch {
		case i == want:
			if math.Abs(block[0][i]-1) > 1e-12 || math.Abs(block[1][i]+1) > 1e-12 {
				t.Fatalf("echo frame: got %v / %v", block[0][i], block[1][i])
			}
		default:
			if block[0][i] != 0 || block[1][i] != 0 {
				t.Fatalf("frame %d: got %v / %v want 0", i, block[0][i], block[1][i])
			}
		}
	}
}

// TestDryWetRampIsClickFree changes the mix mid-stream and expects the
// output to glide instead of jumping.
func TestDryWetRampIsClickFree(t *testing.T) {
	p := newInitialized(t, 48000, 2048)
	p.SetDelayTime(500)

	// Steady DC input; the delayed signal is still zero for the first
	// half second, so the output directly exposes 1-wet.
	frames := 1200
	block := stereoBlock(frames)
	for i := range block[0] {
		block[0][i] = 1
		block[1][i] = 1
	}

	p.SetDryWet(1)
	p.ProcessBlock(block)

	for i := 1; i < frames; i++ {
		if block[0][i] > block[0][i-1]+1e-12 {
			t.Fatalf("output not monotone during ramp at frame %d: %v -> %v",
				i, block[0][i-1], block[0][i])
		}
	}

	// 20 ms ramp at 48 kHz is 960 samples; after that the mix is fully
	// wet and the (still silent) delayed signal dominates.
	if got := block[0][frames-1]; math.Abs(got) > 1e-9 {
		t.Fatalf("tail: got %v want 0", got)
	}
}

func TestChunkingMatchesSingleBlock(t *testing.T) {
	render := func(maxBlock int) []float64 {
		p, err := NewProcessor()
		if err != nil {
			t.Fatal(err)
		}
		p.SetDelayTime(25)
		p.SetDryWet(0.5)
		if err := p.Initialize(8000, maxBlock); err != nil {
			t.Fatal(err)
		}

		frames := 1000
		block := stereoBlock(frames)
		for i := range block[0] {
			block[0][i] = math.Sin(float64(i) * 0.1)
			block[1][i] = math.Cos(float64(i) * 0.1)
		}
		p.ProcessBlock(block)
		return block[0]
	}

	small := render(64)
	large := render(4096)

	for i := range small {
		if small[i] != large[i] {
			t.Fatalf("frame %d: chunked %v single %v", i, small[i], large[i])
		}
	}
}

// --- real-time safety ---

func TestProcessBlockDoesNotAllocate(t *testing.T) {
	p := newInitialized(t, 48000, 512)
	p.SetDryWet(0.5)

	block := stereoBlock(512)
	allocs := testing.AllocsPerRun(100, func() {
		p.ProcessBlock(block)
	})
	if allocs != 0 {
		t.Fatalf("ProcessBlock allocates: %v allocs/run", allocs)
	}
}

func TestSetActiveClearsTail(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}
	p.SetDelayTime(10)
	p.SetDryWet(1)
	if err := p.Initialize(1000, 256); err != nil {
		t.Fatal(err)
	}

	block := stereoBlock(8)
	block[0][0] = 1
	p.ProcessBlock(block)

	p.SetActive(false)
	p.SetActive(true)

	tail := stereoBlock(64)
	p.ProcessBlock(tail)

	for i, v := range tail[0] {
		if v != 0 {
			t.Fatalf("frame %d: stale echo %v after reactivation", i, v)
		}
	}
}

func TestTailSamples(t *testing.T) {
	p := newInitialized(t, 48000, 512)
	if got := p.TailSamples(); got != 48048 {
		t.Fatalf("got %d want 48048", got)
	}
}
