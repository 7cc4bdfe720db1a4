// Command slapdemo runs audio through the slap delay and plays or
// stores the result.
//
// Usage:
//
//	slapdemo [flags]
//
// Without an input file it renders a click train, which makes the echo
// easy to hear. With -in it processes an MP3 file instead.
//
// Examples:
//
//	slapdemo -delay 120 -mix 0.3 -play
//	slapdemo -in groove.mp3 -delay 90 -mix 0.25 -out wet.wav
//	slapdemo -rate 96000 -seconds 2 -delay 250 -mix 0.5 -out slap.wav
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/cwbudde/algo-slapdelay/dsp/core"
	"github.com/cwbudde/algo-slapdelay/dsp/signal"
	"github.com/cwbudde/algo-slapdelay/plugin"
)

const demoBlockSize = 1024

func main() {
	var (
		rate    = flag.Float64("rate", 48000, "sample rate in Hz for generated input")
		delayMs = flag.Float64("delay", plugin.DefaultDelayTimeMs, "delay time in milliseconds (1-1000)")
		mix     = flag.Float64("mix", plugin.DefaultDryWet, "dry/wet mix (0-1)")
		seconds = flag.Float64("seconds", 3, "duration of the generated click train")
		gainDB  = flag.Float64("gain", 0, "output gain in dB")
		inPath  = flag.String("in", "", "input MP3 file (overrides the generated input)")
		outPath = flag.String("out", "", "output WAV file (PCM16)")
		play    = flag.Bool("play", false, "play the result on the default audio device")
	)
	flag.Parse()

	if err := run(*rate, *delayMs, *mix, *seconds, *gainDB, *inPath, *outPath, *play); err != nil {
		fmt.Fprintln(os.Stderr, "slapdemo:", err)
		os.Exit(1)
	}
}

func run(rate, delayMs, mix, seconds, gainDB float64, inPath, outPath string, play bool) error {
	if outPath == "" && !play {
		return fmt.Errorf("nothing to do: pass -out and/or -play")
	}

	var (
		left, right []float64
		err         error
	)
	if inPath != "" {
		left, right, rate, err = decodeMP3(inPath)
	} else {
		left, right, err = renderClicks(rate, seconds)
	}
	if err != nil {
		return err
	}

	proc, err := plugin.NewProcessor()
	if err != nil {
		return err
	}
	proc.SetDelayTime(delayMs)
	proc.SetDryWet(mix)
	if err := proc.Initialize(rate, demoBlockSize); err != nil {
		return err
	}

	fmt.Printf("%s: %s @ %s, %v Hz, %d frames\n",
		proc.Info().Name, proc.DelayTime().Format(), proc.DryWet().Format(),
		rate, len(left))

	block := [][]float64{nil, nil}
	for off := 0; off < len(left); off += demoBlockSize {
		end := off + demoBlockSize
		if end > len(left) {
			end = len(left)
		}
		block[0] = left[off:end]
		block[1] = right[off:end]
		proc.ProcessBlock(block)
	}

	if gainDB != 0 {
		gain := core.DBToLinear(gainDB)
		vecmath.ScaleBlock(left, left, gain)
		vecmath.ScaleBlock(right, right, gain)
	}

	pcm := interleaveInt16LE(left, right)

	if outPath != "" {
		wav := encodeWAVInt16LE(pcm, int(rate), 2)
		if err := os.WriteFile(outPath, wav, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", outPath, len(wav))
	}

	if play {
		if err := playPCM(pcm, int(rate)); err != nil {
			return err
		}
	}

	return nil
}

// renderClicks generates a stereo click train with one click per second
// on the left channel and one every two seconds on the right, so the
// two channels expose the shared delay independently.
func renderClicks(rate, seconds float64) (left, right []float64, err error) {
	if seconds <= 0 {
		return nil, nil, fmt.Errorf("seconds must be > 0: %f", seconds)
	}

	gen := signal.NewGenerator(core.WithSampleRate(rate), core.WithChannels(2))
	frames := int(rate * seconds)

	left, err = gen.ClickTrain(1.0, frames)
	if err != nil {
		return nil, nil, err
	}
	right, err = gen.ClickTrain(2.0, frames)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// decodeMP3 decodes the file into stereo float64 channels and reports
// the file's sample rate. go-mp3 always emits 16-bit stereo PCM.
func decodeMP3(path string) (left, right []float64, rate float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	frames := len(raw) / 4 // 2 channels x 2 bytes
	left = make([]float64, frames)
	right = make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		left[i] = float64(l) / 32768
		right[i] = float64(r) / 32768
	}
	return left, right, float64(dec.SampleRate()), nil
}

// interleaveInt16LE packs stereo float64 channels into interleaved
// little-endian PCM16 bytes, clipping to the valid range.
func interleaveInt16LE(left, right []float64) []byte {
	frames := len(left)
	if len(right) < frames {
		frames = len(right)
	}

	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(out[i*4:], uint16(toInt16(left[i])))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(toInt16(right[i])))
	}
	return out
}

func toInt16(v float64) int16 {
	s := math.Round(v * 32767)
	if s > 32767 {
		s = 32767
	}
	if s < -32768 {
		s = -32768
	}
	return int16(s)
}

// encodeWAVInt16LE wraps interleaved PCM16 bytes in a RIFF/WAVE header.
func encodeWAVInt16LE(pcm []byte, sampleRate, channels int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize

	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16) // bits per sample
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	copy(out[44:], pcm)
	return out
}

// playPCM plays interleaved PCM16 bytes on the default output device.
func playPCM(pcm []byte, sampleRate int) error {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
