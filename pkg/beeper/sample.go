// Package beeper plays a tone while the machine's sound timer is running.
package beeper

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// SampleRate is the output rate of the audio context.
const SampleRate = 44100

// DefaultFrequency is the pitch of the built in tone.
const DefaultFrequency = 440

var (
	ErrUnsupportedFormat = errors.New("beeper: unsupported sample format")
	ErrEmptySample       = errors.New("beeper: sample has no audio")
)

// Sample is mono PCM in [-1, 1], looped while the beeper is on.
type Sample struct {
	buf *goaudio.Float32Buffer
}

func newSample(data []float32, rate int) *Sample {
	return &Sample{buf: &goaudio.Float32Buffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}}
}

// decodedSample rejects audio the player cannot loop or resample.
func decodedSample(data []float32, rate int) (*Sample, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, rate)
	}
	if len(data) == 0 {
		return nil, ErrEmptySample
	}
	return newSample(data, rate), nil
}

func (s *Sample) SampleRate() int {
	return s.buf.Format.SampleRate
}

func (s *Sample) Len() int {
	return len(s.buf.Data)
}

// SquareTone returns one tenth of a second of a square wave at freq.
func SquareTone(freq float64, rate int) *Sample {
	n := rate / 10
	data := make([]float32, n)
	for i := range data {
		phase := math.Mod(float64(i)*freq/float64(rate), 1)
		if phase < 0.5 {
			data[i] = 0.25
		} else {
			data[i] = -0.25
		}
	}
	return newSample(data, rate)
}

// LoadSample reads a WAV or MP3 file, chosen by extension.
func LoadSample(filename string) (*Sample, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// DecodeWAV decodes the first channel of a PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Sample, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("wav: %w", ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	chans := max(int(dec.NumChans), 1)
	scale := float32(int(1) << (max(int(dec.BitDepth), 1) - 1))

	floatBuf := buf.AsFloat32Buffer()
	data := make([]float32, 0, len(floatBuf.Data)/chans)
	for i := 0; i < len(floatBuf.Data); i += chans {
		data = append(data, floatBuf.Data[i]/scale)
	}
	s, err := decodedSample(data, int(dec.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return s, nil
}

// DecodeMP3 decodes the left channel of an MP3 stream.
func DecodeMP3(r io.Reader) (*Sample, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	// The decoder always produces 16 bit little endian stereo.
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	data := make([]float32, 0, len(pcm)/4)
	for i := 0; i+1 < len(pcm); i += 4 {
		v := int16(binary.LittleEndian.Uint16(pcm[i:]))
		data = append(data, float32(v)/32768)
	}
	s, err := decodedSample(data, dec.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return s, nil
}

// Resample converts the sample to rate by nearest neighbour.
func (s *Sample) Resample(rate int) *Sample {
	if rate <= 0 || rate == s.SampleRate() || s.SampleRate() <= 0 || s.Len() == 0 {
		return s
	}
	n := int(int64(s.Len()) * int64(rate) / int64(s.SampleRate()))
	data := make([]float32, n)
	for i := range data {
		data[i] = s.buf.Data[int(int64(i)*int64(s.SampleRate())/int64(rate))]
	}
	return newSample(data, rate)
}

// PCM16Stereo encodes the sample as interleaved 16 bit little endian stereo.
func (s *Sample) PCM16Stereo() []byte {
	out := make([]byte, 0, s.Len()*4)
	for _, v := range s.buf.Data {
		v = min(max(v, -1), 1)
		u := uint16(int16(v * math.MaxInt16))
		out = binary.LittleEndian.AppendUint16(out, u)
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}
