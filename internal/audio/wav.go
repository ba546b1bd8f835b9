package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// ErrUnsupportedFormat is returned for WAV files that are not 16-bit PCM.
var ErrUnsupportedFormat = errors.New("unsupported wav format")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	bitsPerSample       = 16
)

// Clip is decoded 16-bit PCM audio. Samples are interleaved by channel.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames (one sample per channel).
func (c Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}

	return len(c.Samples) / c.Channels
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}

	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Stereo returns the samples as interleaved left/right pairs. Mono input is
// duplicated onto both channels; extra channels beyond two are dropped.
func (c Clip) Stereo() []int16 {
	if c.Channels == 2 {
		return c.Samples
	}

	frames := c.Frames()
	out := make([]int16, frames*2)

	for i := range frames {
		left := c.Samples[i*c.Channels]
		right := left
		if c.Channels > 1 {
			right = c.Samples[i*c.Channels+1]
		}

		out[i*2] = left
		out[i*2+1] = right
	}

	return out
}

type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// DecodeWAV reads a RIFF/WAVE stream holding 16-bit PCM.
func DecodeWAV(r io.Reader) (Clip, error) {
	var riff struct {
		ID     [4]byte
		Size   uint32
		Format [4]byte
	}

	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return Clip{}, fmt.Errorf("failed to read wav header: %w", err)
	}

	if string(riff.ID[:]) != "RIFF" || string(riff.Format[:]) != "WAVE" {
		return Clip{}, errors.New("not a wav file")
	}

	var (
		format  *fmtChunk
		samples []int16
	)

	for samples == nil {
		var hdr chunkHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return Clip{}, fmt.Errorf("failed to read wav chunk: %w", err)
		}

		// chunks are word aligned
		size := int64(hdr.Size) + int64(hdr.Size%2)

		switch string(hdr.ID[:]) {
		case "fmt ":
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return Clip{}, fmt.Errorf("failed to read fmt chunk: %w", err)
			}

			format = &fmtChunk{}
			if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, format); err != nil {
				return Clip{}, fmt.Errorf("failed to parse fmt chunk: %w", err)
			}

		case "data":
			if format == nil {
				return Clip{}, errors.New("wav data chunk before fmt chunk")
			}

			if err := checkFormat(format); err != nil {
				return Clip{}, err
			}

			samples = make([]int16, hdr.Size/2)
			if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
				return Clip{}, fmt.Errorf("failed to read samples: %w", err)
			}

		default:
			if _, err := io.CopyN(io.Discard, r, size); err != nil {
				return Clip{}, fmt.Errorf("failed to skip %q chunk: %w", hdr.ID[:], err)
			}
		}
	}

	return Clip{
		SampleRate: int(format.SampleRate),
		Channels:   int(format.Channels),
		Samples:    samples,
	}, nil
}

func checkFormat(f *fmtChunk) error {
	if f.AudioFormat != wavFormatPCM && f.AudioFormat != wavFormatExtensible {
		return fmt.Errorf("%w: encoding %d", ErrUnsupportedFormat, f.AudioFormat)
	}

	if f.BitsPerSample != bitsPerSample {
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, f.BitsPerSample)
	}

	if f.Channels == 0 || f.SampleRate == 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, f.Channels, f.SampleRate)
	}

	return nil
}

// EncodeWAV writes clip as a canonical 16-bit PCM WAV stream.
func EncodeWAV(w io.Writer, clip Clip) error {
	if clip.Channels <= 0 || clip.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, clip.Channels, clip.SampleRate)
	}

	dataSize := uint32(len(clip.Samples) * 2)
	blockAlign := uint16(clip.Channels * bitsPerSample / 8)

	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		36 + dataSize,
		[4]byte{'W', 'A', 'V', 'E'},
		chunkHeader{ID: [4]byte{'f', 'm', 't', ' '}, Size: 16},
		fmtChunk{
			AudioFormat:   wavFormatPCM,
			Channels:      uint16(clip.Channels),
			SampleRate:    uint32(clip.SampleRate),
			ByteRate:      uint32(clip.SampleRate) * uint32(blockAlign),
			BlockAlign:    blockAlign,
			BitsPerSample: bitsPerSample,
		},
		chunkHeader{ID: [4]byte{'d', 'a', 't', 'a'}, Size: dataSize},
		clip.Samples,
	}

	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write wav: %w", err)
		}
	}

	return nil
}

// Tone generates a mono sine wave at half amplitude.
func Tone(sampleRate int, freq float64, d time.Duration) Clip {
	n := int(d * time.Duration(sampleRate) / time.Second)
	samples := make([]int16, n)

	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		samples[i] = int16(v * math.MaxInt16 / 2)
	}

	return Clip{SampleRate: sampleRate, Channels: 1, Samples: samples}
}
