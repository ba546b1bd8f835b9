package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// mp3SampleRates are the rates the MP3 encoder accepts.
var mp3SampleRates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

// mp3BatchFrames bounds how many frames are handed to the encoder at once.
const mp3BatchFrames = 16384

// EncodeMP3 transcodes clip to MP3 and writes the frames to w.
func EncodeMP3(w io.Writer, clip Clip) error {
	if w == nil {
		return errors.New("output writer cannot be nil")
	}

	if !slices.Contains(mp3SampleRates, clip.SampleRate) {
		return fmt.Errorf("%w: mp3 cannot encode %d Hz", ErrUnsupportedFormat, clip.SampleRate)
	}

	// The encoder is always run as stereo: its mono path advances by the
	// stereo stride and garbles the output.
	stereo := clip.Stereo()
	enc := mp3encoder.NewEncoder(clip.SampleRate, 2)

	slog.Debug("encoding mp3",
		"sampleRate", clip.SampleRate,
		"channels", clip.Channels,
		"frames", clip.Frames())

	for start := 0; start < len(stereo); start += mp3BatchFrames * 2 {
		end := min(start+mp3BatchFrames*2, len(stereo))

		if err := enc.Write(w, stereo[start:end]); err != nil {
			return fmt.Errorf("failed to encode audio to MP3: %w", err)
		}
	}

	return nil
}
