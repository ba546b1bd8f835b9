package audio_test

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAV_RoundTrip(t *testing.T) {
	t.Parallel()

	clip := audio.Clip{SampleRate: 22050, Channels: 2, Samples: []int16{1, -1, 300, -300, 32767, -32768}}

	var buf bytes.Buffer
	require.NoError(t, audio.EncodeWAV(&buf, clip))
	assert.Equal(t, 44+len(clip.Samples)*2, buf.Len())

	got, err := audio.DecodeWAV(&buf)
	require.NoError(t, err)
	assert.Equal(t, clip, got)
}

func TestDecodeWAV_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	var src bytes.Buffer
	require.NoError(t, audio.EncodeWAV(&src, audio.Clip{SampleRate: 8000, Channels: 1, Samples: []int16{5, 6, 7}}))
	raw := src.Bytes()

	// splice an odd-sized LIST chunk between fmt and data
	var spliced bytes.Buffer
	spliced.Write(raw[:36])
	spliced.WriteString("LIST")
	require.NoError(t, binary.Write(&spliced, binary.LittleEndian, uint32(3)))
	spliced.Write([]byte{'a', 'b', 'c', 0})
	spliced.Write(raw[36:])

	got, err := audio.DecodeWAV(&spliced)
	require.NoError(t, err)
	assert.Equal(t, []int16{5, 6, 7}, got.Samples)
}

func TestDecodeWAV_Errors(t *testing.T) {
	t.Parallel()

	_, err := audio.DecodeWAV(bytes.NewReader([]byte("ID3 not a wav file at all")))
	assert.ErrorContains(t, err, "not a wav file")

	var buf bytes.Buffer
	require.NoError(t, audio.EncodeWAV(&buf, audio.Clip{SampleRate: 8000, Channels: 1, Samples: []int16{1}}))
	raw := buf.Bytes()
	binary.LittleEndian.PutUint16(raw[34:], 8) // bits per sample

	_, err = audio.DecodeWAV(bytes.NewReader(raw))
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)

	_, err = audio.DecodeWAV(bytes.NewReader(raw[:20]))
	assert.Error(t, err)
}

func TestClip_Stereo(t *testing.T) {
	t.Parallel()

	mono := audio.Clip{SampleRate: 8000, Channels: 1, Samples: []int16{1, 2, 3}}
	assert.Equal(t, []int16{1, 1, 2, 2, 3, 3}, mono.Stereo())

	stereo := audio.Clip{SampleRate: 8000, Channels: 2, Samples: []int16{1, 2, 3, 4}}
	assert.Equal(t, []int16{1, 2, 3, 4}, stereo.Stereo())

	surround := audio.Clip{SampleRate: 8000, Channels: 3, Samples: []int16{1, 2, 3, 4, 5, 6}}
	assert.Equal(t, []int16{1, 2, 4, 5}, surround.Stereo())
}

func TestTone(t *testing.T) {
	t.Parallel()

	clip := audio.Tone(16000, 440, 250*time.Millisecond)

	assert.Equal(t, 4000, clip.Frames())
	assert.Equal(t, 250*time.Millisecond, clip.Duration())
	assert.Equal(t, int16(0), clip.Samples[0])
	assert.NotZero(t, clip.Samples[10])
}

func TestEncodeMP3(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, audio.EncodeMP3(&buf, audio.Tone(16000, 440, time.Second)))

	require.Greater(t, buf.Len(), 2)
	// MPEG frame sync
	assert.Equal(t, byte(0xFF), buf.Bytes()[0])
	assert.Equal(t, byte(0xE0), buf.Bytes()[1]&0xE0)
}

func TestEncodeMP3_UnsupportedRate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := audio.EncodeMP3(&buf, audio.Tone(12345, 440, 10*time.Millisecond))
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}
