package audio_test

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/audio"
	"github.com/stretchr/testify/require"
)

func pcm(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}

	return out
}

func TestLevelBuffer_Mono(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(10)
	buf.WritePCM(pcm(1, 2, 3, 4, 5), 1)

	require.Equal(t, []int16{1, 2, 3, 4, 5}, buf.Recent(5))
	require.Equal(t, []int16{4, 5}, buf.Recent(2))
	require.Equal(t, []int16{1, 2, 3, 4, 5}, buf.Recent(50))
	require.Equal(t, 5, buf.Len())
}

func TestLevelBuffer_StereoKeepsLouderChannel(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(10)
	buf.WritePCM(pcm(100, -300, 7, 5, -32768, 32767), 2)

	require.Equal(t, []int16{-300, 7, -32768}, buf.Recent(3))
}

func TestLevelBuffer_PartialFrameIgnored(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(10)
	buf.WritePCM([]byte{0x01, 0x00, 0x02}, 1)
	buf.WritePCM(pcm(9), 2)

	require.Equal(t, []int16{1}, buf.Recent(5))
}

func TestLevelBuffer_Wraparound(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(5)
	buf.WritePCM(pcm(1, 2), 1)
	buf.WritePCM(pcm(3, 4), 1)
	buf.WritePCM(pcm(5, 6, 7), 1)

	require.Equal(t, []int16{3, 4, 5, 6, 7}, buf.Recent(5))
	require.Equal(t, 5, buf.Len())
}

func TestLevelBuffer_EmptyAndReset(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(4)
	require.Nil(t, buf.Recent(3))

	buf.WritePCM(nil, 1)
	require.Zero(t, buf.Len())

	buf.WritePCM(pcm(1, 2, 3), 1)
	require.Nil(t, buf.Recent(0))
	require.Nil(t, buf.Recent(-1))

	buf.Reset()
	require.Zero(t, buf.Len())
	require.Nil(t, buf.Recent(3))
}

func TestLevelBuffer_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	buf := audio.NewLevelBuffer(1000)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	go func() {
		counter := int16(0)
		for ctx.Err() == nil {
			buf.WritePCM(pcm(counter, counter+1, counter+2), 1)
			counter += 3
		}
	}()

	for ctx.Err() == nil {
		_ = buf.Recent(10)
	}
}
