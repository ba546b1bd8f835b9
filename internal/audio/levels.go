package audio

import (
	"encoding/binary"
	"sync"
)

// LevelBuffer keeps the most recent per-frame sample levels of the audio
// being played, for the level meter. Frames with several channels are
// folded to the channel with the largest magnitude.
type LevelBuffer struct {
	mu     sync.RWMutex
	levels []int16
	next   int
	filled int
}

// NewLevelBuffer creates a buffer holding up to size frames.
func NewLevelBuffer(size int) *LevelBuffer {
	return &LevelBuffer{levels: make([]int16, max(size, 1))}
}

// WritePCM appends the frames of S16LE interleaved pcm. A trailing partial
// frame is ignored.
func (b *LevelBuffer) WritePCM(pcm []byte, channels int) {
	channels = max(channels, 1)
	frameSize := channels * 2
	frames := len(pcm) / frameSize

	if frames == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for f := range frames {
		frame := pcm[f*frameSize : (f+1)*frameSize]

		level := int16(binary.LittleEndian.Uint16(frame))
		for c := 1; c < channels; c++ {
			s := int16(binary.LittleEndian.Uint16(frame[c*2:]))
			if magnitude(s) > magnitude(level) {
				level = s
			}
		}

		b.levels[b.next] = level
		b.next = (b.next + 1) % len(b.levels)
		b.filled = min(b.filled+1, len(b.levels))
	}
}

// Recent returns up to n of the latest levels, oldest first.
func (b *LevelBuffer) Recent(n int) []int16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n = min(n, b.filled)
	if n <= 0 {
		return nil
	}

	size := len(b.levels)
	start := (b.next - n + size) % size
	out := make([]int16, n)

	for i := range out {
		out[i] = b.levels[(start+i)%size]
	}

	return out
}

// Len returns how many levels are held.
func (b *LevelBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.filled
}

// Reset drops every level.
func (b *LevelBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next, b.filled = 0, 0
}

func magnitude(s int16) int32 {
	if s < 0 {
		return -int32(s)
	}

	return int32(s)
}
