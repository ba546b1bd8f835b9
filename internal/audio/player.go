package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alkime/voiceover/pkg/channels"
	"github.com/alkime/voiceover/pkg/uictl"
)

// levelWindow is how many recent frames the level meter keeps.
const levelWindow = 4096

// Player streams a clip to an Output.
type Player struct {
	out  Output
	clip Clip
	pcm  []byte

	pos    atomic.Int64 // byte offset into pcm
	paused atomic.Bool

	levels   *LevelBuffer
	finished chan struct{}

	mu     sync.Mutex
	opened bool
}

// NewPlayer prepares clip for playback on out.
func NewPlayer(out Output, clip Clip) (*Player, error) {
	if out == nil {
		return nil, errors.New("output cannot be nil")
	}

	if clip.Channels <= 0 || clip.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, clip.Channels, clip.SampleRate)
	}

	pcm := make([]byte, len(clip.Samples)*2)
	for i, s := range clip.Samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	return &Player{
		out:      out,
		clip:     clip,
		pcm:      pcm,
		levels:   NewLevelBuffer(levelWindow),
		finished: make(chan struct{}, 1),
	}, nil
}

// Start opens the output and begins playback. Playback stops when ctx is
// cancelled.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.opened {
		if err := p.out.Open(ConfigFor(p.clip), p.fill); err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}

		p.opened = true

		go func() {
			<-ctx.Done()
			_ = p.Close()
		}()
	}

	if err := p.out.Start(); err != nil {
		return fmt.Errorf("failed to start output: %w", err)
	}

	return nil
}

// Wait blocks until the whole clip has been played or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	_, err := channels.Recv(ctx, p.finished)
	return err
}

// Finished signals once the last sample has been handed to the output.
func (p *Player) Finished() <-chan struct{} {
	return p.finished
}

// Close stops playback and releases the output.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.opened {
		return nil
	}

	err := p.out.Stop()
	p.out.Close()
	p.opened = false

	if err != nil {
		return fmt.Errorf("failed to stop output: %w", err)
	}

	return nil
}

// Playing is a knob that reads true while playback is not paused.
func (p *Player) Playing() uictl.Knob {
	return playingKnob{p: p}
}

// Progress reports played frames out of the clip's total.
func (p *Player) Progress() uictl.CappedDial[int64] {
	return progressDial{p: p}
}

// Levels exposes the most recently played samples.
func (p *Player) Levels() uictl.Levels[int16] {
	return levelReader{p: p}
}

// Clip returns the clip being played.
func (p *Player) Clip() Clip {
	return p.clip
}

func (p *Player) fill(out []byte) {
	if p.paused.Load() {
		clear(out)
		return
	}

	pos := p.pos.Load()
	n := copy(out, p.pcm[pos:])
	clear(out[n:])

	if n > 0 {
		p.levels.WritePCM(out[:n], p.clip.Channels)
		p.pos.Add(int64(n))
	}

	if n < len(out) {
		_ = channels.SendNonBlock(p.finished, struct{}{})
	}
}

func (p *Player) frameBytes() int64 {
	return int64(p.clip.Channels * 2)
}

type playingKnob struct{ p *Player }

func (k playingKnob) Read() bool { return !k.p.paused.Load() }
func (k playingKnob) On()        { k.p.paused.Store(false) }
func (k playingKnob) Off()       { k.p.paused.Store(true) }

func (k playingKnob) Toggle() {
	for {
		cur := k.p.paused.Load()
		if k.p.paused.CompareAndSwap(cur, !cur) {
			return
		}
	}
}

type progressDial struct{ p *Player }

func (d progressDial) Read() int64 {
	return d.p.pos.Load() / d.p.frameBytes()
}

func (d progressDial) Cap() (num, max int64) {
	return d.Read(), int64(d.p.clip.Frames())
}

type levelReader struct{ p *Player }

func (l levelReader) Read() []int16 {
	return l.p.levels.Recent(levelWindow)
}
