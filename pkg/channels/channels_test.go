package channels_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/voiceover/pkg/channels"
	"github.com/stretchr/testify/assert"
)

func TestSendNonBlock(t *testing.T) {
	t.Run("buffered channel with capacity", func(t *testing.T) {
		ch := make(chan int, 2)
		assert.NoError(t, channels.SendNonBlock(ch, 42))
		assert.Equal(t, 42, <-ch)
	})

	t.Run("full buffered channel", func(t *testing.T) {
		ch := make(chan int, 1)
		ch <- 1
		assert.ErrorIs(t, channels.SendNonBlock(ch, 42), channels.ErrChannelFull)
	})

	t.Run("unbuffered with no receiver", func(t *testing.T) {
		ch := make(chan int)
		assert.ErrorIs(t, channels.SendNonBlock(ch, 42), channels.ErrChannelFull)
	})

	t.Run("closed channel keeps buffered data", func(t *testing.T) {
		ch := make(chan int, 2)
		ch <- 1
		close(ch)
		assert.ErrorIs(t, channels.SendNonBlock(ch, 42), channels.ErrChannelClosed)
		assert.Equal(t, 1, <-ch)
	})
}

func TestRecv(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		ch := make(chan string, 1)
		ch <- "done"

		v, err := channels.Recv(context.Background(), ch)
		assert.NoError(t, err)
		assert.Equal(t, "done", v)
	})

	t.Run("closed", func(t *testing.T) {
		ch := make(chan string)
		close(ch)

		_, err := channels.Recv(context.Background(), ch)
		assert.ErrorIs(t, err, channels.ErrChannelClosed)
	})

	t.Run("context ends first", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		_, err := channels.Recv(ctx, make(chan int))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
