// Package channels has small helpers for signalling over channels.
package channels

import (
	"context"
	"errors"
)

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)

// SendNonBlock delivers msg only if ch can take it right away. A send on a
// closed channel reports ErrChannelClosed instead of panicking.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// Recv waits for the next value on ch or for ctx to end. A closed channel
// reports ErrChannelClosed.
func Recv[T any](ctx context.Context, ch <-chan T) (T, error) {
	var zero T

	select {
	case v, ok := <-ch:
		if !ok {
			return zero, ErrChannelClosed
		}

		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
