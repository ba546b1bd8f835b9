package narration

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultPollInterval = time.Second
	DefaultPollAttempts = 20
)

// PollPolicy is a fixed-delay, fixed-count retry schedule.
type PollPolicy struct {
	Interval time.Duration
	Attempts int
}

// DefaultPollPolicy polls once a second, twenty times.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, Attempts: DefaultPollAttempts}
}

// backOff builds the schedule of waits between fetches: Attempts-1 waits
// of Interval, stopping early when ctx is done.
func (p PollPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := max(p.Attempts, 1)

	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(attempts-1)),
		ctx,
	)
}

// Waiter pauses for d or until ctx is done.
type Waiter func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Waiter.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollOutcome says how a poll sequence ended.
type PollOutcome int

const (
	// PollCompleted means the project finished with audio.
	PollCompleted PollOutcome = iota
	// PollFailed means the service gave up on the project.
	PollFailed
	// PollExhausted means every attempt saw the project still in progress.
	PollExhausted
	// PollAborted means a fetch failed and polling stopped.
	PollAborted
	// PollCanceled means ctx ended the sequence or the session it ran for
	// was logged out.
	PollCanceled
)

func (o PollOutcome) String() string {
	switch o {
	case PollCompleted:
		return "completed"
	case PollFailed:
		return "failed"
	case PollExhausted:
		return "exhausted"
	case PollAborted:
		return "aborted"
	case PollCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}
