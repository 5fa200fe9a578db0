package relay

import (
	"context"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/ratelimit"
)

// Sender is the single-recipient delivery used by a broadcast.
type Sender interface {
	SendText(ctx context.Context, recipient int64, text string) error
}

// BroadcastResult aggregates the outcome of one broadcast run.
type BroadcastResult struct {
	RunID     string
	Succeeded int
	Failed    int
}

func (r BroadcastResult) Total() int {
	return r.Succeeded + r.Failed
}

// Broadcaster sends one text to many recipients. Every recipient is an
// independent attempt: a failure is counted and the run moves on. Nothing is
// retried.
type Broadcaster struct {
	sender  Sender
	limiter ratelimit.Limiter
}

// NewBroadcaster paces sends to at most perSecond messages per second.
func NewBroadcaster(sender Sender, perSecond int) *Broadcaster {
	return &Broadcaster{
		sender:  sender,
		limiter: ratelimit.New(perSecond),
	}
}

// Broadcast delivers text to every recipient. Recipients not attempted
// because ctx ended are counted as failed.
func (b *Broadcaster) Broadcast(ctx context.Context, recipients []int64, text string) BroadcastResult {
	result := BroadcastResult{RunID: uuid.NewString()}
	logPrefix := "[Relay Broadcast:" + result.RunID + "]"
	log.Printf("%s Starting for %d recipient(s)", logPrefix, len(recipients))

	for i, recipient := range recipients {
		if err := ctx.Err(); err != nil {
			skipped := len(recipients) - i
			result.Failed += skipped
			log.Printf("%s Stopped early, %d recipient(s) not attempted: %v", logPrefix, skipped, err)
			break
		}

		b.limiter.Take()
		if err := b.sender.SendText(ctx, recipient, text); err != nil {
			result.Failed++
			log.Printf("%s Failed to send to %d: %v", logPrefix, recipient, err)
			continue
		}
		result.Succeeded++
	}

	if result.Failed > 0 && result.Succeeded == 0 && len(recipients) > 0 {
		sentry.CaptureMessage(logPrefix + " every send failed")
	}
	log.Printf("%s Done: %d succeeded, %d failed", logPrefix, result.Succeeded, result.Failed)
	return result
}
