package replyengine

import "context"

// Engine abstracts the hosted language model that produces stand-in replies
// for busy recipients.
type Engine interface {
	// Complete generates a reply for the given prompt. Implementations may
	// block until the model responds or ctx is done; the caller owns the
	// deadline.
	Complete(ctx context.Context, prompt string) (string, error)
}
