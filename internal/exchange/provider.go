package exchange

import (
	"context"

	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
)

// MessageExchange performs one initialize -> send -> receive -> parse
// cycle against the radio. Implementations are supplied per call by a
// Provider; the on-air codec and radio driver behind them are external
// collaborators (spec.md §1).
type MessageExchange interface {
	// InitializeExchange performs best-effort radio/channel setup.
	InitializeExchange(ctx context.Context, progress *Progress) error

	// GetResponse sends request and returns the parsed-free response. It
	// reports progress by mutating the supplied Progress as needed.
	GetResponse(ctx context.Context, request message.Request, progress *Progress) (*Response, error)

	// ParseResponse updates podRecord.LastStatus from response, and may
	// set podRecord.RuntimeVariables.NonceSync if the pod requested nonce
	// renegotiation.
	ParseResponse(ctx context.Context, response *Response, podRecord *pod.Record, progress *Progress) error
}

// Provider yields a configured MessageExchange for one call, given the
// exchange parameters and the pod it targets.
type Provider interface {
	GetMessageExchange(ctx context.Context, params Parameters, podRecord *pod.Record) (MessageExchange, error)
}
