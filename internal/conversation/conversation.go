package conversation

import (
	"time"

	"github.com/pod-control/pcm/internal/exchange"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
)

// RequestSource identifies who asked for this conversation.
type RequestSource int

const (
	SourceUser RequestSource = iota
	SourceAutomatic
	SourceRecovery
)

func (s RequestSource) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceAutomatic:
		return "automatic"
	case SourceRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// ReleaseFunc releases the pod's conversation mutex. It is safe to call
// more than once; only the first call has effect.
type ReleaseFunc func()

// Conversation is an exclusive session against one pod, encapsulating one
// or more exchanges. Created by Manager.StartConversation, destroyed by
// Release, which frees the pod's conversation mutex exactly once.
type Conversation struct {
	PodRecord     *pod.Record
	RequestSource RequestSource
	Started       time.Time

	CurrentExchange *exchange.Progress

	Canceled     bool
	Failed       bool
	CancelFailed_ bool
	Exception    error

	Token *CancellationToken

	release     ReleaseFunc
	releaseOnce bool
}

// New constructs a Conversation over podRecord, owning release as its
// scoped mutex release and token as its cancellation signal.
func New(podRecord *pod.Record, source RequestSource, release ReleaseFunc, token *CancellationToken) *Conversation {
	return &Conversation{
		PodRecord:     podRecord,
		RequestSource: source,
		Started:       time.Now().UTC(),
		Token:         token,
		release:       release,
	}
}

// NewExchange allocates a Progress for request, links it as the
// conversation's current exchange, and returns it.
func (c *Conversation) NewExchange(request message.Request) *exchange.Progress {
	p := &exchange.Progress{Request: request}
	c.CurrentExchange = p
	return p
}

// MarkFailed records a failure outcome. Monotonic: nothing in this type
// clears the flag once set.
func (c *Conversation) MarkFailed() {
	c.Failed = true
}

// MarkCanceled records a successful cancellation outcome.
func (c *Conversation) MarkCanceled() {
	c.Canceled = true
}

// CancelFailed marks that cancellation was attempted but the pod did not
// honor it (spec.md §5: "the conversation records 'cancel failed'").
func (c *Conversation) CancelFailed() {
	c.CancelFailed_ = true
}

// SetException records the exception outcome of a therapy operation. Per
// spec.md §4.1.4, operations catch any error at their boundary and assign
// it here rather than propagating it to the caller.
func (c *Conversation) SetException(err error) {
	if err == nil {
		return
	}
	c.Exception = err
}

// Release frees the pod's conversation mutex exactly once, regardless of
// how many times Release is called.
func (c *Conversation) Release() {
	if c.releaseOnce {
		return
	}
	c.releaseOnce = true
	if c.PodRecord != nil {
		c.PodRecord.ActiveConversationID = ""
	}
	if c.release != nil {
		c.release()
	}
}
