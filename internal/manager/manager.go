package manager

import (
	"context"
	"errors"
	"time"

	"github.com/pod-control/pcm/internal/audit"
	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/exchange"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/nonce"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// Manager is the command-orchestration core bound to exactly one pod. It
// owns the pod's single-permit conversation mutex, composes the message
// Builder and an exchange.Provider into therapy operations, and persists
// each exchange's result through a Repository.
type Manager struct {
	pod         *pod.Record
	provider    exchange.Provider
	repository  Repository
	nonceGen    *nonce.Generator
	ids         IDGenerator
	auditLogger *audit.Logger

	// mutex is a single-permit semaphore: StartConversation sends a token
	// into it to acquire, Conversation.Release receives to free it.
	mutex chan struct{}

	acquireTimeoutMs int64
	bolusWaitBaseMs, bolusWaitPerUnitMs int64
	primeWaitBaseMs, primeWaitPerUnitMs int64
}

// New binds a Manager to podRecord, provider, and repository. nonceGen must
// already be seeded from the pod's lot/serial (nil is valid before
// pairing assigns them; Pair reseeds it once lot/serial are known).
// auditLogger may be nil, in which case audit logging is a no-op.
func New(podRecord *pod.Record, provider exchange.Provider, repo Repository, nonceGen *nonce.Generator, auditLogger *audit.Logger, acquireTimeoutMs, bolusWaitBaseMs, bolusWaitPerUnitMs, primeWaitBaseMs, primeWaitPerUnitMs int64) *Manager {
	m := &Manager{
		pod:                  podRecord,
		provider:             provider,
		repository:           repo,
		nonceGen:             nonceGen,
		ids:                  uuidGenerator{},
		auditLogger:          auditLogger,
		mutex:                make(chan struct{}, 1),
		acquireTimeoutMs:     acquireTimeoutMs,
		bolusWaitBaseMs:      bolusWaitBaseMs,
		bolusWaitPerUnitMs:   bolusWaitPerUnitMs,
		primeWaitBaseMs:      primeWaitBaseMs,
		primeWaitPerUnitMs:   primeWaitPerUnitMs,
	}
	return m
}

// StartConversation acquires the pod's conversation mutex and returns a
// scoped Conversation over it. timeoutMs > 0 gives up after that many
// milliseconds; timeoutMs <= 0 falls back to the Manager's configured
// acquireTimeoutMs, and if that is also <= 0, waits unboundedly (bounded
// only by ctx). ok is false if the mutex could not be acquired within the
// bound.
func (m *Manager) StartConversation(ctx context.Context, timeoutMs int64, source conversation.RequestSource) (conv *conversation.Conversation, ok bool) {
	if !m.acquire(ctx, timeoutMs) {
		return nil, false
	}

	token := conversation.NewCancellationToken(ctx)
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		<-m.mutex
	}

	c := conversation.New(m.pod, source, release, token)
	m.pod.ActiveConversationID = m.ids.NewID()
	return c, true
}

func (m *Manager) acquire(ctx context.Context, timeoutMs int64) bool {
	if timeoutMs <= 0 {
		timeoutMs = m.acquireTimeoutMs
	}
	if timeoutMs <= 0 {
		select {
		case m.mutex <- struct{}{}:
			return true
		case <-ctx.Done():
			return false
		}
	}
	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case m.mutex <- struct{}{}:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// GetStandardParameters returns the baseline exchange Parameters every
// therapy operation starts from before applying per-call overrides.
func (m *Manager) GetStandardParameters() exchange.Parameters {
	return exchange.Parameters{
		Nonce:                    m.nonceGen,
		AllowAutoLevelAdjustment: true,
	}
}

func (m *Manager) statusRequest() message.Request {
	return message.NewBuilder().Status(message.StatusStandard).Build()
}

// runOp executes body, a therapy operation's exchange-driving logic,
// records any returned error onto conv rather than propagating it, and
// audit-logs the operation's terminal outcome, per spec.md §4.1.4's
// uniform operation boundary and §4.7's "one line per therapy-operation
// outcome."
func (m *Manager) runOp(conv *conversation.Conversation, operation string, body func() error) {
	err := body()
	if err != nil {
		conv.SetException(err)
	}
	m.logAuditOperation(m.pod.ID, operation, err)
}

func (m *Manager) logAuditOperation(podID, operation string, err error) {
	if m.auditLogger != nil {
		m.auditLogger.LogOperation(podID, operation, err)
	}
}

// performExchange drives one request through the provider: obtain a
// MessageExchange, initialize it, send the request, and parse the
// response into m.pod. If the parsed response leaves
// RuntimeVariables.NonceSync set, exactly one retry is attempted with a
// message-sequence override derived from the prior response's sequence
// (spec.md §4.1.2); if the pod still wants nonce renegotiation after that
// retry, the exchange fails with PodResponseUnexpected. The result is
// persisted through the Repository exactly once, win or lose, and
// returned on progress.
func (m *Manager) performExchange(ctx context.Context, conv *conversation.Conversation, req message.Request, params exchange.Parameters, progress *exchange.Progress) (*exchange.Progress, bool) {
	if progress == nil {
		progress = conv.NewExchange(req)
	} else {
		progress.Request = req
		conv.CurrentExchange = progress
	}
	progress.RequestTime = time.Now().UTC()
	progress.Running = true

	resp, err := m.exchangeOnce(ctx, req, params, progress)

	if err == nil && m.pod.RuntimeVariables.NonceSync != nil {
		if m.nonceGen != nil {
			m.nonceGen.Resync(*m.pod.RuntimeVariables.NonceSync)
		}
		retryParams := params
		seq := nextSequence(resp.Sequence)
		retryParams.MessageSequenceOverride = &seq
		resp, err = m.exchangeOnce(ctx, req, retryParams, progress)
		if err == nil && m.pod.RuntimeVariables.NonceSync != nil {
			err = podfault.PodResponseUnexpected("pod still requests nonce resync after retry")
		}
	}

	progress.Running = false
	progress.Finished = true
	progress.ResultTime = time.Now().UTC()
	progress.Success = err == nil
	progress.Exception = err

	result := &pod.Result{
		ID:            m.ids.NewID(),
		RequestTime:   progress.RequestTime,
		ResultTime:    progress.ResultTime,
		Success:       progress.Success,
		Exception:     progress.Exception,
		BasalSchedule: progress.BasalSchedule,
	}
	if resp != nil {
		result.ResponseFields = resp.Fields
	}
	progress.Result = result

	if m.repository != nil {
		_ = m.repository.Save(ctx, m.pod, result)
	}
	m.logAuditExchange(m.pod.ID, req.Opcode.String(), progress.Success, progress.Exception)

	return progress, progress.Success
}

func (m *Manager) logAuditExchange(podID, operation string, success bool, err error) {
	if m.auditLogger == nil {
		return
	}
	var errKind, detail string
	if err != nil {
		detail = err.Error()
		var fault *podfault.Fault
		if errors.As(err, &fault) {
			errKind = fault.Kind.Error()
		}
	}
	m.auditLogger.LogExchange(podID, operation, success, errKind, detail)
}

func (m *Manager) exchangeOnce(ctx context.Context, req message.Request, params exchange.Parameters, progress *exchange.Progress) (*exchange.Response, error) {
	mx, err := m.provider.GetMessageExchange(ctx, params, m.pod)
	if err != nil {
		return nil, podfault.RadioGeneric("acquire message exchange: %v", err)
	}
	if err := mx.InitializeExchange(ctx, progress); err != nil {
		return nil, err
	}
	resp, err := mx.GetResponse(ctx, req, progress)
	if err != nil {
		return nil, err
	}
	if err := mx.ParseResponse(ctx, resp, m.pod, progress); err != nil {
		return nil, err
	}
	return resp, nil
}

// nextSequence derives the retry message-sequence override from a prior
// response's sequence counter, wrapping within the 4-bit rolling range.
func nextSequence(prior uint8) uint8 {
	return (prior + 15) % 16
}

// lastExchangeErr returns the exception recorded on conv's current
// exchange, falling back to a generic radio fault if none was recorded.
func (m *Manager) lastExchangeErr(conv *conversation.Conversation) error {
	if conv.CurrentExchange != nil && conv.CurrentExchange.Exception != nil {
		return conv.CurrentExchange.Exception
	}
	return podfault.RadioGeneric("exchange failed with no recorded cause")
}

// sleepOrCancel waits for d or conv's cancellation token, whichever comes
// first. It returns false if canceled.
func (m *Manager) sleepOrCancel(conv *conversation.Conversation, d time.Duration) bool {
	if conv.Token == nil {
		time.Sleep(d)
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-conv.Token.Done():
		return false
	}
}

// computeWaitMs implements the shared bolus/purge/priming wait formula:
// (notDelivered/0.05) * perUnitMs + baseMs.
func computeWaitMs(notDelivered float64, baseMs, perUnitMs int64) int64 {
	steps := notDelivered / 0.05
	return int64(steps*float64(perUnitMs)) + baseMs
}

func toPodDate(t time.Time) message.PodDate {
	return message.PodDate{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

func derefUint32(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}
