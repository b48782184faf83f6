package fake

import (
	"context"
	"sync"

	"github.com/pod-control/pcm/internal/exchange"
	"github.com/pod-control/pcm/internal/message"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// CallRecord is one recorded request, in the order Provider received it.
type CallRecord struct {
	Opcode message.Opcode
	Params interface{}
}

// Responder computes the pod's response to one request. It returns the
// status the pod now reports, optional extra response fields (used by
// tests to signal a nonce resync via the "__nonce_resync" key holding a
// uint16 seed hint), and an error to fail the exchange outright.
type Responder func(req message.Request, podRecord *pod.Record) (pod.Status, map[string]interface{}, error)

// Provider is a scriptable exchange.Provider: every request is recorded,
// optionally short-circuited by a per-opcode simulated error, and
// otherwise answered by Responder.
type Provider struct {
	mu        sync.Mutex
	calls     []CallRecord
	responder Responder
	simulate  map[message.Opcode]error
}

// NewProvider wraps responder as a Provider.
func NewProvider(responder Responder) *Provider {
	return &Provider{
		responder: responder,
		simulate:  make(map[message.Opcode]error),
	}
}

// SetErrorSimulation makes every exchange of the given opcode fail with
// err until ClearErrorSimulation is called.
func (p *Provider) SetErrorSimulation(opcode message.Opcode, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.simulate[opcode] = err
}

// ClearErrorSimulation removes a previously set simulated error.
func (p *Provider) ClearErrorSimulation(opcode message.Opcode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.simulate, opcode)
}

// Calls returns a copy of every request recorded so far, in order.
func (p *Provider) Calls() []CallRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CallRecord, len(p.calls))
	copy(out, p.calls)
	return out
}

// GetMessageExchange implements exchange.Provider.
func (p *Provider) GetMessageExchange(ctx context.Context, params exchange.Parameters, podRecord *pod.Record) (exchange.MessageExchange, error) {
	return &messageExchange{provider: p, podRecord: podRecord}, nil
}

type messageExchange struct {
	provider  *Provider
	podRecord *pod.Record
}

func (m *messageExchange) InitializeExchange(ctx context.Context, progress *exchange.Progress) error {
	return nil
}

func (m *messageExchange) GetResponse(ctx context.Context, request message.Request, progress *exchange.Progress) (*exchange.Response, error) {
	p := m.provider
	p.mu.Lock()
	p.calls = append(p.calls, CallRecord{Opcode: request.Opcode, Params: request.Params})
	simErr := p.simulate[request.Opcode]
	p.mu.Unlock()

	if simErr != nil {
		return nil, simErr
	}

	status, fields, err := p.responder(request, m.podRecord)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["__status"] = status

	return &exchange.Response{Sequence: status.MessageSequence, Fields: fields}, nil
}

func (m *messageExchange) ParseResponse(ctx context.Context, response *exchange.Response, podRecord *pod.Record, progress *exchange.Progress) error {
	status, ok := response.Fields["__status"].(pod.Status)
	if !ok {
		return podfault.PodResponseUnexpected("fake exchange: response carried no status")
	}
	s := status
	podRecord.LastStatus = &s

	if hint, ok := response.Fields["__nonce_resync"].(uint16); ok {
		v := hint
		podRecord.RuntimeVariables.NonceSync = &v
	} else {
		podRecord.RuntimeVariables.NonceSync = nil
	}
	return nil
}
