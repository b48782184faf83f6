package manager

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pod-control/pcm/internal/audit"
	"github.com/pod-control/pcm/internal/conversation"
	"github.com/pod-control/pcm/internal/exchange/fake"
	"github.com/pod-control/pcm/internal/nonce"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

type mockRepository struct {
	saved []*pod.Result
}

func (m *mockRepository) Save(ctx context.Context, podRecord *pod.Record, result *pod.Result) error {
	m.saved = append(m.saved, result)
	return nil
}

func newTestManager(sim *fake.Simulator) (*Manager, *fake.Provider, *mockRepository) {
	record := pod.NewRecord("pod-1", 0x1234)
	lot := uint32(11111)
	serial := uint32(22222)
	record.Lot = &lot
	record.Serial = &serial

	provider := fake.NewProvider(sim.Respond)
	repo := &mockRepository{}
	gen := nonce.New(lot, serial)

	m := New(record, provider, repo, gen, nil,
		1000, // acquireTimeoutMs
		1, 1, // bolusWaitBaseMs, bolusWaitPerUnitMs: tiny, tests don't wait for real protocol timing
		1, 1, // primeWaitBaseMs, primeWaitPerUnitMs
	)
	return m, provider, repo
}

func validSchedule() [48]float64 {
	var s [48]float64
	for i := range s {
		s[i] = 1.0
	}
	return s
}

func mustStartConversation(t *testing.T, m *Manager) *conversation.Conversation {
	t.Helper()
	conv, ok := m.StartConversation(context.Background(), 0, conversation.SourceUser)
	if !ok {
		t.Fatal("expected to acquire conversation")
	}
	return conv
}

func runToRunning(t *testing.T, m *Manager) {
	t.Helper()
	ctx := context.Background()

	conv := mustStartConversation(t, m)
	m.Pair(ctx, conv, 0)
	if conv.Exception != nil {
		t.Fatalf("Pair: %v", conv.Exception)
	}
	conv.Release()

	conv = mustStartConversation(t, m)
	m.Activate(ctx, conv)
	if conv.Exception != nil {
		t.Fatalf("Activate: %v", conv.Exception)
	}
	conv.Release()

	conv = mustStartConversation(t, m)
	m.InjectAndStart(ctx, conv, validSchedule(), 0)
	if conv.Exception != nil {
		t.Fatalf("InjectAndStart: %v", conv.Exception)
	}
	conv.Release()

	if m.pod.LastStatus.Progress != pod.Running {
		t.Fatalf("expected Running, got %v", m.pod.LastStatus.Progress)
	}
}

// Scenario: pair-from-scratch.
func TestPairFromScratch(t *testing.T) {
	sim := fake.NewSimulator()
	m, provider, _ := newTestManager(sim)

	conv := mustStartConversation(t, m)
	defer conv.Release()

	m.Pair(context.Background(), conv, 0)
	if conv.Exception != nil {
		t.Fatalf("unexpected exception: %v", conv.Exception)
	}
	if m.pod.LastStatus.Progress != pod.PairingSuccess {
		t.Fatalf("expected PairingSuccess, got %v", m.pod.LastStatus.Progress)
	}

	calls := provider.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected assign_address + setup_pod, got %d calls", len(calls))
	}
}

// Scenario: pairing a second time is rejected.
func TestPairAlreadyPairedRejected(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)

	conv := mustStartConversation(t, m)
	m.Pair(context.Background(), conv, 0)
	conv.Release()

	conv = mustStartConversation(t, m)
	defer conv.Release()
	m.Pair(context.Background(), conv, 0)

	if !errors.Is(conv.Exception, podfault.ErrPodStateInvalidForCommand) {
		t.Fatalf("expected PodStateInvalidForCommand, got %v", conv.Exception)
	}
}

// Scenario: bolus waits to finish.
func TestBolusWaitsToFinish(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, repo := newTestManager(sim)
	runToRunning(t, m)

	conv := mustStartConversation(t, m)
	defer conv.Release()

	m.Bolus(context.Background(), conv, 0.15, true)
	if conv.Exception != nil {
		t.Fatalf("unexpected exception: %v", conv.Exception)
	}
	if conv.Canceled || conv.CancelFailed_ {
		t.Fatalf("bolus should have completed, not canceled")
	}
	if m.pod.LastStatus.BolusState != pod.BolusInactive {
		t.Fatalf("expected BolusState Inactive after finish, got %v", m.pod.LastStatus.BolusState)
	}
	if m.pod.LastStatus.NotDeliveredInsulin != 0 {
		t.Fatalf("expected all insulin delivered, got %v remaining", m.pod.LastStatus.NotDeliveredInsulin)
	}
	if len(repo.saved) == 0 {
		t.Fatal("expected exchange results persisted through Repository")
	}
}

// Scenario: bolus canceled mid-delivery.
func TestBolusCanceledMidDelivery(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)
	runToRunning(t, m)

	ctx := context.Background()
	conv, ok := m.StartConversation(ctx, 0, conversation.SourceUser)
	if !ok {
		t.Fatal("expected conversation")
	}
	defer conv.Release()

	go func() {
		time.Sleep(2 * time.Millisecond)
		conv.Token.Cancel()
	}()

	m.Bolus(ctx, conv, 1.0, true)
	if conv.Exception != nil {
		t.Fatalf("unexpected exception: %v", conv.Exception)
	}
	if !conv.Canceled && !conv.CancelFailed_ {
		t.Fatal("expected either Canceled or CancelFailed to be recorded")
	}
}

// Scenario: invalid basal schedule is rejected without issuing an exchange.
func TestInvalidBasalScheduleRejected(t *testing.T) {
	sim := fake.NewSimulator()
	m, provider, _ := newTestManager(sim)
	runToRunning(t, m)

	badSchedule := validSchedule()
	badSchedule[3] = 0.07 // not a multiple of 0.05

	conv := mustStartConversation(t, m)
	defer conv.Release()

	callsBefore := len(provider.Calls())
	m.SetBasalSchedule(context.Background(), conv, badSchedule, 0)

	if !errors.Is(conv.Exception, podfault.ErrInvalidParameter) {
		t.Fatalf("expected InvalidParameter, got %v", conv.Exception)
	}
	// Only the status refresh should have gone out; no basal_schedule exchange.
	if got := len(provider.Calls()) - callsBefore; got != 1 {
		t.Fatalf("expected only the status refresh exchange, got %d new calls", got)
	}
}

// Scenario: nonce resync is retried exactly once.
func TestNonceResyncRetriedOnce(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)

	sim.TriggerNonceResync(0xBEEF)

	conv := mustStartConversation(t, m)
	defer conv.Release()

	m.UpdateStatus(context.Background(), conv)
	if conv.Exception != nil {
		t.Fatalf("unexpected exception: %v", conv.Exception)
	}
	if m.pod.RuntimeVariables.NonceSync != nil {
		t.Fatal("expected NonceSync cleared after the retry succeeded")
	}
}

// Scenario: nonce resync failing on the retry as well surfaces
// PodResponseUnexpected rather than retrying forever.
func TestNonceResyncExhaustedFails(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)

	sim.TriggerNonceResyncCount(0xBEEF, 2)

	conv := mustStartConversation(t, m)
	defer conv.Release()

	m.UpdateStatus(context.Background(), conv)
	if !errors.Is(conv.Exception, podfault.ErrPodResponseUnexpected) {
		t.Fatalf("expected PodResponseUnexpected, got %v", conv.Exception)
	}
}

// Scenario: temp basal replaced while one is already running.
func TestTempBasalReplaced(t *testing.T) {
	sim := fake.NewSimulator()
	m, provider, _ := newTestManager(sim)
	runToRunning(t, m)

	conv := mustStartConversation(t, m)
	m.SetTempBasal(context.Background(), conv, 2.0, 1.0)
	if conv.Exception != nil {
		t.Fatalf("first SetTempBasal: %v", conv.Exception)
	}
	firstResult := m.pod.LastTempBasalResult
	conv.Release()

	conv = mustStartConversation(t, m)
	defer conv.Release()
	callsBefore := len(provider.Calls())
	m.SetTempBasal(context.Background(), conv, 3.0, 0.5)
	if conv.Exception != nil {
		t.Fatalf("replacing SetTempBasal: %v", conv.Exception)
	}
	if got := len(provider.Calls()) - callsBefore; got != 3 {
		t.Fatalf("expected status + cancel_temp_basal + temp_basal, got %d calls", got)
	}
	if m.pod.LastStatus.BasalState != pod.BasalTemporary {
		t.Fatalf("expected BasalState Temporary, got %v", m.pod.LastStatus.BasalState)
	}
	if m.pod.LastTempBasalResult == firstResult {
		t.Fatal("expected last temp basal result to be replaced")
	}
}

func TestReservedOperationsFailNotImplemented(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)

	conv := mustStartConversation(t, m)
	defer conv.Release()

	m.ConfigureAlerts(context.Background(), conv)
	if !errors.Is(conv.Exception, podfault.ErrNotImplemented) {
		t.Fatalf("expected NotImplemented, got %v", conv.Exception)
	}
}

func TestStartConversationBoundedTimeout(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)

	first := mustStartConversation(t, m)
	defer first.Release()

	_, ok := m.StartConversation(context.Background(), 5, conversation.SourceUser)
	if ok {
		t.Fatal("expected bounded acquire to time out while mutex is held")
	}
}

func TestZeroTimeoutFallsBackToConfiguredAcquireTimeout(t *testing.T) {
	sim := fake.NewSimulator()
	m, _, _ := newTestManager(sim)
	m.acquireTimeoutMs = 5

	first := mustStartConversation(t, m)
	defer first.Release()

	_, ok := m.StartConversation(context.Background(), 0, conversation.SourceUser)
	if ok {
		t.Fatal("expected zero timeoutMs to fall back to the configured acquireTimeoutMs and time out while mutex is held")
	}
}

func TestAuditLoggerRecordsExchangeAndOperationEntries(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "audit.jsonl")
	auditLogger := audit.NewLogger(audit.DefaultConfig(logPath))
	defer auditLogger.Close()

	record := pod.NewRecord("pod-1", 0x1234)
	sim := fake.NewSimulator()
	provider := fake.NewProvider(sim.Respond)
	gen := nonce.New(0, 0)
	m := New(record, provider, &mockRepository{}, gen, auditLogger, 1000, 1, 1, 1, 1)

	conv := mustStartConversation(t, m)
	m.UpdateStatus(context.Background(), conv)
	conv.Release()
	if conv.Exception != nil {
		t.Fatalf("unexpected exception: %v", conv.Exception)
	}

	f, err := os.Open(logPath)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var operations, exchanges int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry audit.Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("unmarshal audit entry: %v", err)
		}
		switch entry.Operation {
		case "UpdateStatus":
			operations++
		case "status":
			exchanges++
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan audit log: %v", err)
	}
	if operations != 1 {
		t.Fatalf("expected exactly one UpdateStatus operation entry, got %d", operations)
	}
	if exchanges != 1 {
		t.Fatalf("expected exactly one status exchange entry, got %d", exchanges)
	}
}
