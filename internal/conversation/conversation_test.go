package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/pod-control/pcm/internal/pod"
)

func TestReleaseClearsActiveConversationAndIsIdempotent(t *testing.T) {
	record := pod.NewRecord("pod-1", 1)
	record.ActiveConversationID = "conv-1"

	released := 0
	release := func() { released++ }
	token := NewCancellationToken(context.Background())

	c := New(record, SourceUser, release, token)
	c.Release()
	c.Release()

	if released != 1 {
		t.Fatalf("expected release to fire exactly once, got %d", released)
	}
	if record.ActiveConversationID != "" {
		t.Fatalf("expected ActiveConversationID cleared, got %q", record.ActiveConversationID)
	}
}

func TestSetExceptionIgnoresNil(t *testing.T) {
	c := New(pod.NewRecord("pod-1", 1), SourceUser, func() {}, NewCancellationToken(context.Background()))
	c.SetException(nil)
	if c.Exception != nil {
		t.Fatal("expected nil error to be ignored")
	}
	want := errors.New("boom")
	c.SetException(want)
	if c.Exception != want {
		t.Fatalf("expected exception to be recorded, got %v", c.Exception)
	}
}

func TestCancelFailedIsDistinctFromCanceled(t *testing.T) {
	c := New(pod.NewRecord("pod-1", 1), SourceUser, func() {}, NewCancellationToken(context.Background()))
	c.CancelFailed()
	if c.Canceled {
		t.Fatal("CancelFailed should not also set Canceled")
	}
	if !c.CancelFailed_ {
		t.Fatal("expected CancelFailed_ set")
	}
}

func TestCancellationTokenRequestedAfterCancel(t *testing.T) {
	token := NewCancellationToken(context.Background())
	if token.Requested() {
		t.Fatal("expected not requested before Cancel")
	}
	token.Cancel()
	if !token.Requested() {
		t.Fatal("expected requested after Cancel")
	}
	select {
	case <-token.Done():
	default:
		t.Fatal("expected Done channel closed after Cancel")
	}
}
