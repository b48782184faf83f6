package podfault

import (
	"errors"
	"testing"
)

func TestFaultUnwrapsToSentinelKind(t *testing.T) {
	err := InvalidParameter("amount %v out of range", 40.0)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatal("expected errors.Is to match the sentinel kind")
	}
	if errors.Is(err, ErrPodResponseUnexpected) {
		t.Fatal("did not expect match against an unrelated kind")
	}
}

func TestFaultErrorIncludesMessage(t *testing.T) {
	err := PodStateInvalidForCommand("pod already paired")
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestEachConstructorUsesItsOwnKind(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{InvalidParameter("x"), ErrInvalidParameter},
		{PodStateInvalidForCommand("x"), ErrPodStateInvalidForCommand},
		{PodResponseUnexpected("x"), ErrPodResponseUnexpected},
		{RadioRecvTimeout("x"), ErrRadioRecvTimeout},
		{RadioSendTimeout("x"), ErrRadioSendTimeout},
		{RadioGeneric("x"), ErrRadioGeneric},
		{Internal("x"), ErrInternal},
		{NotImplemented("x"), ErrNotImplemented},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("expected %v to match kind %v", tc.err, tc.kind)
		}
	}
}
