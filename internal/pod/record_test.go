package pod

import "testing"

func TestNewRecordHasNoActiveConversation(t *testing.T) {
	r := NewRecord("pod-1", 0xABCD)
	if r.HasActiveConversation() {
		t.Fatal("freshly created record should have no active conversation")
	}
	if r.RadioAddress != 0xABCD {
		t.Fatalf("expected radio address 0xABCD, got %#x", r.RadioAddress)
	}
}

func TestHasActiveConversation(t *testing.T) {
	r := NewRecord("pod-1", 1)
	r.ActiveConversationID = "conv-1"
	if !r.HasActiveConversation() {
		t.Fatal("expected HasActiveConversation true once set")
	}
}
