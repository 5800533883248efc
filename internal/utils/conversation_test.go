package utils

import "testing"

func TestDeriveConversationIDCommutative(t *testing.T) {
	cases := [][2]string{
		{"4", "9"},
		{"9", "4"},
		{"12", "3"},
		{"100", "100"},
	}
	for _, c := range cases {
		a := DeriveConversationID("7", c[0], c[1])
		b := DeriveConversationID("7", c[1], c[0])
		if a != b {
			t.Errorf("DeriveConversationID(7, %s, %s) = %q, reversed = %q", c[0], c[1], a, b)
		}
	}
}

func TestDeriveConversationIDOrdering(t *testing.T) {
	// Ordering is lexicographic on the decimal strings, not numeric.
	got := DeriveConversationID("5", "12", "3")
	if got != "5_12_3" {
		t.Fatalf("got %q, want 5_12_3", got)
	}
}

func TestParseConversationID(t *testing.T) {
	d, lo, hi, ok := ParseConversationID("5_12_3")
	if !ok || d != "5" || lo != "12" || hi != "3" {
		t.Fatalf("parse failed: %q %q %q %v", d, lo, hi, ok)
	}
	for _, bad := range []string{"", "5_12", "5_12_3_9", "__", "5__3"} {
		if _, _, _, ok := ParseConversationID(bad); ok {
			t.Errorf("ParseConversationID(%q) unexpectedly ok", bad)
		}
	}
}

func TestIsConversationParticipant(t *testing.T) {
	id := DeriveConversationID("8", "21", "34")
	if !IsConversationParticipant(id, "21") || !IsConversationParticipant(id, "34") {
		t.Fatal("participants not recognized")
	}
	if IsConversationParticipant(id, "8") {
		t.Fatal("demande id accepted as participant")
	}
	if IsConversationParticipant(id, "99") {
		t.Fatal("outsider accepted as participant")
	}
}
