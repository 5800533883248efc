package utils

import "strings"

// conversationSep joins the demande id and the two participant ids. IDs are
// rendered in decimal and never contain an underscore, so the key parses
// back unambiguously.
const conversationSep = "_"

// DeriveConversationID builds the stable key under which all messages between
// two participants about one demande are grouped. The two participant ids are
// ordered lexicographically before joining, so the key is independent of who
// initiated the exchange:
//
//	DeriveConversationID(d, a, b) == DeriveConversationID(d, b, a)
func DeriveConversationID(demandeID, participantA, participantB string) string {
	lo, hi := participantA, participantB
	if strings.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return demandeID + conversationSep + lo + conversationSep + hi
}

// ParseConversationID splits a conversation key back into the demande id and
// the two participant ids. The second return value is false when the key does
// not have the demande_lo_hi shape.
func ParseConversationID(id string) (demandeID, participantLo, participantHi string, ok bool) {
	parts := strings.Split(id, conversationSep)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// IsConversationParticipant reports whether the given user id is one of the
// two participants encoded in the conversation key.
func IsConversationParticipant(conversationID, userID string) bool {
	_, lo, hi, ok := ParseConversationID(conversationID)
	if !ok {
		return false
	}
	return userID == lo || userID == hi
}
