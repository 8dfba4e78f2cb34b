package domain

import "encoding/json"

// MatchResult is one recipient produced by a matching pass. Settings is the
// verbatim payload of the matching subscription. Result sets contain
// distinct tuples only: two subscriptions producing the same email, phone
// and settings collapse into one entry.
type MatchResult struct {
	Email    string
	Phone    string
	Settings json.RawMessage
}
