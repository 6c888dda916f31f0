package classifier

import (
	"context"
	"errors"
)

// ErrDegraded reports that the underlying classifier could not produce a
// usable label. Callers fall back to IntentProductQuery instead of failing
// the request.
var ErrDegraded = errors.New("classifier degraded")

type Intent string

const (
	IntentProductQuery Intent = "product_query"
	IntentChitchat     Intent = "chitchat"
)

// Chitchat families. Providers label small talk with one of these and the
// service answers from the canned-reply table instead of running retrieval.
const (
	FamilyGreeting = "greeting"
	FamilyThanks   = "thanks"
	FamilyGoodbye  = "goodbye"
	FamilyIdentity = "identity"
)

var cannedReplies = map[string]string{
	FamilyGreeting: "Hello! I am your shopping assistant. What product are you looking for today?",
	FamilyThanks:   "You're welcome! If you need anything else, feel free to ask.",
	FamilyGoodbye:  "Goodbye! Have a great day.",
	FamilyIdentity: "I am a shopping assistant. I can help you find products from the store catalog.",
}

// CannedReply returns the stock answer for a chitchat family, or "" when
// the family is unknown.
func CannedReply(family string) string {
	return cannedReplies[family]
}

// Result is the classification outcome. Reply carries an optional canned
// response for the chitchat path and is empty for product queries.
type Result struct {
	Intent Intent `json:"intent"`
	Reply  string `json:"reply,omitempty"`
}

// Classifier decides whether a question needs catalog retrieval. It must
// be deterministic for identical input and free of side effects.
type Classifier interface {
	Classify(ctx context.Context, question string, history []string) (Result, error)
}
