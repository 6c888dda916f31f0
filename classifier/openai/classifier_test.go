package openai

import (
	"errors"
	"testing"

	"github.com/w-h-a/shopchat/classifier"
)

func TestParseLabel(t *testing.T) {
	cases := []struct {
		name      string
		content   string
		want      classifier.Intent
		wantReply bool
	}{
		{name: "product query", content: "product_query", want: classifier.IntentProductQuery},
		{name: "bare product", content: "Product", want: classifier.IntentProductQuery},
		{name: "greeting", content: "greeting", want: classifier.IntentChitchat, wantReply: true},
		{name: "quoted label", content: `"identity"`, want: classifier.IntentChitchat, wantReply: true},
		{name: "padded label", content: "  thanks.\n", want: classifier.IntentChitchat, wantReply: true},
		{name: "goodbye", content: "goodbye", want: classifier.IntentChitchat, wantReply: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := parseLabel(tc.content)
			if err != nil {
				t.Fatalf("parseLabel(%q) error = %v", tc.content, err)
			}
			if result.Intent != tc.want {
				t.Fatalf("parseLabel(%q) = %q, want %q", tc.content, result.Intent, tc.want)
			}
			if tc.wantReply && len(result.Reply) == 0 {
				t.Fatalf("parseLabel(%q) returned no canned reply", tc.content)
			}
		})
	}
}

func TestParseLabelRejectsGarbage(t *testing.T) {
	for _, content := range []string{"", "maybe", "small talk"} {
		if _, err := parseLabel(content); !errors.Is(err, classifier.ErrDegraded) {
			t.Fatalf("parseLabel(%q) error = %v, want ErrDegraded", content, err)
		}
	}
}
