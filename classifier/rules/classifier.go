package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/w-h-a/shopchat/classifier"
)

type family struct {
	name     string
	keywords []string
}

// keyword families checked in order; first hit wins
var families = []family{
	{
		name:     classifier.FamilyGreeting,
		keywords: []string{"hello", "hi", "good day", "good morning", "how are you"},
	},
	{
		name:     classifier.FamilyThanks,
		keywords: []string{"thanks", "thank you", "i appreciate it", "very kind"},
	},
	{
		name:     classifier.FamilyGoodbye,
		keywords: []string{"bye", "goodbye", "see you later"},
	},
	{
		name:     classifier.FamilyIdentity,
		keywords: []string{"who are you", "what are you", "what can you do"},
	},
}

// keywords match on word boundaries only, so "hi" never fires inside
// "which" or "shirt"
var patterns = compile(families)

func compile(fams []family) map[string]*regexp.Regexp {
	compiled := make(map[string]*regexp.Regexp)
	for _, f := range fams {
		for _, keyword := range f.keywords {
			compiled[keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		}
	}
	return compiled
}

type rulesClassifier struct {
	options classifier.Options
}

func (c *rulesClassifier) Classify(ctx context.Context, question string, history []string) (classifier.Result, error) {
	lower := strings.ToLower(question)

	// empty or ambiguous questions default to retrieval
	if len(strings.TrimSpace(lower)) == 0 {
		return classifier.Result{Intent: classifier.IntentProductQuery}, nil
	}

	for _, f := range families {
		for _, keyword := range f.keywords {
			if patterns[keyword].MatchString(lower) {
				return classifier.Result{
					Intent: classifier.IntentChitchat,
					Reply:  classifier.CannedReply(f.name),
				}, nil
			}
		}
	}

	return classifier.Result{Intent: classifier.IntentProductQuery}, nil
}

func NewClassifier(opts ...classifier.Option) classifier.Classifier {
	options := classifier.NewOptions(opts...)

	return &rulesClassifier{
		options: options,
	}
}
