package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/shopchat/classifier"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const systemPrompt = `You label customer messages for a product catalog assistant.
Reply with exactly one word from this list:
"greeting" for hellos, good mornings, and similar openers;
"goodbye" for farewells;
"thanks" for expressions of gratitude;
"identity" for questions about who you are or what you can do;
"product_query" for anything about products, prices, availability, or searches.
"product_query" is the default when unsure.`

type openAIClassifier struct {
	options classifier.Options
	client  *openai.Client
}

func (c *openAIClassifier) Classify(ctx context.Context, question string, history []string) (classifier.Result, error) {
	if len(strings.TrimSpace(question)) == 0 {
		return classifier.Result{Intent: classifier.IntentProductQuery}, nil
	}

	var sb strings.Builder
	for _, prior := range history {
		sb.WriteString("Previous: " + prior + "\n")
	}
	sb.WriteString("Message: " + question)

	rsp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.options.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return classifier.Result{}, fmt.Errorf("%w: %v", classifier.ErrDegraded, err)
	}

	if len(rsp.Choices) == 0 {
		return classifier.Result{}, fmt.Errorf("%w: no response from OpenAI", classifier.ErrDegraded)
	}

	return parseLabel(rsp.Choices[0].Message.Content)
}

// parseLabel maps the model's one-word answer to an intent. Chitchat family
// labels carry the family's canned reply so the caller can answer without
// retrieval.
func parseLabel(content string) (classifier.Result, error) {
	label := strings.Trim(strings.ToLower(strings.TrimSpace(content)), `"'.`)

	if strings.HasPrefix(label, "product") {
		return classifier.Result{Intent: classifier.IntentProductQuery}, nil
	}

	if reply := classifier.CannedReply(label); len(reply) != 0 {
		return classifier.Result{
			Intent: classifier.IntentChitchat,
			Reply:  reply,
		}, nil
	}

	return classifier.Result{}, fmt.Errorf("%w: unusable label %q", classifier.ErrDegraded, label)
}

func NewClassifier(opts ...classifier.Option) classifier.Classifier {
	options := classifier.NewOptions(opts...)

	c := &openAIClassifier{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)
	cfg.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	c.client = openai.NewClientWithConfig(cfg)

	return c
}
