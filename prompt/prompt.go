package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/w-h-a/shopchat/session"
	"github.com/w-h-a/shopchat/vectorstore"
)

const preamble = "You are an expert sales assistant for the store. Answer the customer's question " +
	"in a clear and friendly manner. Use the conversation history to understand the context, and " +
	"base your final answer only and exclusively on the product information provided."

// Payload is the engine's output: the structured bundle handed to a
// downstream text-generation step.
type Payload struct {
	History    []session.Turn          `json:"history"`
	Candidates []vectorstore.Candidate `json:"candidates,omitempty"`
	Question   string                  `json:"question"`
}

// Assemble combines session history, retrieval candidates, and the current
// question. Pure function, no I/O. Inputs are copied so later mutation by
// the caller cannot tear the payload.
func Assemble(history []session.Turn, candidates []vectorstore.Candidate, question string) Payload {
	h := make([]session.Turn, len(history))
	copy(h, history)

	var c []vectorstore.Candidate
	if len(candidates) > 0 {
		c = make([]vectorstore.Candidate, len(candidates))
		copy(c, candidates)
	}

	return Payload{
		History:    h,
		Candidates: c,
		Question:   question,
	}
}

// Render produces the prompt text. Prior turns appear oldest first; the
// product section is omitted entirely when there are no candidates, so a
// downstream generator never sees an empty context block.
func (p Payload) Render() string {
	var sb bytes.Buffer
	sb.WriteString(preamble)

	if len(p.History) > 0 {
		sb.WriteString("\n\nRecent conversation history:\n")
		for _, turn := range p.History {
			sb.WriteString(fmt.Sprintf("- %s", turn.Question))
			if len(turn.CandidateIds) > 0 {
				sb.WriteString(fmt.Sprintf(" (products shown: %s)", strings.Join(turn.CandidateIds, ", ")))
			}
			sb.WriteString("\n")
		}
	}

	if len(p.Candidates) > 0 {
		sb.WriteString("\nProduct context for the current question:\n")
		for i, cand := range p.Candidates {
			product := cand.Product
			sb.WriteString(fmt.Sprintf("%d. %s", i+1, product.Title))
			if len(product.Price) > 0 {
				sb.WriteString(fmt.Sprintf(" (price: %s)", product.Price))
			}
			sb.WriteString("\n")
			if len(product.Description) > 0 {
				sb.WriteString(fmt.Sprintf("   %s\n", product.Description))
			}
		}
	}

	sb.WriteString("\nCustomer question:\n")
	sb.WriteString(p.Question)
	sb.WriteString("\n")

	return sb.String()
}
