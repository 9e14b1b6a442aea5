package command

import (
	"fmt"
	"strings"
)

const nothingToDo = "I couldn't find anything to do in your message. Try something like 'add 10 bottles of Zobo at 1000 each' or 'stock'."

// Aggregator turns a finished Context into the single reply text sent back
// to the merchant.
type Aggregator struct {
	Header              string
	ClarificationHeader string
}

func (a Aggregator) Compose(c *Context) string {
	var messages []string
	for _, r := range c.Responses {
		if r.Message != "" {
			messages = append(messages, r.Message)
		}
	}
	if len(messages) == 0 && len(c.Clarifications) == 0 {
		return nothingToDo
	}

	var b strings.Builder
	switch {
	case len(messages) == 1:
		b.WriteString(messages[0])
	case len(messages) > 1:
		if a.Header != "" {
			b.WriteString(a.Header)
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Join(messages, "\n\n"))
	}

	if len(c.Clarifications) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if a.ClarificationHeader != "" {
			b.WriteString(a.ClarificationHeader)
			b.WriteString("\n")
		}
		for i, cl := range c.Clarifications {
			if len(c.Clarifications) == 1 {
				b.WriteString(cl.Prompt)
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, cl.Prompt)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
