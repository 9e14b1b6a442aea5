// Package command routes the intents of one inbound message to their
// handlers in a fixed order and gathers the outcomes into one reply.
package command

import (
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
)

// Request identifies the message being handled.
type Request struct {
	MerchantID string
	RawInput   string
}

type Response struct {
	Intent             string `json:"intent"`
	Success            bool   `json:"success"`
	NeedsClarification bool   `json:"needsClarification,omitempty"`
	Message            string `json:"message,omitempty"`
}

// Result is what a handler produced. Clarifications here are informational;
// blocking clarifications are returned as *clarify.Blocked errors instead.
type Result struct {
	Responses      []Response
	Clarifications []clarify.Request
}

// Reply is a Result holding one successful response.
func Reply(intent, message string) Result {
	return Result{Responses: []Response{{Intent: intent, Success: true, Message: message}}}
}

// Context accumulates the outcomes of every intent of one message.
type Context struct {
	Request
	Responses      []Response
	Clarifications []clarify.Request
}

func (c *Context) merge(intent string, r Result) {
	for _, resp := range r.Responses {
		if resp.Intent == "" {
			resp.Intent = intent
		}
		c.Responses = append(c.Responses, resp)
	}
	c.Clarifications = append(c.Clarifications, r.Clarifications...)
}

// Failed reports whether any intent failed without asking for clarification.
func (c *Context) Failed() bool {
	for _, r := range c.Responses {
		if !r.Success && !r.NeedsClarification {
			return true
		}
	}
	return false
}
