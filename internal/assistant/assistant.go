// Package assistant runs a merchant's chat message end to end: parse it into
// intents, route them, remember the questions that came up and send back one
// reply.
package assistant

import (
	"context"
	"fmt"
	"log"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
	"github.com/isahbella007/whatsapp-first-erp/internal/messaging"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
	"github.com/isahbella007/whatsapp-first-erp/internal/parser"
)

const (
	notUnderstood = "I couldn't understand your message. Try something like 'add 10 bottles of Zobo at 1000 each' or 'sold 2 shoes to Ada'."
	parserDown    = "Sorry, I can't process messages right now. Please try again in a few minutes."
)

// Observer is told about handled messages and recorded clarifications.
type Observer interface {
	ObserveMessage(result string)
	ObserveClarification(kind string)
}

type Message struct {
	MerchantID string `json:"merchant_id" binding:"required"`
	// From is the chat address the reply goes to; MerchantID when empty.
	From string `json:"from"`
	Text string `json:"text" binding:"required"`
}

type Reply struct {
	Text           string                 `json:"reply"`
	Responses      []command.Response     `json:"responses"`
	Clarifications []models.Clarification `json:"clarifications"`
	Resolved       bool                   `json:"resolved,omitempty"`
}

type Assistant struct {
	parser         parser.Parser
	router         *command.Router
	clarifications *clarify.Manager
	gateway        messaging.Gateway
	aggregator     command.Aggregator
	observer       Observer
}

type Options struct {
	Parser         parser.Parser
	Router         *command.Router
	Clarifications *clarify.Manager
	Gateway        messaging.Gateway
	Aggregator     command.Aggregator
	Observer       Observer
}

func New(o Options) *Assistant {
	if o.Gateway == nil {
		o.Gateway = messaging.Log{}
	}
	return &Assistant{
		parser:         o.Parser,
		router:         o.Router,
		clarifications: o.Clarifications,
		gateway:        o.Gateway,
		aggregator:     o.Aggregator,
		observer:       o.Observer,
	}
}

// HandleMessage parses the text of m and runs every intent found in it.
// Errors are turned into reply text; the returned error is only set when the
// reply could not be delivered.
func (a *Assistant) HandleMessage(ctx context.Context, m Message) (*Reply, error) {
	res, err := a.parser.Parse(ctx, m.Text)
	if err != nil {
		text := parserDown
		if apperr.KindOf(err) != "" {
			text = apperr.UserMessage(err)
		} else {
			log.Printf("[assistant] merchant %s: parser failed: %v", m.MerchantID, err)
		}
		a.observeMessage("parse_error")
		r := &Reply{Text: text}
		return r, a.send(ctx, m, r)
	}
	if !res.Success {
		text := res.Error
		if text == "" {
			text = notUnderstood
		}
		a.observeMessage("not_understood")
		r := &Reply{Text: text}
		return r, a.send(ctx, m, r)
	}

	r := a.HandleIntents(ctx, m.MerchantID, m.Text, res.Intents)
	a.observeMessage("handled")
	return r, a.send(ctx, m, r)
}

// HandleIntents routes already parsed intents and records the clarifications
// they raised.
func (a *Assistant) HandleIntents(ctx context.Context, merchantID, raw string, intents []command.Intent) *Reply {
	c := a.router.Route(ctx, command.Request{MerchantID: merchantID, RawInput: raw}, intents)
	return a.finish(ctx, c)
}

func (a *Assistant) finish(ctx context.Context, c *command.Context) *Reply {
	saved, err := a.clarifications.Record(ctx, c.MerchantID, c.Clarifications)
	if err != nil {
		log.Printf("[assistant] merchant %s: some clarifications were not saved: %v", c.MerchantID, err)
	}
	for _, cl := range saved {
		if a.observer != nil {
			a.observer.ObserveClarification(cl.Type)
		}
	}
	return &Reply{
		Text:           a.aggregator.Compose(c),
		Responses:      c.Responses,
		Clarifications: saved,
	}
}

// ResolveClarification applies the answer to the stored parameters of a
// pending clarification and retries the operation. The clarification stays
// pending when the retry fails.
func (a *Assistant) ResolveClarification(ctx context.Context, merchantID string, id uint, ans Answer) (*Reply, error) {
	cl, err := a.clarifications.Open(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	intents, err := resume(*cl, ans)
	if err != nil {
		return nil, err
	}

	c := a.router.Route(ctx, command.Request{MerchantID: merchantID, RawInput: ans.Value}, intents)
	if c.Failed() {
		log.Printf("[assistant] merchant %s: retry of clarification %d failed", merchantID, id)
		return &Reply{Text: a.aggregator.Compose(c), Responses: c.Responses}, nil
	}

	if err := a.clarifications.Resolve(ctx, merchantID, id); err != nil {
		return nil, err
	}
	if answersBaseUnit(*cl) {
		a.resolveSiblings(ctx, *cl)
	}
	r := a.finish(ctx, c)
	r.Resolved = true
	if err := a.send(ctx, Message{MerchantID: merchantID}, r); err != nil {
		log.Printf("[assistant] merchant %s: %v", merchantID, err)
	}
	return r, nil
}

// resolveSiblings closes the other pending questions about the same product
// and intent that the base unit answer also settled.
func (a *Assistant) resolveSiblings(ctx context.Context, cl models.Clarification) {
	pending, err := a.clarifications.Pending(ctx, cl.MerchantID)
	if err != nil {
		log.Printf("[assistant] merchant %s: list pending clarifications: %v", cl.MerchantID, err)
		return
	}
	for _, p := range pending {
		if p.ID == cl.ID || p.ProductName != cl.ProductName || p.DataNeeded.Intent != cl.DataNeeded.Intent || !answersBaseUnit(p) {
			continue
		}
		if err := a.clarifications.Resolve(ctx, cl.MerchantID, p.ID); err != nil {
			log.Printf("[assistant] merchant %s: resolve clarification %d: %v", cl.MerchantID, p.ID, err)
		}
	}
}

func (a *Assistant) CancelClarification(ctx context.Context, merchantID string, id uint) error {
	return a.clarifications.Cancel(ctx, merchantID, id)
}

func (a *Assistant) PendingClarifications(ctx context.Context, merchantID string) ([]models.Clarification, error) {
	return a.clarifications.Pending(ctx, merchantID)
}

func (a *Assistant) send(ctx context.Context, m Message, r *Reply) error {
	to := m.From
	if to == "" {
		to = m.MerchantID
	}
	if err := a.gateway.SendText(ctx, to, r.Text); err != nil {
		a.observeMessage("send_failed")
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (a *Assistant) observeMessage(result string) {
	if a.observer != nil {
		a.observer.ObserveMessage(result)
	}
}
