package command

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
)

type Handler interface {
	Handle(ctx context.Context, req Request, params Params) (Result, error)
}

type HandlerFunc func(ctx context.Context, req Request, params Params) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, req Request, params Params) (Result, error) {
	return f(ctx, req, params)
}

// Registry maps intent names to handlers. It is built once at startup and
// is read-only afterwards.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(intent string, h Handler) {
	r.handlers[intent] = h
}

func (r *Registry) Lookup(intent string) (Handler, bool) {
	h, ok := r.handlers[intent]
	return h, ok
}

const (
	OutcomeSuccess       = "success"
	OutcomeClarification = "clarification"
	OutcomeError         = "error"
	OutcomeUnknown       = "unknown"
	OutcomePanic         = "panic"
)

// Observer is told about every dispatched intent.
type Observer interface {
	ObserveCommand(intent, outcome string, elapsed time.Duration)
}

type Router struct {
	registry *Registry
	observer Observer
}

func NewRouter(registry *Registry, observer Observer) *Router {
	return &Router{registry: registry, observer: observer}
}

// Route runs intents one at a time in Priority order. A failing or panicking
// handler only fails its own intent.
func (r *Router) Route(ctx context.Context, req Request, intents []Intent) *Context {
	c := &Context{Request: req}
	for _, in := range Order(intents) {
		start := time.Now()
		outcome := r.dispatch(ctx, c, in)
		if r.observer != nil {
			r.observer.ObserveCommand(in.Name, outcome, time.Since(start))
		}
	}
	return c
}

func (r *Router) dispatch(ctx context.Context, c *Context, in Intent) (outcome string) {
	h, ok := r.registry.Lookup(in.Name)
	if !ok {
		log.Printf("[router] merchant %s: unknown intent %q", c.MerchantID, in.Name)
		c.Responses = append(c.Responses, Response{Intent: in.Name, Message: apperr.UserMessage(apperr.UnknownIntent(in.Name))})
		return OutcomeUnknown
	}

	params, err := Decode(in)
	if err != nil {
		log.Printf("[router] merchant %s: bad params for %s: %v", c.MerchantID, in.Name, err)
		c.Responses = append(c.Responses, Response{Intent: in.Name, Message: apperr.UserMessage(err)})
		return OutcomeError
	}

	defer func() {
		if p := recover(); p != nil {
			log.Printf("[router] merchant %s: panic in %s: %v\n%s", c.MerchantID, in.Name, p, debug.Stack())
			c.Responses = append(c.Responses, Response{Intent: in.Name, Message: apperr.GenericMessage})
			outcome = OutcomePanic
		}
	}()

	res, err := h.Handle(ctx, c.Request, params)
	if err != nil {
		if reqs := clarify.Requests(err); len(reqs) > 0 {
			for i := range reqs {
				reqs[i].DataNeeded.Intent = in.Name
				reqs[i].DataNeeded.Params = in.Params
			}
			c.merge(in.Name, res)
			c.Responses = append(c.Responses, Response{Intent: in.Name, NeedsClarification: true})
			c.Clarifications = append(c.Clarifications, reqs...)
			return OutcomeClarification
		}
		log.Printf("[router] merchant %s: %s failed: %v", c.MerchantID, in.Name, err)
		c.Responses = append(c.Responses, Response{Intent: in.Name, Message: apperr.UserMessage(err)})
		return OutcomeError
	}
	c.merge(in.Name, res)
	return OutcomeSuccess
}

