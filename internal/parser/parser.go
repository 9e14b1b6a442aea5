// Package parser turns free text into intents. The language model behind it
// is an external service; this package only talks to it.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
)

const DefaultMaxInput = 1000

var ErrInputTooLong = errors.New("input too long")

type Result struct {
	Success bool             `json:"success"`
	Intents []command.Intent `json:"intents"`
	Error   string           `json:"error,omitempty"`
}

type Parser interface {
	Parse(ctx context.Context, text string) (Result, error)
}

// Limited rejects inputs longer than Max characters before calling Next.
type Limited struct {
	Next Parser
	Max  int
}

func (l Limited) Parse(ctx context.Context, text string) (Result, error) {
	limit := l.Max
	if limit <= 0 {
		limit = DefaultMaxInput
	}
	if n := utf8.RuneCountInString(text); n > limit {
		return Result{}, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: fmt.Sprintf("Your message is too long (%d characters). Please keep it under %d characters.", n, limit),
			Err:     ErrInputTooLong,
		}
	}
	return l.Next.Parse(ctx, text)
}

// Static treats the text as an already parsed JSON document, either a Result
// or a bare list of intents.
type Static struct{}

func (Static) Parse(_ context.Context, text string) (Result, error) {
	var res Result
	if err := json.Unmarshal([]byte(text), &res); err == nil && (res.Intents != nil || res.Error != "") {
		if res.Error == "" {
			res.Success = true
		}
		return res, nil
	}
	var intents []command.Intent
	if err := json.Unmarshal([]byte(text), &intents); err != nil {
		return Result{}, fmt.Errorf("decode intents: %w", err)
	}
	return Result{Success: true, Intents: intents}, nil
}
