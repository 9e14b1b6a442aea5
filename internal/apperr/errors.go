// Package apperr defines the error kinds surfaced to merchants. Every kind
// carries a message that is safe to show in a chat reply.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindAmbiguousUnit     Kind = "ambiguous_unit"
	KindTransactionAbort  Kind = "transaction_abort"
	KindUnknownIntent     Kind = "unknown_intent"
)

// GenericMessage is shown for errors that carry no user-facing text.
const GenericMessage = "There was an error processing your request. Please try again later."

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below can be used
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrAmbiguousUnit     = &Error{Kind: KindAmbiguousUnit}
	ErrTransactionAbort  = &Error{Kind: KindTransactionAbort}
	ErrUnknownIntent     = &Error{Kind: KindUnknownIntent}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, name string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, name)}
}

func InsufficientStock(message string) error {
	return &Error{Kind: KindInsufficientStock, Message: message}
}

func AmbiguousUnit(message string) error {
	return &Error{Kind: KindAmbiguousUnit, Message: message}
}

// TransactionAbort hides the store error behind a retry message.
func TransactionAbort(err error) error {
	return &Error{
		Kind:    KindTransactionAbort,
		Message: "A database error occurred while saving your request, nothing was recorded. Please try again.",
		Err:     err,
	}
}

func UnknownIntent(name string) error {
	return &Error{Kind: KindUnknownIntent, Message: fmt.Sprintf("Unknown command: %s", name)}
}

// KindOf returns the kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage returns text that can be sent to the merchant. Raw internal
// errors are never exposed.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}
