// Package messaging delivers reply text back to the merchant's chat channel.
package messaging

import (
	"context"
	"log"
)

type Gateway interface {
	SendText(ctx context.Context, to, text string) error
}

// Log only writes replies to the process log. It is used when no broker is
// configured.
type Log struct{}

func (Log) SendText(_ context.Context, to, text string) error {
	log.Printf("[messaging] reply to %s:\n%s", to, text)
	return nil
}
