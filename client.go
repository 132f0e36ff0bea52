// client.go
package main

import (
	"context"
	"time"
)

// Button describes one inline-keyboard button of a bot message.
type Button struct {
	Text string
	Data string
	Row  int
	Col  int
}

// Inbound is a single incoming message from the target bot, reduced to the
// fields the runner and the expectations need.
type Inbound struct {
	MessageID int32
	PeerID    int64
	Text      string
	Buttons   []Button
	Received  time.Time
}

// HasButtons reports whether the message carries an inline keyboard.
func (in Inbound) HasButtons() bool {
	return len(in.Buttons) > 0
}

// FindButton looks up a button by callback data first, then by visible text.
func (in Inbound) FindButton(id string) (Button, bool) {
	for _, b := range in.Buttons {
		if b.Data == id {
			return b, true
		}
	}
	for _, b := range in.Buttons {
		if b.Text == id {
			return b, true
		}
	}
	return Button{}, false
}

// BotClient is the connection to Telegram as seen by the runner: issue
// actions against the target bot and observe its replies. Implementations
// deliver only updates originating from the target peer, and the update
// stream stays open for the lifetime of the connection; abandoning a single
// wait must not tear it down.
type BotClient interface {
	// SendText sends a plain text message or /command to the target bot.
	SendText(ctx context.Context, text string) error

	// PressButton issues a callback query for a button of a previously
	// received message.
	PressButton(ctx context.Context, messageID int32, btn Button) error

	// Updates returns the inbound update stream.
	Updates() <-chan Inbound

	// TargetID returns the resolved peer id of the target bot.
	TargetID() int64

	Close() error
}
