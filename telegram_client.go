// telegram_client.go
package main

import (
	"context"
	"fmt"

	"github.com/amarnathcjd/gogram/telegram"
)

// updateBuffer bounds how many not-yet-consumed replies are kept. The runner
// drains the stream on every send, so the buffer only has to absorb bursts
// within a single wait window.
const updateBuffer = 128

// GogramClient implements BotClient on top of the gogram MTProto client,
// acting as a regular user account. It is a thin pass-through: session
// encryption, flood-wait backoff and reconnects belong to the library.
type GogramClient struct {
	tg       *telegram.Client
	cfg      Config
	peer     telegram.InputPeer
	targetID int64
	updates  chan Inbound
	clock    Clock
}

// NewGogramClient builds an unconnected client from the credentials in cfg.
func NewGogramClient(cfg Config) (*GogramClient, error) {
	tg, err := telegram.NewClient(telegram.ClientConfig{
		AppID:    cfg.APIID,
		AppHash:  cfg.APIHash,
		Session:  cfg.SessionFile,
		LogLevel: telegram.LogInfo,
	})
	if err != nil {
		return nil, &NetworkError{Op: "create client", Err: err}
	}
	return &GogramClient{
		tg:      tg,
		cfg:     cfg,
		updates: make(chan Inbound, updateBuffer),
		clock:   RealClock{},
	}, nil
}

// Connect opens the MTProto connection, authorizes the tester account and
// resolves the target bot. With a valid saved session the login is
// non-interactive; otherwise gogram prompts for the login code on the
// terminal.
func (c *GogramClient) Connect(ctx context.Context) error {
	if err := c.tg.Connect(); err != nil {
		return &NetworkError{Op: "connect", Err: err}
	}

	if _, err := c.tg.Login(c.cfg.Phone); err != nil {
		return &AuthError{Err: err}
	}

	peer, err := c.tg.ResolvePeer(c.cfg.TargetBot)
	if err != nil {
		return &NetworkError{Op: "resolve @" + c.cfg.TargetBot, Err: err}
	}
	user, ok := peer.(*telegram.InputPeerUser)
	if !ok {
		return &AuthError{Err: fmt.Errorf("target %q does not resolve to a bot account", c.cfg.TargetBot)}
	}
	c.peer = peer
	c.targetID = user.UserID
	InfoLogger.Printf("Target bot resolved: @%s (id %d)", c.cfg.TargetBot, c.targetID)

	c.tg.On(telegram.OnMessage, func(m *telegram.NewMessage) error {
		c.handleMessage(m)
		return nil
	})

	return nil
}

// handleMessage forwards inbound messages of the target-bot chat into the
// update stream. Everything else, including the tester's own outgoing
// messages, is dropped here so the runner only ever sees the target peer.
func (c *GogramClient) handleMessage(m *telegram.NewMessage) {
	if m.ChatID() != c.targetID || m.SenderID() != c.targetID {
		return
	}

	in := Inbound{
		MessageID: m.ID,
		PeerID:    m.SenderID(),
		Text:      m.Text(),
		Buttons:   markupButtons(m.Message.ReplyMarkup),
		Received:  c.clock.Now(),
	}

	if c.cfg.Verbose {
		InfoLogger.Printf("Received reply %d from @%s: %s", in.MessageID, c.cfg.TargetBot, preview(in.Text, 60))
	}

	select {
	case c.updates <- in:
	default:
		ErrorLogger.Printf("Dropping update %d from @%s: buffer full", in.MessageID, c.cfg.TargetBot)
	}
}

// markupButtons flattens an inline keyboard into adapter buttons.
func markupButtons(markup telegram.ReplyMarkup) []Button {
	inline, ok := markup.(*telegram.ReplyInlineMarkup)
	if !ok || inline == nil {
		return nil
	}
	var buttons []Button
	for row, r := range inline.Rows {
		for col, b := range r.Buttons {
			cb, ok := b.(*telegram.KeyboardButtonCallback)
			if !ok {
				// URL and web-app buttons are not pressable callbacks.
				continue
			}
			buttons = append(buttons, Button{
				Text: cb.Text,
				Data: string(cb.Data),
				Row:  row,
				Col:  col,
			})
		}
	}
	return buttons
}

// SendText sends a plain text message to the target bot.
func (c *GogramClient) SendText(ctx context.Context, text string) error {
	if _, err := c.tg.SendMessage(c.peer, text); err != nil {
		return &NetworkError{Op: "send message", Err: err}
	}
	return nil
}

// PressButton issues the callback query for an inline button, the same wire
// call a real client performs when the user taps it.
func (c *GogramClient) PressButton(ctx context.Context, messageID int32, btn Button) error {
	_, err := c.tg.MessagesGetBotCallbackAnswer(&telegram.MessagesGetBotCallbackAnswerParams{
		Peer:  c.peer,
		MsgID: messageID,
		Data:  []byte(btn.Data),
	})
	if err != nil {
		return &NetworkError{Op: fmt.Sprintf("press button %q", btn.Text), Err: err}
	}
	return nil
}

// Updates returns the inbound update stream for the target bot.
func (c *GogramClient) Updates() <-chan Inbound {
	return c.updates
}

// TargetID returns the resolved peer id of the target bot.
func (c *GogramClient) TargetID() int64 {
	return c.targetID
}

// Whoami returns the authorized account, for the first-time login flow.
func (c *GogramClient) Whoami() (string, error) {
	me, err := c.tg.GetMe()
	if err != nil {
		return "", &NetworkError{Op: "get me", Err: err}
	}
	return fmt.Sprintf("%s %s (@%s, id %d)", me.FirstName, me.LastName, me.Username, me.ID), nil
}

// Close disconnects from Telegram. The session file is left in place for
// the next run.
func (c *GogramClient) Close() error {
	return c.tg.Disconnect()
}
