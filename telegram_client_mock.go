// telegram_client_mock.go
package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockBotClient is a mock implementation of BotClient for testing.
type MockBotClient struct {
	mock.Mock
	SendTextFunc    func(ctx context.Context, text string) error
	PressButtonFunc func(ctx context.Context, messageID int32, btn Button) error
	CloseFunc       func() error

	updates  chan Inbound
	targetID int64
}

// NewMockBotClient creates a mock client posing as the given target peer.
func NewMockBotClient(targetID int64) *MockBotClient {
	return &MockBotClient{
		updates:  make(chan Inbound, updateBuffer),
		targetID: targetID,
	}
}

// Deliver queues an inbound update as if the target bot had replied.
func (m *MockBotClient) Deliver(in Inbound) {
	m.updates <- in
}

// SendText mocks sending a text message.
func (m *MockBotClient) SendText(ctx context.Context, text string) error {
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, text)
	}
	args := m.Called(ctx, text)
	return args.Error(0)
}

// PressButton mocks pressing an inline button.
func (m *MockBotClient) PressButton(ctx context.Context, messageID int32, btn Button) error {
	if m.PressButtonFunc != nil {
		return m.PressButtonFunc(ctx, messageID, btn)
	}
	args := m.Called(ctx, messageID, btn)
	return args.Error(0)
}

// Updates returns the test-fed update stream.
func (m *MockBotClient) Updates() <-chan Inbound {
	return m.updates
}

// TargetID returns the configured target peer id.
func (m *MockBotClient) TargetID() int64 {
	return m.targetID
}

// Close mocks closing the connection.
func (m *MockBotClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
