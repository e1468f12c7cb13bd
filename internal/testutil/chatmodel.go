// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel is a scripted eino chat model that records every prompt it receives.
type ChatModel struct {
	mu      sync.Mutex
	Reply   func(input []*schema.Message) (string, error)
	prompts [][]*schema.Message
}

// NewChatModel returns a model answering every call with reply.
func NewChatModel(reply string) *ChatModel {
	return &ChatModel{Reply: func([]*schema.Message) (string, error) { return reply, nil }}
}

// Generate implements model.BaseChatModel.
func (m *ChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, input)
	m.mu.Unlock()

	content, err := m.Reply(input)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

// Stream implements model.BaseChatModel.
func (m *ChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported by fake")
}

// Prompts returns the recorded inputs in call order.
func (m *ChatModel) Prompts() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*schema.Message(nil), m.prompts...)
}
