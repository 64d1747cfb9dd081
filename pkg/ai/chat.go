package ai

import (
	"context"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ChatResponder answers support chat messages with the language model
type ChatResponder struct {
	client       *Client
	systemPrompt string
}

func NewChatResponder(client *Client, products []models.Product) *ChatResponder {
	prompt := SupportChatSystemPrompt
	if catalog := formatCatalogForAI(products); catalog != "" {
		prompt += "\n\n" + catalog
	}
	return &ChatResponder{client: client, systemPrompt: prompt}
}

func (r *ChatResponder) Reply(ctx context.Context, history []chat.Message) (string, error) {
	if r.client == nil {
		return "", &AIError{Message: "AI service is not enabled"}
	}
	reply, err := r.client.generateCompletion(ctx, r.systemPrompt, formatTranscriptForAI(history))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
