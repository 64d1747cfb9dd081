package ai

import (
	"fmt"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const SupportChatSystemPrompt = `You are a friendly customer support assistant for an online store.
Answer questions about products, orders, shipping and returns.
Orders are delivered within 2-4 days. Sales tax is 8%.
If you cannot help, say that the support team will follow up.
Keep answers to two or three sentences.`

// formatCatalogForAI lists the products the assistant may talk about
func formatCatalogForAI(products []models.Product) string {
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Products currently in the catalog:\n")
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(&b, "- %s by %s (%s), $%s, rated %.1f, %s\n",
			p.Name, p.Brand, p.Category, p.Price.StringFixed(2), p.Rating, stock)
	}
	return b.String()
}

// formatTranscriptForAI flattens the conversation into a single prompt
func formatTranscriptForAI(history []chat.Message) string {
	var b strings.Builder
	for _, m := range history {
		speaker := "Assistant"
		if m.From == chat.FromUser {
			speaker = "Customer"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Text)
	}
	b.WriteString("Assistant:")
	return b.String()
}
