package ai

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const DefaultDeployment = "gpt-35-turbo"

// Config holds the Azure OpenAI credentials. The service is disabled unless
// both Endpoint and APIKey are set.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	MaxRetries int
}

func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

type Client struct {
	client     openai.Client
	deployment string
	log        *slog.Logger
}

// NewClient returns nil when cfg does not enable the service
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Enabled() {
		log.Info("AI service disabled - Azure OpenAI credentials not provided")
		return nil
	}

	deployment := cfg.Deployment
	if deployment == "" {
		deployment = DefaultDeployment
	}

	log.Info("AI service initialized with Azure OpenAI", "deployment", deployment)
	return &Client{
		client: openai.NewClient(
			option.WithBaseURL(cfg.Endpoint),
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(cfg.MaxRetries),
		),
		deployment: deployment,
		log:        log,
	}
}

// generateCompletion sends one system and one user message and returns the reply
func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(300), // chat replies stay short
		Temperature: openai.Float(0.7),
	})

	if err != nil {
		c.log.Error("AI API error", "error", err)
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// AIError represents an AI service error
type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
