package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"trading-journal/internal/models"
)

const classifierSystemPrompt = `You rate the sentiment of short trading journal notes written in Vietnamese or English.
Reply with a JSON object only: {"label": "positive" | "negative" | "neutral", "confidence": number between 0 and 1}.
Rate the trader's state of mind, not the market direction.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier implements Classifier using the OpenAI chat API.
type OpenAIClassifier struct {
	client chatCompleter
	model  string
}

// NewOpenAIClassifier creates a classifier backed by OpenAI.
func NewOpenAIClassifier(apiKey string, model string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

type classifierReply struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model for the note's polarity.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string, lang models.Language) (ClassifierResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Language: %s\nNote: %s", lang, text)},
		},
	})
	if err != nil {
		return ClassifierResult{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ClassifierResult{}, fmt.Errorf("no response from openai")
	}
	return parseClassifierReply(resp.Choices[0].Message.Content)
}

func parseClassifierReply(content string) (ClassifierResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply classifierReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return ClassifierResult{}, fmt.Errorf("failed to parse classifier reply: %w", err)
	}

	label := models.SentimentLabel(strings.ToLower(strings.TrimSpace(reply.Label)))
	switch label {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return ClassifierResult{}, fmt.Errorf("unexpected classifier label %q", reply.Label)
	}
	return ClassifierResult{Label: label, Confidence: clamp(reply.Confidence, 0, 1)}, nil
}
