package moonshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	moonshotBaseURL = "https://api.moonshot.cn/v1"
	defaultModel    = "moonshot-v1-8k"
	requestTimeout  = 30 * time.Second
)

// DefaultLabelPrompt asks the model for one score per label
const DefaultLabelPrompt = `Eres un clasificador de datos personales en textos escritos en español.

Para el texto del usuario devuelve un objeto JSON con una puntuación (logit) por etiqueta:
- "dni": número de documento de identidad
- "tarjeta": número de tarjeta de crédito o débito
- "nombre": nombre y apellido de una persona
- "correo": dirección de correo electrónico
- "ninguno": el texto no expone datos personales

Puntuaciones más altas indican más confianza. Responde solo con el objeto JSON, por ejemplo:
{"dni": -2.1, "tarjeta": -3.0, "nombre": 0.4, "correo": 3.8, "ninguno": -1.2}`

// Client is the Moonshot API client using OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new client. Empty baseURL uses the Moonshot endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = moonshotBaseURL
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Chat sends a message and returns the response
func (c *Client) Chat(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// ScoreLabels asks the model for per-label logits of text.
// Empty prompt uses DefaultLabelPrompt.
func (c *Client) ScoreLabels(ctx context.Context, prompt, text string) (map[string]float64, error) {
	if prompt == "" {
		prompt = DefaultLabelPrompt
	}

	resp, err := c.Chat(ctx, prompt, text, 120)
	if err != nil {
		return nil, err
	}
	return ParseLogits(resp)
}

// ParseLogits extracts the JSON object of a model reply.
// Code fences and surrounding prose are ignored.
func ParseLogits(reply string) (map[string]float64, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in reply %q", truncate(reply, 80))
	}

	var logits map[string]float64
	if err := json.Unmarshal([]byte(reply[start:end+1]), &logits); err != nil {
		return nil, fmt.Errorf("decode logits: %w", err)
	}
	if len(logits) == 0 {
		return nil, fmt.Errorf("empty logits")
	}

	out := make(map[string]float64, len(logits))
	for k, v := range logits {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
