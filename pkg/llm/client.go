// Package llm synthesizes a design structure by prompting an OpenAI-compatible
// chat-completions endpoint. It is the fallback path used when no Figma access
// token is configured; the provider is interchangeable as long as it produces
// JSON matching the requested schema.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hellenic-development/figma-report/pkg/extract"
	"github.com/hellenic-development/figma-report/pkg/figma"
)

const (
	// DefaultBaseURL targets OpenRouter, which fronts several free models
	// behind the OpenAI wire format.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is a free model that is reliable at emitting strict JSON.
	DefaultModel = "mistralai/mistral-7b-instruct:free"

	maxTokens   = 8000
	temperature = 0.1
)

// Client calls an OpenAI-compatible chat-completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a synthesis client. Empty baseURL and model select the
// OpenRouter defaults.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Configured reports whether the client has an API key to authenticate with.
func (c *Client) Configured() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// synthesized mirrors the JSON schema requested from the model. It is decoded
// separately from extract.ParsedStructure so that schema drift in model
// output fails loudly at the boundary.
type synthesized struct {
	FileName   string                        `json:"file_name"`
	Pages      []extract.Page                `json:"pages"`
	Layers     []extract.LayerDescriptor     `json:"layers"`
	TextNodes  []extract.TextDescriptor      `json:"text_nodes"`
	Components []extract.ComponentDescriptor `json:"components"`
}

// Synthesize asks the model to describe the design behind figmaURL and
// converts the reply into a ParsedStructure. The reply must be a JSON object
// matching the prompted schema; anything else fails with
// extract.ErrMalformedInput.
func (c *Client) Synthesize(ctx context.Context, figmaURL string) (*extract.ParsedStructure, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(figmaURL)}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion request failed: %v", figma.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: chat completion failed with status %d: %s", figma.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", extract.ErrMalformedInput)
	}

	raw := StripFences(chat.Choices[0].Message.Content)

	var syn synthesized
	if err := json.Unmarshal([]byte(raw), &syn); err != nil {
		return nil, fmt.Errorf("%w: model output is not the requested JSON schema: %v", extract.ErrMalformedInput, err)
	}

	return syn.toStructure(), nil
}

func (s *synthesized) toStructure() *extract.ParsedStructure {
	name := s.FileName
	if name == "" {
		name = "Untitled"
	}

	out := &extract.ParsedStructure{
		FileName:     name,
		LastModified: time.Now().UTC().Format(time.RFC3339),
		Pages:        s.Pages,
		Layers:       s.Layers,
		TextNodes:    s.TextNodes,
		Components:   s.Components,
	}
	if out.Pages == nil {
		out.Pages = []extract.Page{}
	}
	if out.Layers == nil {
		out.Layers = []extract.LayerDescriptor{}
	}
	if out.TextNodes == nil {
		out.TextNodes = []extract.TextDescriptor{}
	}
	if out.Components == nil {
		out.Components = []extract.ComponentDescriptor{}
	}
	out.Fingerprint = extract.Fingerprint(out.FileName, out.LastModified, len(out.Layers), len(out.Components))
	return out
}

// StripFences removes a surrounding markdown code fence from model output.
// Models frequently wrap JSON in ```json blocks despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func buildPrompt(figmaURL string) string {
	return fmt.Sprintf(`You are a senior UI/UX architect. Analyze this Figma design and extract its structure for a developer handoff report.

Figma link: %s

Return ONLY valid JSON in this exact structure (no extra text, no markdown):

{
  "file_name": "Project name inferred from the link",
  "pages": [
    {"id": "0:1", "name": "Page name"}
  ],
  "layers": [
    {"id": "1:1", "type": "FRAME", "name": "Frame name", "page": "Page name", "x": 0, "y": 0, "width": 375, "height": 812, "children_count": 2, "visible": true}
  ],
  "text_nodes": [
    {"id": "2:1", "page": "Page name", "name": "Label name", "characters": "Visible copy", "style": {"fontFamily": "Inter", "fontSize": 16, "fontWeight": 600}}
  ],
  "components": [
    {"id": "9:1", "name": "Button/Primary", "description": "Reusable element", "remote": false}
  ]
}

Layer types must be one of FRAME, COMPONENT, INSTANCE, GROUP, RECTANGLE, VECTOR. Be extremely accurate.`, figmaURL)
}
