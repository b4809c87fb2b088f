package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (c *AnthropicClient) Chat(ctx context.Context, turns []Turn, tools []ToolSpec, temperature float64) (*Reply, error) {
	system, messages := convertToAnthropicMessages(turns)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Messages:    messages,
		Tools:       convertToAnthropicTools(tools),
		Temperature: anthropic.Float(temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			arguments := "{}"
			if inputJSON, err := json.Marshal(block.Input); err == nil && len(inputJSON) > 0 {
				arguments = string(inputJSON)
			}
			log.Printf("[INFO] LLM requested tool: %s", block.Name)
			return &Reply{
				ToolCall: &ToolCallRequest{
					Name:      block.Name,
					Arguments: arguments,
				},
			}, nil
		}
	}

	return &Reply{Text: text.String()}, nil
}

// convertToAnthropicMessages splits out the system preamble (Anthropic
// takes it as a request parameter, not a message) and maps the remaining
// turns to content blocks.
func convertToAnthropicMessages(turns []Turn) (string, []anthropic.MessageParam) {
	var system strings.Builder
	messages := make([]anthropic.MessageParam, 0, len(turns))

	for _, turn := range turns {
		switch {
		case turn.Role == "system":
			system.WriteString(turn.Content)
		case turn.Role == "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		case turn.Role == "assistant" && turn.ToolName != "":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    turn.ToolCallID,
					Name:  turn.ToolName,
					Input: json.RawMessage(turn.ToolArgs),
				},
			}))
		case turn.Role == "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.ContentBlockParamUnion{
				OfText: &anthropic.TextBlockParam{Text: turn.Content},
			}))
		case turn.Role == "tool":
			messages = append(messages, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: turn.ToolCallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: turn.Content}},
					},
				},
			}))
		}
	}

	return system.String(), messages
}

func convertToAnthropicTools(tools []ToolSpec) []anthropic.ToolUnionParam {
	toolParams := make([]anthropic.ToolUnionParam, 0, len(tools))

	for _, tool := range tools {
		toolParams = append(toolParams, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Parameters["properties"],
				},
			},
		})
	}

	return toolParams
}
