package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type OpenAIClient struct {
	llm *openai.LLM
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	return &OpenAIClient{llm: llm}, nil
}

func (c *OpenAIClient) Chat(ctx context.Context, turns []Turn, tools []ToolSpec, temperature float64) (*Reply, error) {
	messages := convertToLangchainMessages(turns)
	llmTools := convertToLangchainTools(tools)

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTools(llmTools),
		llms.WithTemperature(temperature))
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenAI response")
	}

	choice := resp.Choices[0]
	if len(choice.ToolCalls) > 0 {
		toolCall := choice.ToolCalls[0]
		log.Printf("[INFO] LLM requested tool: %s", toolCall.FunctionCall.Name)
		return &Reply{
			ToolCall: &ToolCallRequest{
				Name:      toolCall.FunctionCall.Name,
				Arguments: toolCall.FunctionCall.Arguments,
			},
		}, nil
	}

	return &Reply{Text: choice.Content}, nil
}

func convertToLangchainMessages(turns []Turn) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(turns))

	for _, turn := range turns {
		switch {
		case turn.Role == "system":
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, turn.Content))
		case turn.Role == "user":
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, turn.Content))
		case turn.Role == "assistant" && turn.ToolName != "":
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeAI,
				Parts: []llms.ContentPart{
					llms.ToolCall{
						ID:   turn.ToolCallID,
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      turn.ToolName,
							Arguments: turn.ToolArgs,
						},
					},
				},
			})
		case turn.Role == "assistant":
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, turn.Content))
		case turn.Role == "tool":
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: turn.ToolCallID,
						Name:       turn.ToolName,
						Content:    turn.Content,
					},
				},
			})
		}
	}

	return messages
}

func convertToLangchainTools(tools []ToolSpec) []llms.Tool {
	llmTools := make([]llms.Tool, 0, len(tools))

	for _, tool := range tools {
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	return llmTools
}
