package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"

	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
)

const (
	ChatToolName = "chat"

	// ClientKey is the rate-limit identity shared by every stdio session.
	ClientKey = "mcp-stdio"
	userAgent = "soksol-mcp"
)

// ChatService is satisfied by *chat.Service.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (string, *chat.Failure)
}

// ChatInput defines the input schema for the chat tool.
type ChatInput struct {
	Messages []chat.Message `json:"messages" jsonschema:"Conversation so far, oldest first; the last message is answered"`
	Locale   string         `json:"locale,omitempty" jsonschema:"Language for error messages: ko (default) or en"`
}

// NewChatHandler runs the chat pipeline for one tool call. Pipeline failures
// are tool errors with text "<CODE>: <message>", not protocol errors.
func NewChatHandler(svc ChatService) mcp.ToolHandlerFor[ChatInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, any, error) {
		locale := language.Und
		if input.Locale != "" {
			locale = chat.ParseLocale(input.Locale)
		}

		reply, failure := svc.Handle(ctx, chat.Request{
			ClientKey: ClientKey,
			UserAgent: userAgent,
			Locale:    locale,
			Messages:  input.Messages,
		})
		if failure != nil {
			return ErrorResult(fmt.Sprintf("%s: %s", failure.Code, failure.Message)), nil, nil
		}
		return TextResult(reply), nil, nil
	}
}

// ErrorResult creates an error result with text content.
func ErrorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
