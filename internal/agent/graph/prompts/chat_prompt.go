package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/convograph/agent/internal/agent/graph/tools"
	"github.com/convograph/agent/internal/agent/model"
)

//go:embed template/chat_prompt.txt
var chatSystemPrompt string

// RenderChatSystem renders the chat system prompt via the Eino prompt
// component. Rendering through the component (rather than plain
// text/template) emits prompt callbacks for observability.
func RenderChatSystem(ctx context.Context, config model.ChatPromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(chatSystemPrompt),
	)
	vars := map[string]any{
		"AssistantName":  config.AssistantName,
		"Persona":        config.Persona,
		"CalculatorTool": tools.ToolCalculator,
		"KnowledgeTool":  tools.ToolKnowledgeLookup,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("chat prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("chat prompt render: empty result")
	}
	return msgs[0].Content, nil
}
