package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// GetAgentTools returns the tools bound to the chat model.
func GetAgentTools() []tool.BaseTool {
	return []tool.BaseTool{
		createCalculatorTool(),
		createKnowledgeLookupTool(),
	}
}

// GetToolInfos resolves ToolInfo for each tool so they can be bound to the
// chat model.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
