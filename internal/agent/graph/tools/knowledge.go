package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// ===================================
// Knowledge Lookup Tool (stub)
// ===================================

const ToolKnowledgeLookup = "knowledge_lookup"

// KnowledgeLookupPlaceholder is returned for every lookup until a real
// knowledge source is wired in.
const KnowledgeLookupPlaceholder = "No external knowledge source is configured."

type KnowledgeLookupInput struct {
	Topic string `json:"topic"`
}

type KnowledgeLookupOutput struct {
	Topic  string `json:"topic"`
	Answer string `json:"answer"`
}

func createKnowledgeLookupTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolKnowledgeLookup,
			Desc: "Look up a topic in the external knowledge base. Currently a stub that always reports no knowledge source is configured.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"topic": {
					Type:     "string",
					Desc:     "The topic or question to look up",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *KnowledgeLookupInput) (*KnowledgeLookupOutput, error) {
			if in.Topic == "" {
				return nil, fmt.Errorf("topic is required")
			}
			return &KnowledgeLookupOutput{
				Topic:  in.Topic,
				Answer: KnowledgeLookupPlaceholder,
			}, nil
		},
	)
}
