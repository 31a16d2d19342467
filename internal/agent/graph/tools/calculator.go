package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/convograph/agent/internal/agent/graph/parsers"
)

// ===================================
// Calculator Tool
// ===================================

const ToolCalculator = "calculator"

type CalculatorInput struct {
	Expression string `json:"expression"`
}

type CalculatorOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
	Rendered   string  `json:"rendered"`
}

func createCalculatorTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCalculator,
			Desc: "Evaluate an arithmetic expression and return the numeric result. Supports decimal numbers, + - * /, unary minus and parentheses only. Use this whenever the user asks for a computation instead of computing it yourself.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"expression": {
					Type:     "string",
					Desc:     "The arithmetic expression to evaluate, e.g. (2+3)*4 or 10/2.5",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *CalculatorInput) (*CalculatorOutput, error) {
			if in.Expression == "" {
				return nil, fmt.Errorf("expression is required")
			}
			v, err := parsers.Evaluate(in.Expression)
			if err != nil {
				return nil, fmt.Errorf("evaluate %q: %w", in.Expression, err)
			}
			return &CalculatorOutput{
				Expression: in.Expression,
				Result:     v,
				Rendered:   parsers.FormatResult(v),
			}, nil
		},
	)
}
