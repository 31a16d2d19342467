package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/convograph/agent/internal/agent/graph/conversations"
	"github.com/convograph/agent/internal/agent/graph/parsers"
	"github.com/convograph/agent/internal/agent/graph/prompts"
	"github.com/convograph/agent/internal/agent/model"
	logx "github.com/convograph/agent/pkg/logger"
)

// Node keys used by the graph builder.
const (
	NodeInputConverter   = "input_converter"
	NodeCalculator       = "calculator"
	NodeFarewell         = "farewell"
	NodeContextAssembler = "context_assembler"
	NodeChatModel        = "chat_model"
	NodeToolExecutor     = "tool_executor"
	NodeMemoryWriter     = "memory_writer"
)

const (
	// CalculatorResultPrefix and CalculatorErrorPrefix frame calculator
	// output so callers and tests can rely on the exact shape.
	CalculatorResultPrefix = "Calculator result: "
	CalculatorErrorPrefix  = "Calculator error: "

	// MissingCredentialMessage is returned by the chat node when no API key
	// is configured. The node never attempts a network call in that case.
	MissingCredentialMessage = "Error: missing API credential (GEMINI_API_KEY is not set)"

	// FarewellMessage closes a conversation when the router selects
	// termination.
	FarewellMessage = "Goodbye! Ending the conversation."
)

// NewInputConverterPreHandler resets per-turn state before a query enters
// the graph.
func NewInputConverterPreHandler() func(context.Context, model.TurnInput, *model.AppState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.AppState) (model.TurnInput, error) {
		if s.ConversationID == "" {
			s.ConversationID = in.ConversationID
		}
		s.Query = in.Query
		s.History = nil
		s.LastOutput = ""
		s.ToolCallCount = 0
		s.ToolCallLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode validates and normalizes the incoming turn.
func NewInputConverterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (model.TurnInput, error) {
		if strings.TrimSpace(in.ConversationID) == "" {
			return model.TurnInput{}, fmt.Errorf("conversation id is required")
		}
		in.Query = strings.TrimSpace(in.Query)
		if in.Query == "" {
			return model.TurnInput{}, fmt.Errorf("query is empty")
		}
		return in, nil
	})
}

// NewCalculatorNode evaluates the turn as a restricted arithmetic
// expression. Failures never abort the graph run; they become the node's
// text output.
func NewCalculatorNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (*schema.Message, error) {
		expr := StripCalcKeyword(in.Query)
		v, err := parsers.Evaluate(expr)
		if err != nil {
			logx.Debug().Str("conversation_id", in.ConversationID).Str("expression", expr).Err(err).Msg("Calculator rejected expression")
			return schema.AssistantMessage(CalculatorErrorPrefix+err.Error(), nil), nil
		}
		return schema.AssistantMessage(CalculatorResultPrefix+parsers.FormatResult(v), nil), nil
	})
}

// NewFarewellNode emits the fixed goodbye message for a terminating turn.
// The turn is not persisted; the session ends here.
func NewFarewellNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (*schema.Message, error) {
		logx.Debug().Str("conversation_id", in.ConversationID).Msg("Terminating conversation")
		return schema.AssistantMessage(FarewellMessage, nil), nil
	})
}

// NewContextAssemblerNode builds the chat context for a model call: system
// prompt, recent transcript, current user message.
func NewContextAssemblerNode(
	mm *conversations.MessagesManager,
	promptCfg *model.ChatPromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) ([]*schema.Message, error) {
		systemPrompt, err := prompts.RenderChatSystem(ctx, *promptCfg)
		if err != nil {
			return nil, fmt.Errorf("render chat system prompt: %w", err)
		}

		messages, err := mm.BuildChatContext(ctx, in.ConversationID, systemPrompt, in.Query)
		if err != nil {
			return nil, fmt.Errorf("build chat context: %w", err)
		}
		return messages, nil
	})
}

// NewChatModelNode invokes the chat model. Both the missing-credential case
// and generation failures are converted into assistant text so the turn
// still completes and is recorded.
func NewChatModelNode(cm *ChatModels) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) (*schema.Message, error) {
		if !cm.HasCredential() {
			return schema.AssistantMessage(MissingCredentialMessage, nil), nil
		}

		out, err := cm.Chat.Generate(ctx, in)
		if err != nil {
			logx.Error().Err(err).Str("model", cm.ModelName).Msg("Chat model generation failed")
			return schema.AssistantMessage(fmt.Sprintf("Error: %v", err), nil), nil
		}
		return out, nil
	})
}

// NewChatModelPreHandler accumulates incoming messages (initial context or
// tool results) into the working history and injects a wrap-up notice once
// the tool-call limit is hit.
func NewChatModelPreHandler(maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Heuristic fix for providers that omit tool_call_id on tool results
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := strings.TrimSpace(msg.ToolCalls[0].ID); id != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please answer using the information you've already gathered and "+
						"acknowledge any limitations.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		return state.History, nil
	}
}

// NewChatModelPostHandler records usage cost, normalizes tool call IDs and
// appends the model output to the working history.
func NewChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			state.TotalCostUSD += totalC
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
		}

		// Normalize tool calls: some providers omit tool_call IDs.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}

		return out, nil
	}
}

// NewToolExecutorCondition routes the model output either to tool execution
// or on to the memory writer.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to memory writer")
			return NodeMemoryWriter, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		return NodeMemoryWriter, nil
	}
}

// NewToolExecutorPreHandler counts tool executions against the per-turn
// limit.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}

// NewMemoryWriterNode persists the finished exchange as one user/assistant
// pair. A storage failure is logged but does not fail the turn; the user
// still gets the response.
func NewMemoryWriterNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *schema.Message) (*schema.Message, error) {
		var conversationID, query string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			query = state.Query
			state.LastOutput = in.Content
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if err := mm.SaveExchange(ctx, conversationID, query, in.Content); err != nil {
			logx.Error().
				Str("conversation_id", conversationID).
				Err(err).
				Msg("Error saving exchange to transcript")
		} else {
			logx.Debug().
				Str("conversation_id", conversationID).
				Msg("Saved user/assistant exchange to transcript")
		}

		return in, nil
	})
}
