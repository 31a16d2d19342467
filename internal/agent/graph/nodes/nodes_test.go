package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convograph/agent/internal/agent/model"
)

func TestInputConverterPreHandler_ResetsTurnState(t *testing.T) {
	handler := NewInputConverterPreHandler()
	state := &model.AppState{
		ConversationID:       "c1",
		Query:                "old",
		History:              []*schema.Message{schema.UserMessage("stale")},
		LastOutput:           "stale",
		ToolCallCount:        3,
		ToolCallLimitReached: true,
		ToolCallIDSeq:        7,
		TotalCostUSD:         0.5,
	}

	in, err := handler(context.Background(), model.TurnInput{ConversationID: "c1", Query: "fresh"}, state)
	require.NoError(t, err)

	assert.Equal(t, "fresh", in.Query)
	assert.Equal(t, "fresh", state.Query)
	assert.Empty(t, state.History)
	assert.Empty(t, state.LastOutput)
	assert.Zero(t, state.ToolCallCount)
	assert.False(t, state.ToolCallLimitReached)
	assert.Zero(t, state.ToolCallIDSeq)
	assert.Zero(t, state.TotalCostUSD)
}

func TestChatModelPreHandler_AccumulatesHistory(t *testing.T) {
	handler := NewChatModelPreHandler(5)
	state := &model.AppState{}

	first := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hi"),
	}
	out, err := handler(context.Background(), first, state)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	second := []*schema.Message{{Role: schema.Tool, Content: "result", ToolCallID: "call_1"}}
	out, err = handler(context.Background(), second, state)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, schema.Tool, out[2].Role)
}

func TestChatModelPreHandler_InjectsWrapUpAtLimit(t *testing.T) {
	handler := NewChatModelPreHandler(2)
	state := &model.AppState{ToolCallCount: 2}

	out, err := handler(context.Background(), []*schema.Message{schema.UserMessage("hi")}, state)
	require.NoError(t, err)

	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Equal(t, schema.System, last.Role)
	assert.Contains(t, last.Content, "maximum tool call limit")
	assert.True(t, state.ToolCallLimitReached)
}

func TestChatModelPreHandler_FillsMissingToolCallID(t *testing.T) {
	handler := NewChatModelPreHandler(5)
	assistant := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call_9", Function: schema.FunctionCall{Name: "calculator", Arguments: `{"expression":"1+1"}`}},
	})
	state := &model.AppState{History: []*schema.Message{assistant}}

	toolResult := &schema.Message{Role: schema.Tool, Content: "2"}
	_, err := handler(context.Background(), []*schema.Message{toolResult}, state)
	require.NoError(t, err)
	assert.Equal(t, "call_9", toolResult.ToolCallID)
}

func TestChatModelPostHandler_NormalizesToolCallIDs(t *testing.T) {
	handler := NewChatModelPostHandler("gemini-2.5-flash")
	state := &model.AppState{}

	out := schema.AssistantMessage("", []schema.ToolCall{
		{Function: schema.FunctionCall{Name: "calculator"}},
		{Function: schema.FunctionCall{Name: "knowledge_lookup"}},
	})
	got, err := handler(context.Background(), out, state)
	require.NoError(t, err)

	assert.Equal(t, "call_1", got.ToolCalls[0].ID)
	assert.Equal(t, "call_2", got.ToolCalls[1].ID)
	assert.Len(t, state.History, 1)
}

func TestChatModelPostHandler_RecordsUsageCost(t *testing.T) {
	handler := NewChatModelPostHandler("gemini-2.5-flash")
	state := &model.AppState{ConversationID: "c1"}

	out := schema.AssistantMessage("hello", nil)
	out.ResponseMeta = &schema.ResponseMeta{
		Usage: &schema.TokenUsage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500},
	}

	got, err := handler(context.Background(), out, state)
	require.NoError(t, err)

	require.Contains(t, got.Extra, "usage_cost")
	assert.Greater(t, state.TotalCostUSD, 0.0)
}

func TestToolLimitHelpers(t *testing.T) {
	state := &model.AppState{}

	assert.False(t, checkAndMarkToolLimit(state, 2))

	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.False(t, incrementToolCallAndCheck(state, 2))
	assert.True(t, incrementToolCallAndCheck(state, 2))
	assert.True(t, state.ToolCallLimitReached)

	// invalid limit falls back to the default
	fresh := &model.AppState{ToolCallCount: DefaultMaxToolCalls}
	assert.True(t, checkAndMarkToolLimit(fresh, 0))
}

func TestToolExecutorCondition(t *testing.T) {
	cond := NewToolExecutorCondition()
	ctx := context.Background()

	withCalls := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call_1", Function: schema.FunctionCall{Name: "calculator"}},
	})
	got, err := cond(ctx, withCalls)
	require.NoError(t, err)
	assert.Equal(t, NodeToolExecutor, got)

	plain := schema.AssistantMessage("done", nil)
	got, err = cond(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, NodeMemoryWriter, got)
}
