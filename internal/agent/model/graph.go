package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	ConversationID       string
	Query                string            // raw user input for the current turn
	History              []*schema.Message // working chat context, mutated only inside state handlers
	LastOutput           string            // most recent node output text, overwritten each step
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // synthesizes tool_call_id when the provider omits it

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}

// TurnInput represents one user turn handed to the graph.
type TurnInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
}
