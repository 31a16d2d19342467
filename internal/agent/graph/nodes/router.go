package nodes

import (
	"context"
	"strings"

	"github.com/convograph/agent/internal/agent/model"
	logx "github.com/convograph/agent/pkg/logger"
)

// Route identifies the path a user turn takes through the graph.
type Route string

const (
	RouteCalculator Route = "calculator"
	RouteQuit       Route = "quit"
	RouteChat       Route = "chat"
)

// RouteFor classifies a raw user query by substring match on the lowercased
// text. The calculator check runs first so "calculate and end with the
// total" still reaches the calculator. "calculate" matches via its "calc"
// prefix.
func RouteFor(query string) Route {
	q := strings.ToLower(query)
	if strings.Contains(q, "calc") {
		return RouteCalculator
	}
	if strings.Contains(q, "quit") || strings.Contains(q, "end") {
		return RouteQuit
	}
	return RouteChat
}

// NewRouterCondition creates the branch condition that maps a turn to its
// first processing node.
func NewRouterCondition() func(context.Context, model.TurnInput) (string, error) {
	return func(ctx context.Context, in model.TurnInput) (string, error) {
		route := RouteFor(in.Query)
		logx.Debug().
			Str("conversation_id", in.ConversationID).
			Str("route", string(route)).
			Msg("Routing user turn")

		switch route {
		case RouteCalculator:
			return NodeCalculator, nil
		case RouteQuit:
			return NodeFarewell, nil
		default:
			return NodeContextAssembler, nil
		}
	}
}

// StripCalcKeyword removes routing keyword tokens ("calc"/"calculate", any
// case, with adjacent punctuation) from the query so the remainder can be
// parsed as an arithmetic expression.
func StripCalcKeyword(query string) string {
	fields := strings.Fields(query)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		bare := strings.ToLower(strings.Trim(f, ":,.!?"))
		if bare == "calc" || bare == "calculate" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
