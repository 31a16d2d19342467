package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convograph/agent/internal/agent/model"
)

func TestRouteFor(t *testing.T) {
	tests := []struct {
		query string
		want  Route
	}{
		{"calc 2+2", RouteCalculator},
		{"please calculate 10/4", RouteCalculator},
		{"CALC 1+1", RouteCalculator},
		{"quit", RouteQuit},
		{"I want to end this", RouteQuit},
		{"QUIT now", RouteQuit},
		{"hello there", RouteChat},
		{"what is the weather", RouteChat},
		// calculator keyword wins over the termination keyword
		{"calculate the total and end", RouteCalculator},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteFor(tt.query))
		})
	}
}

func TestNewRouterCondition(t *testing.T) {
	cond := NewRouterCondition()
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"calc 2+2", NodeCalculator},
		{"quit", NodeFarewell},
		{"hello", NodeContextAssembler},
	}

	for _, tt := range tests {
		got, err := cond(ctx, model.TurnInput{ConversationID: "c1", Query: tt.query})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestStripCalcKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"calc 2+2", "2+2"},
		{"calculate 2 + 2", "2 + 2"},
		{"Calc: (1+2)*3", "(1+2)*3"},
		{"please calculate 10/4", "please 10/4"},
		{"2+2", "2+2"},
		{"calc", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCalcKeyword(tt.in))
	}
}
