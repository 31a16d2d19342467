package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2 + 2", 4},
		{"10-3", 7},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10/4", 2.5},
		{"-5+3", -2},
		{"-(2+3)", -5},
		{"--4", 4},
		{"1.5*2", 3},
		{"0.5+.5", 1},
		{"((1+2)*(3+4))", 21},
		{"100/10/2", 5},
		{"7", 7},
		{"  7  ", 7},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"2+",
		"+2",
		"*3",
		"2++",
		"(2+3",
		"2+3)",
		"()",
		"1/0",
		"2..5",
		"two plus two",
		"2+x",
		"pow(2,3)",
		"1e10", // scientific notation is outside the grammar
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := Evaluate(expr)
			assert.Error(t, err)
		})
	}
}

func TestEvaluate_TooLong(t *testing.T) {
	expr := "1" + strings.Repeat("+1", maxExprLen)
	_, err := Evaluate(expr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestEvaluate_DeepNesting(t *testing.T) {
	expr := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	_, err := Evaluate(expr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested too deeply")
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{2.5, "2.5"},
		{-0.25, "-0.25"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatResult(tt.in))
	}
}
