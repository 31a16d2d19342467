package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	p := Pricing{InputPerM: 0.30, OutputPerM: 2.50}
	usage := &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 2_000_000}

	in, out, total := ComputeCost(usage, p)
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 5.00, out, 1e-9)
	assert.InDelta(t, 5.30, total, 1e-9)
}

func TestComputeCost_NilUsage(t *testing.T) {
	in, out, total := ComputeCost(nil, Pricing{InputPerM: 1, OutputPerM: 1})
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.Zero(t, total)
}

func TestResolvePricing_UnknownModelIsZero(t *testing.T) {
	p := ResolvePricing("mystery-model")
	assert.Zero(t, p.InputPerM)
	assert.Zero(t, p.OutputPerM)

	known := ResolvePricing("gemini-2.5-flash")
	assert.Greater(t, known.InputPerM, 0.0)
}
