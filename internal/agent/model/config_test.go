package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatModelConfig_Validate(t *testing.T) {
	for _, name := range SupportedChatModels() {
		cfg := ChatModelConfig{Model: name}
		assert.NoError(t, cfg.Validate(), name)
	}

	for _, name := range []string{"", "gpt-4o", "gemini-1.0-ultra", "llama-3"} {
		cfg := ChatModelConfig{Model: name}
		assert.Error(t, cfg.Validate(), name)
	}
}
