package model

import "fmt"

// ================ Config ================
type ConversationConfig struct {
	TTL  string `envconfig:"CONVERSATION_TTL" default:"15m"`
	Chat struct {
		MaxTurns int `envconfig:"CONVERSATION_CHAT_MAX_TURNS" default:"20"`
	}
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"5"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.7"`
}

type ChatPromptConfig struct {
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"ConvoGraph"`
	Persona       string `envconfig:"PROMPT_PERSONA" default:"a concise, friendly general-purpose assistant"`
}

// supportedChatModels is the closed set of model names this agent accepts.
// An unknown name fails at construction time rather than at the first
// network call.
var supportedChatModels = map[string]bool{
	"gemini-2.5-pro":        true,
	"gemini-2.5-flash":      true,
	"gemini-2.5-flash-lite": true,
	"gemini-2.0-flash":      true,
}

// SupportedChatModels returns the allowed chat model names.
func SupportedChatModels() []string {
	names := make([]string, 0, len(supportedChatModels))
	for name := range supportedChatModels {
		names = append(names, name)
	}
	return names
}

// Validate checks the configured model name against the supported set.
func (c *ChatModelConfig) Validate() error {
	if !supportedChatModels[c.Model] {
		return fmt.Errorf("unsupported chat model %q", c.Model)
	}
	return nil
}
