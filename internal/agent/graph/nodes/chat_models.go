package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/convograph/agent/internal/agent/model"
	logx "github.com/convograph/agent/pkg/logger"
)

// ChatModelBuildConfig holds the configuration for chat model creation.
type ChatModelBuildConfig struct {
	APIKey  string
	BaseURL string
	Chat    *model.ChatModelConfig
}

// ChatModels wraps the chat model behind the ToolCallingChatModel interface
// so tests can substitute a fake, and so a missing credential can be
// represented without a client.
type ChatModels struct {
	Chat          einomodel.ToolCallingChatModel
	ModelName     string
	hasCredential bool
}

// NewChatModels validates the model selection and, when a credential is
// present, constructs the Gemini chat model. With no credential it returns
// a ChatModels that the chat node will short-circuit; no client is created
// and no network call is ever attempted.
func NewChatModels(ctx context.Context, config ChatModelBuildConfig) (*ChatModels, error) {
	if config.Chat == nil {
		return nil, fmt.Errorf("chat model config is nil")
	}
	if err := config.Chat.Validate(); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		logx.Warn().Str("model", config.Chat.Model).Msg("GEMINI_API_KEY is not set; chat path will answer with a fixed error")
		return &ChatModels{ModelName: config.Chat.Model}, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Chat.Model,
		Temperature: &config.Chat.Temperature,
		MaxTokens:   &config.Chat.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &ChatModels{
		Chat:          chatModel,
		ModelName:     config.Chat.Model,
		hasCredential: true,
	}, nil
}

// NewFakeChatModels wraps an arbitrary ToolCallingChatModel, for tests.
func NewFakeChatModels(m einomodel.ToolCallingChatModel, modelName string) *ChatModels {
	return &ChatModels{Chat: m, ModelName: modelName, hasCredential: true}
}

// HasCredential reports whether a usable model is behind this wrapper.
func (cm *ChatModels) HasCredential() bool {
	return cm.hasCredential && cm.Chat != nil
}

// BindTools rebinds the chat model with the given tool set. It is a no-op
// when no credential is configured.
func (cm *ChatModels) BindTools(ctx context.Context, infos []*schema.ToolInfo) error {
	if !cm.HasCredential() {
		return nil
	}
	withTools, err := cm.Chat.WithTools(infos)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}
	cm.Chat = withTools

	logx.Debug().Int("tools", len(infos)).Msg("Bound tools to chat model")
	return nil
}
