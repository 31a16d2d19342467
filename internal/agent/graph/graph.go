package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/convograph/agent/internal/agent/graph/conversations"
	"github.com/convograph/agent/internal/agent/graph/nodes"
	"github.com/convograph/agent/internal/agent/graph/observers"
	"github.com/convograph/agent/internal/agent/graph/tools"
	"github.com/convograph/agent/internal/agent/model"
	logx "github.com/convograph/agent/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public TurnInput.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (string, error)
}

// Config holds everything needed to compose the full agent graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the chat
// model and the MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	Chat             model.ChatModelConfig
	Prompt           model.ChatPromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	PromptConfig    *model.ChatPromptConfig
	ToolMaxCalls    int
}

// GraphBuilder handles the construction of the agent conversation graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, model.TurnInput{
		ConversationID: in.ConversationID,
		Query:          in.Query,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	if len(out.Extra) > 0 {
		if b, err := json.Marshal(out.Extra); err == nil {
			logx.Debug().RawJSON("extra", b).Msg("Turn metadata")
		}
	}
	return out.Content, nil
}

// BuildResponseGraph composes the chat model and MessagesManager, builds the
// graph, and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelBuildConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Chat:    &cfg.Chat,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		PromptConfig:    &cfg.Prompt,
		ToolMaxCalls:    cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Agent graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled agent graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil {
		return nil, fmt.Errorf("chat models are not initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.PromptConfig == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures the agent tools and binds them to the chat model.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	agentTools := tools.GetAgentTools()
	toolInfos, err := tools.GetToolInfos(ctx, agentTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindTools(ctx, toolInfos); err != nil {
		return err
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               agentTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				return arguments, nil
			}

			switch name {
			case tools.ToolCalculator:
				trimStringArg(m, "expression")
			case tools.ToolKnowledgeLookup:
				trimStringArg(m, "topic")
			}

			b, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(b), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeCalculator,
		nodes.NewCalculatorNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeFarewell,
		nodes.NewFarewellNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeContextAssembler,
		nodes.NewContextAssemblerNode(b.config.MessagesManager, b.config.PromptConfig),
	)

	b.graph.AddLambdaNode(nodes.NodeChatModel,
		nodes.NewChatModelNode(b.config.ChatModels),
		compose.WithStatePreHandler(nodes.NewChatModelPreHandler(b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewChatModelPostHandler(b.config.ChatModels.ModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeMemoryWriter,
		nodes.NewMemoryWriterNode(b.config.MessagesManager),
	)
}

// addEdges creates the unconditional flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeContextAssembler, nodes.NodeChatModel},
		{nodes.NodeToolExecutor, nodes.NodeChatModel},
		{nodes.NodeCalculator, nodes.NodeMemoryWriter},
		{nodes.NodeMemoryWriter, compose.END},
		{nodes.NodeFarewell, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	routerBranch := compose.NewGraphBranch(
		nodes.NewRouterCondition(),
		map[string]bool{
			nodes.NodeCalculator:       true,
			nodes.NodeFarewell:         true,
			nodes.NodeContextAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeInputConverter, routerBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding router branch")
		return fmt.Errorf("error adding router branch: %w", err)
	}

	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			nodes.NodeMemoryWriter: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in the tool cycle
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// ParseTTL converts the configured conversation TTL into a duration.
func ParseTTL(cfg model.ConversationConfig) (time.Duration, error) {
	ttl, err := time.ParseDuration(cfg.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid conversation TTL %q: %w", cfg.TTL, err)
	}
	return ttl, nil
}

// trimStringArg trims a string-typed argument in place, coercing non-string
// values to strings.
func trimStringArg(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case string:
		m[key] = strings.TrimSpace(vv)
	default:
		m[key] = strings.TrimSpace(fmt.Sprint(v))
	}
}
