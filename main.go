package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/convograph/agent/internal/agent/graph"
	"github.com/convograph/agent/internal/agent/graph/nodes"
	"github.com/convograph/agent/internal/agent/model"
	"github.com/convograph/agent/internal/agent/repo"
	"github.com/convograph/agent/internal/core"
	logx "github.com/convograph/agent/pkg/logger"
	pkgredis "github.com/convograph/agent/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat         model.ChatModelConfig
	Prompt       model.ChatPromptConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	ttl, err := graph.ParseTTL(envCfg.Conversation)
	if err != nil {
		log.Fatalf("Invalid conversation config: %v", err)
	}

	// Transcript store: Redis when configured, otherwise in-process memory.
	var conversationRepo model.ConversationRepository
	if envCfg.Redis.Configured() {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
		logx.Info().Msg("Using Redis conversation store")
	} else {
		conversationRepo = repo.NewMemoryConversationRepository()
		logx.Warn().Msg("REDIS_URL not set; conversation history is kept in memory only")
	}

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		Chat:             envCfg.Chat,
		Prompt:           envCfg.Prompt,
		Conversation:     envCfg.Conversation,
		ConversationRepo: conversationRepo,
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	conversationID := fmt.Sprintf("cli-%d", time.Now().Unix())
	fmt.Printf("%s ready (model: %s). Type a message; say \"quit\" to leave.\n",
		envCfg.Prompt.AssistantName, envCfg.Chat.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		response, err := runner.Invoke(ctx, model.TurnInput{
			ConversationID: conversationID,
			Query:          query,
		})
		if err != nil {
			logx.Error().Err(err).Msg("Graph invocation failed")
			fmt.Println("agent> something went wrong, please try again")
			continue
		}

		fmt.Printf("agent> %s\n", response)

		if nodes.RouteFor(query) == nodes.RouteQuit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed reading input: %v", err)
	}
}
