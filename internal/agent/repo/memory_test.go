package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convograph/agent/internal/agent/repo"
)

func TestMemoryRepository_AddAndLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryConversationRepository()

	for i := 0; i < 5; i++ {
		msg := schema.UserMessage(fmt.Sprintf("message %d", i))
		require.NoError(t, store.AddMessage(ctx, "c1", msg))
	}

	history, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 5)
	for i, msg := range history.Messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestMemoryRepository_IsolatesConversations(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryConversationRepository()

	require.NoError(t, store.AddMessage(ctx, "c1", schema.UserMessage("for c1")))
	require.NoError(t, store.AddMessage(ctx, "c2", schema.UserMessage("for c2")))

	h1, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, h1.Messages, 1)
	assert.Equal(t, "for c1", h1.Messages[0].Content)

	n, err := store.GetMessageCount(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryRepository_ClearHistory(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryConversationRepository()

	require.NoError(t, store.AddMessage(ctx, "c1", schema.UserMessage("hi")))
	require.NoError(t, store.ClearHistory(ctx, "c1"))

	n, err := store.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)

	history, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestMemoryRepository_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryConversationRepository()

	require.NoError(t, store.AddMessage(ctx, "c1", schema.UserMessage("hi")))

	history, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	history.Messages[0] = schema.UserMessage("mutated")

	reloaded, err := store.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hi", reloaded.Messages[0].Content)
}
