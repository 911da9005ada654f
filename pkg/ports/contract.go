package ports

import (
	"context"
	"testing"
	"time"

	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(5)
		state.Append(domain.NewUserMessage("hello"))
		state.Append(domain.NewAssistantMessage("hi there"))
		state.ConsumeStep()

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Messages, 2)
		assert.Equal(t, state.Messages[0].Content, loaded.Messages[0].Content)
		assert.Equal(t, domain.RoleAssistant, loaded.Messages[1].Role)
		assert.Equal(t, 4, loaded.RemainingSteps)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(5)
		state.Append(domain.NewUserMessage("original"))
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's copy must not affect what was persisted.
		state.Messages[0].Content = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded.Messages[0].Content)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(5))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(5))
		_ = store.Save(ctx, id2, domain.NewState(5))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
