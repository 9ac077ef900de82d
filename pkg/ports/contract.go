package ports

import (
	"context"
	"testing"
	"time"

	"github.com/emilianodellacasa/colloquio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests verifying that a StateStore
// implementation adheres to the interface contract. Adapter test files call
// this against their concrete store.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState(sessionID)
		state.CurrentIndex = 3
		state.Mode = domain.ModeDeepening
		state.BranchCount = 1
		state.BranchType = "evasive"
		state.QAHistory = append(state.QAHistory, domain.QARecord{
			QuestionID: 1,
			Question:   "Come ha dormito questa notte?",
			Answer:     "niente",
		})
		state.Signals = append(state.Signals, domain.Signal{QuestionID: 1, Evasive: true})

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CurrentIndex, loaded.CurrentIndex)
		assert.Equal(t, state.Mode, loaded.Mode)
		assert.Equal(t, state.BranchType, loaded.BranchType)
		require.Len(t, loaded.QAHistory, 1)
		assert.Equal(t, "niente", loaded.QAHistory[0].Answer)
		require.Len(t, loaded.Signals, 1)
		assert.True(t, loaded.Signals[0].Evasive)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		state := domain.NewSessionState(sessionID)
		state.QAHistory = append(state.QAHistory, domain.QARecord{QuestionID: 1, Answer: "a"})
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.QAHistory[0].Answer = "mutated"

		reloaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "a", reloaded.QAHistory[0].Answer, "mutating a loaded state must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSessionState(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionState(id1))
		_ = store.Save(ctx, id2, domain.NewSessionState(id2))

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
